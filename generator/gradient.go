// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package generator

import (
	"math"

	"github.com/gorse-io/tabular/dataset"
)

// kernel is a 3x3 horizontal derivative filter. Its transpose is the
// vertical one.
type kernel struct {
	name string
	x    [3][3]float64
}

var (
	sobel   = kernel{name: "sobel", x: [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}}
	scharr  = kernel{name: "scharr", x: [3][3]float64{{-3, 0, 3}, {-10, 0, 10}, {-3, 0, 3}}}
	prewitt = kernel{name: "prewitt", x: [3][3]float64{{-1, 0, 1}, {-1, 0, 1}, {-1, 0, 1}}}

	kernels = []kernel{sobel, scharr, prewitt}
)

type gradient int

const (
	gradientX gradient = iota
	gradientY
	gradientMagnitude
	gradientAngle
)

func (g gradient) String() string {
	switch g {
	case gradientX:
		return "x"
	case gradientY:
		return "y"
	case gradientMagnitude:
		return "mag"
	default:
		return "angle"
	}
}

// apply convolves the kernel at component c of an image with dims
// (height, width, channels). Borders replicate the nearest pixel.
func (k kernel) apply(x Sample, c int) (gx, gy float64) {
	dims := x.Dims()
	height, width, channels := dims[0], dims[1], dims[2]
	ch := c % channels
	col := c / channels % width
	row := c / channels / width
	for i := -1; i <= 1; i++ {
		r := clamp(row+i, height)
		for j := -1; j <= 1; j++ {
			v := x.At((r*width+clamp(col+j, width))*channels + ch)
			gx += k.x[i+1][j+1] * v
			gy += k.x[j+1][i+1] * v
		}
	}
	return
}

func clamp(i, n int) int {
	return max(0, min(i, n-1))
}

// gradientOp creates the operator computing one gradient output of kernel k
// on structured features.
func gradientOp(k kernel, g gradient) UnaryOp {
	return UnaryOp{
		Name: k.name + "_" + g.String(),
		Value: func(x Sample, c int) float64 {
			gx, gy := k.apply(x, c)
			switch g {
			case gradientX:
				return gx
			case gradientY:
				return gy
			case gradientMagnitude:
				return math.Hypot(gx, gy)
			default:
				return math.Atan2(gy, gx)
			}
		},
		Accept: dataset.Feature.Structured,
	}
}
