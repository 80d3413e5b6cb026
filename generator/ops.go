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
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Sample is one stored sample of a continuous input feature.
type Sample struct {
	view  dataset.View
	dims  dataset.Dims
	index int
}

// At returns component c of the sample.
func (x Sample) At(c int) float64 {
	return x.view.Float(x.index, c)
}

func (x Sample) Dims() dataset.Dims {
	return x.dims
}

// UnaryOp transforms one component of a continuous feature. Exactly one of
// Value and Label is set: Label produces a single label feature with Labels
// as classes, Value produces a float64 scalar.
type UnaryOp struct {
	Name   string
	Labels []string
	Value  func(x Sample, c int) float64
	Label  func(x Sample, c int) int
	// Fit returns the operator fitted on the present training values of a
	// component. Optional.
	Fit func(values []float64) (UnaryOp, error)
	// Accept filters the input features the operator applies to. Optional.
	Accept func(f dataset.Feature) bool
}

// Pointwise lifts a scalar function into a UnaryOp.
func Pointwise(name string, f func(float64) float64) UnaryOp {
	return UnaryOp{
		Name: name,
		Value: func(x Sample, c int) float64 {
			return f(x.At(c))
		},
	}
}

// PointwiseClass lifts a scalar classifier into a UnaryOp.
func PointwiseClass(name string, labels []string, f func(float64) int) UnaryOp {
	return UnaryOp{
		Name:   name,
		Labels: labels,
		Label: func(x Sample, c int) int {
			return f(x.At(c))
		},
	}
}

// SLog1p is sign(x)·log1p(|x|).
func SLog1p() UnaryOp {
	return Pointwise("slog1p", func(x float64) float64 {
		if x < 0 {
			return -math.Log1p(-x)
		}
		return math.Log1p(x)
	})
}

// Sign maps non-negative values to +1 and negative values to -1.
func Sign() UnaryOp {
	return Pointwise("sign", func(x float64) float64 {
		if x < 0 {
			return -1
		}
		return 1
	})
}

// SignClass classifies negative values as class 0 and the rest as class 1.
func SignClass() UnaryOp {
	return PointwiseClass("sign_class", []string{"-", "+"}, func(x float64) int {
		if x < 0 {
			return 0
		}
		return 1
	})
}

// Buckets classifies values into the histogram buckets delimited by the
// ascending edges: (-inf,e0], (e0,e1], ..., (en,+inf).
func Buckets(edges []float64) UnaryOp {
	edges = append([]float64(nil), edges...)
	return PointwiseClass("buckets", bucketLabels(edges), func(x float64) int {
		return sort.SearchFloat64s(edges, x)
	})
}

func bucketLabels(edges []float64) []string {
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	labels := make([]string, len(edges)+1)
	lower := "-inf"
	for i, edge := range edges {
		labels[i] = fmt.Sprintf("(%s,%s]", lower, format(edge))
		lower = format(edge)
	}
	labels[len(edges)] = fmt.Sprintf("(%s,+inf)", lower)
	return labels
}

// Quantiles classifies values into up to bins buckets of equal training
// frequency. Edges are fitted per component; repeated quantiles collapse.
func Quantiles(bins int) UnaryOp {
	return UnaryOp{
		Name: "quantiles",
		Fit: func(values []float64) (UnaryOp, error) {
			if bins < 1 {
				return UnaryOp{}, errors.NotValidf("%d quantile bins", bins)
			}
			sorted := append([]float64(nil), values...)
			sort.Float64s(sorted)
			var edges []float64
			if len(sorted) > 0 {
				for k := 1; k < bins; k++ {
					edges = append(edges, stat.Quantile(float64(k)/float64(bins), stat.Empirical, sorted, nil))
				}
			}
			op := Buckets(lo.Uniq(edges))
			op.Name = "quantiles"
			return op, nil
		},
	}
}

// BinaryOp combines the same-sample values of two scalar components.
type BinaryOp struct {
	Name  string
	Value func(x, y float64) float64
}

func Product() BinaryOp {
	return BinaryOp{Name: "product", Value: func(x, y float64) float64 { return x * y }}
}

func Sum() BinaryOp {
	return BinaryOp{Name: "sum", Value: func(x, y float64) float64 { return x + y }}
}

func AbsDiff() BinaryOp {
	return BinaryOp{Name: "absdiff", Value: func(x, y float64) float64 { return math.Abs(x - y) }}
}

func Min() BinaryOp {
	return BinaryOp{Name: "min", Value: math.Min}
}

func Max() BinaryOp {
	return BinaryOp{Name: "max", Value: math.Max}
}

var unaryOps = map[string]func() UnaryOp{
	"slog1p":     SLog1p,
	"sign":       Sign,
	"sign_class": SignClass,
}

var binaryOps = map[string]func() BinaryOp{
	"product": Product,
	"sum":     Sum,
	"absdiff": AbsDiff,
	"min":     Min,
	"max":     Max,
}

func init() {
	for _, k := range kernels {
		for _, g := range []gradient{gradientX, gradientY, gradientMagnitude, gradientAngle} {
			unaryOps[k.name+"_"+g.String()] = func() UnaryOp {
				return gradientOp(k, g)
			}
		}
	}
}

// OpParams parameterize the operators returned by LookupUnary and
// LookupBinary. Edges are the bucket edges of buckets, Bins the bucket count
// of quantiles and Expression the source of expr.
type OpParams struct {
	Edges      []float64
	Bins       int
	Expression string
}

// LookupUnary returns the unary operator called name.
func LookupUnary(name string, params OpParams) (UnaryOp, error) {
	switch name {
	case "buckets":
		if len(params.Edges) == 0 {
			return UnaryOp{}, errors.NotValidf("buckets without edges")
		}
		if !sort.Float64sAreSorted(params.Edges) {
			return UnaryOp{}, errors.NotValidf("unsorted bucket edges %v", params.Edges)
		}
		return Buckets(params.Edges), nil
	case "quantiles":
		if params.Bins < 1 {
			return UnaryOp{}, errors.NotValidf("%d quantile bins", params.Bins)
		}
		return Quantiles(params.Bins), nil
	case "expr":
		return Expression(params.Expression)
	}
	if op, ok := unaryOps[name]; ok {
		return op(), nil
	}
	return UnaryOp{}, errs.Unsupportedf("unary operator %q", name)
}

// LookupBinary returns the binary operator called name.
func LookupBinary(name string, params OpParams) (BinaryOp, error) {
	if name == "expr" {
		return BinaryExpression(params.Expression)
	}
	if op, ok := binaryOps[name]; ok {
		return op(), nil
	}
	return BinaryOp{}, errs.Unsupportedf("binary operator %q", name)
}
