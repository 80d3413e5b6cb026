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

package util

import (
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Number is any fixed width integer or float.
type Number interface {
	constraints.Integer | constraints.Float
}

func ParseFloat[T constraints.Float](s string) (T, error) {
	var zero T
	v, err := strconv.ParseFloat(strings.TrimSpace(s), bitSize(zero))
	return T(v), err
}

func ParseInt[T constraints.Signed](s string) (T, error) {
	var zero T
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, bitSize(zero))
	return T(v), err
}

func ParseUInt[T constraints.Unsigned](s string) (T, error) {
	var zero T
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, bitSize(zero))
	return T(v), err
}

// ParseNumber parses s into any numeric type, checking the range of T.
func ParseNumber[T Number](s string) (T, error) {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), bitSize(zero))
		return T(v), err
	case int8, int16, int32, int64, int:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, bitSize(zero))
		return T(v), err
	default:
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, bitSize(zero))
		return T(v), err
	}
}

func bitSize[T Number](v T) int {
	switch any(v).(type) {
	case int8, uint8:
		return 8
	case int16, uint16:
		return 16
	case int32, uint32, float32:
		return 32
	default:
		return 64
	}
}
