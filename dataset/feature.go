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

package dataset

import (
	"fmt"

	"github.com/gorse-io/tabular/common/errs"
)

// FeatureType is the semantic type of a feature.
type FeatureType int

const (
	Continuous FeatureType = iota
	SingleLabel
	MultiLabel
)

func (t FeatureType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case SingleLabel:
		return "sclass"
	case MultiLabel:
		return "mclass"
	default:
		return fmt.Sprintf("FeatureType(%d)", int(t))
	}
}

// NumericKind is the storage width of a continuous feature.
type NumericKind int

const (
	Int8 NumericKind = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var numericKindNames = [...]string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64"}

func (k NumericKind) String() string {
	if k < Int8 || k > Float64 {
		return fmt.Sprintf("NumericKind(%d)", int(k))
	}
	return numericKindNames[k]
}

// Dims is the shape of one sample of a continuous feature.
type Dims [3]int

// ScalarDims is the shape of a plain scalar.
var ScalarDims = Dims{1, 1, 1}

func (d Dims) Size() int {
	return d[0] * d[1] * d[2]
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d[0], d[1], d[2])
}

// Feature describes one stored or generated column.
type Feature struct {
	Name   string
	Type   FeatureType
	Kind   NumericKind
	Dims   Dims
	Labels []string
	// Optional marks features whose samples may be missing.
	Optional bool
}

func NewScalarFeature(name string, kind NumericKind) Feature {
	return Feature{Name: name, Type: Continuous, Kind: kind, Dims: ScalarDims}
}

func NewStructFeature(name string, kind NumericKind, dims Dims) Feature {
	return Feature{Name: name, Type: Continuous, Kind: kind, Dims: dims}
}

func NewSingleLabelFeature(name string, labels ...string) Feature {
	return Feature{Name: name, Type: SingleLabel, Dims: ScalarDims, Labels: labels}
}

func NewMultiLabelFeature(name string, labels ...string) Feature {
	return Feature{Name: name, Type: MultiLabel, Dims: ScalarDims, Labels: labels}
}

// WithOptional returns a copy of f that allows missing samples.
func (f Feature) WithOptional(optional bool) Feature {
	f.Optional = optional
	return f
}

func (f Feature) Discrete() bool {
	return len(f.Labels) > 0
}

func (f Feature) Classes() int {
	return len(f.Labels)
}

// Scalar reports a continuous feature with one component.
func (f Feature) Scalar() bool {
	return f.Type == Continuous && f.Dims.Size() == 1
}

// Structured reports a continuous feature with more than one component.
func (f Feature) Structured() bool {
	return f.Type == Continuous && f.Dims.Size() > 1
}

// Size is the number of stored values per sample.
func (f Feature) Size() int {
	switch f.Type {
	case SingleLabel:
		return 1
	case MultiLabel:
		return f.Classes()
	default:
		return f.Dims.Size()
	}
}

// Columns is the number of flattened columns.
func (f Feature) Columns() int {
	if f.Discrete() {
		return f.Classes()
	}
	return f.Dims.Size()
}

func (f Feature) Validate() error {
	switch f.Type {
	case SingleLabel, MultiLabel:
		if !f.Discrete() {
			return errs.TypeMismatchf("%s feature %q without labels", f.Type, f.Name)
		}
		if f.Dims != ScalarDims {
			return errs.TypeMismatchf("%s feature %q with dims %v", f.Type, f.Name, f.Dims)
		}
	case Continuous:
		if f.Discrete() {
			return errs.TypeMismatchf("continuous feature %q with labels", f.Name)
		}
		if f.Kind < Int8 || f.Kind > Float64 {
			return errs.Unsupportedf("feature %q of kind %v", f.Name, f.Kind)
		}
		if f.Dims[0] <= 0 || f.Dims[1] <= 0 || f.Dims[2] <= 0 {
			return errs.TypeMismatchf("feature %q with dims %v", f.Name, f.Dims)
		}
	default:
		return errs.Unsupportedf("feature %q of type %v", f.Name, f.Type)
	}
	return nil
}

func (f Feature) String() string {
	switch f.Type {
	case Continuous:
		return fmt.Sprintf("%s:%v[%v]", f.Name, f.Kind, f.Dims)
	default:
		return fmt.Sprintf("%s:%v(%d)", f.Name, f.Type, f.Classes())
	}
}
