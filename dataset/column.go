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
	"math"

	"github.com/chewxy/math32"
	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/common/util"
	"github.com/gorse-io/tabular/stats"
	"github.com/juju/errors"
)

// View is read access to the values of one column. Callers check the mask
// before reading a sample.
type View interface {
	Kind() StorageKind
	// Stride is the number of stored values per sample.
	Stride() int
	// Float returns a component of a continuous sample.
	Float(sample, component int) float64
	// Label returns the class of a single label sample.
	Label(sample int) int
	// Hit reports whether a multi label sample has class.
	Hit(sample, class int) bool
}

// Column holds the values of one feature for every sample together with
// the mask of samples that have been set.
type Column struct {
	feature Feature
	dict    *Dict
	store   storage
	stride  int
	samples int
	mask    *Mask
}

// NewColumn allocates the narrowest buffer that can hold samples values of feature.
func NewColumn(feature Feature, samples int) (*Column, error) {
	if err := feature.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if samples < 0 {
		return nil, errs.OutOfRangef("%d samples", samples)
	}
	kind, err := storageKindOf(feature)
	if err != nil {
		return nil, errors.Trace(err)
	}
	stride := feature.Size()
	store, err := newStorage(kind, samples*stride)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Column{
		feature: feature,
		dict:    NewDict(feature.Labels...),
		store:   store,
		stride:  stride,
		samples: samples,
		mask:    NewMask(samples),
	}, nil
}

func (c *Column) Feature() Feature {
	return c.feature
}

func (c *Column) Samples() int {
	return c.samples
}

func (c *Column) Mask() *Mask {
	return c.mask
}

func (c *Column) Kind() StorageKind {
	return c.store.Kind()
}

func (c *Column) Stride() int {
	return c.stride
}

func (c *Column) Present(sample int) bool {
	return c.mask.Get(sample)
}

func (c *Column) Float(sample, component int) float64 {
	return c.store.Float(sample*c.stride + component)
}

func (c *Column) Label(sample int) int {
	return c.store.Int(sample)
}

func (c *Column) Hit(sample, class int) bool {
	return c.store.Int(sample*c.stride+class) != 0
}

// Floats copies all components of a continuous sample into out.
func (c *Column) Floats(sample int, out []float64) {
	base := sample * c.stride
	for i := range out[:c.stride] {
		out[i] = c.store.Float(base + i)
	}
}

// Visit calls op with the descriptor, typed view and mask of the column.
func (c *Column) Visit(op func(Feature, View, *Mask) error) error {
	return errors.Trace(op(c.feature, c, c.mask))
}

// Grow extends the column to samples. New samples are missing.
func (c *Column) Grow(samples int) {
	if samples <= c.samples {
		return
	}
	c.store = c.store.Grow(samples * c.stride)
	c.mask.Grow(samples)
	c.samples = samples
}

// Set stores value for sample and marks it present.
//
// Single label columns take a class index, a whole float or a label name.
// Strings that are not labels are parsed as class indices. Multi label
// columns take a hit vector ([]bool, []uint8 of length classes), a list of
// classes ([]int, []string) or a single class. Continuous columns take a
// number, a string parsed as the column's numeric kind, or a slice of
// length size(dims). NaN, empty strings and rows of NaN leave the sample
// missing. Rows mixing NaN and numbers are rejected.
func (c *Column) Set(sample int, value any) error {
	if err := errs.CheckIndex("sample", sample, c.samples); err != nil {
		return err
	}
	var (
		present = true
		err     error
	)
	switch c.feature.Type {
	case SingleLabel:
		err = c.setLabel(sample, value)
	case MultiLabel:
		err = c.setHits(sample, value)
	default:
		present, err = c.setValues(sample, value)
	}
	if err != nil {
		return errors.Trace(err)
	}
	if present {
		c.mask.Set(sample)
	}
	return nil
}

func (c *Column) classOf(value any) (int, error) {
	var (
		i  int64
		ok bool
	)
	switch v := value.(type) {
	case string:
		if id, found := c.dict.Id(v); found {
			return id, nil
		}
		n, err := util.ParseNumber[int64](v)
		if err != nil {
			return 0, errs.OutOfRangef("label %q of feature %q", v, c.feature.Name)
		}
		i, ok = n, true
	case float64:
		i, ok = wholeNumber(v)
	case float32:
		i, ok = wholeNumber(float64(v))
	default:
		if i, ok = asInt(value); !ok {
			var u uint64
			if u, ok = asUint(value); ok {
				if u > math.MaxInt64 {
					return 0, errs.OutOfRangef("class %d of feature %q", u, c.feature.Name)
				}
				i = int64(u)
			}
		}
	}
	if !ok {
		return 0, errs.TypeMismatchf("%v as class of feature %q", value, c.feature.Name)
	}
	if i < 0 || i >= int64(c.feature.Classes()) {
		return 0, errs.OutOfRangef("class %d of feature %q", i, c.feature.Name)
	}
	return int(i), nil
}

func (c *Column) setLabel(sample int, value any) error {
	label, err := c.classOf(value)
	if err != nil {
		return err
	}
	return c.store.SetInt(sample, int64(label))
}

func (c *Column) setHits(sample int, value any) error {
	hits := make([]bool, c.feature.Classes())
	switch v := value.(type) {
	case []bool:
		if len(v) != len(hits) {
			return errs.TypeMismatchf("%d hits for %d classes", len(v), len(hits))
		}
		copy(hits, v)
	case []uint8:
		if len(v) != len(hits) {
			return errs.TypeMismatchf("%d hits for %d classes", len(v), len(hits))
		}
		for i, hit := range v {
			hits[i] = hit != 0
		}
	case []int:
		for _, class := range v {
			i, err := c.classOf(class)
			if err != nil {
				return err
			}
			hits[i] = true
		}
	case []string:
		for _, label := range v {
			i, err := c.classOf(label)
			if err != nil {
				return err
			}
			hits[i] = true
		}
	default:
		i, err := c.classOf(value)
		if err != nil {
			return err
		}
		hits[i] = true
	}
	base := sample * c.stride
	for i, hit := range hits {
		var x int64
		if hit {
			x = 1
		}
		if err := c.store.SetInt(base+i, x); err != nil {
			return err
		}
	}
	return nil
}

func (c *Column) setValues(sample int, value any) (bool, error) {
	base := sample * c.stride
	checkLen := func(n int) error {
		if n != c.stride {
			return errs.TypeMismatchf("%d values for feature %q of dims %v", n, c.feature.Name, c.feature.Dims)
		}
		return nil
	}
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) {
			return false, nil
		}
		if err := checkLen(1); err != nil {
			return false, err
		}
		return true, c.store.SetFloat(base, v)
	case float32:
		if math32.IsNaN(v) {
			return false, nil
		}
		if err := checkLen(1); err != nil {
			return false, err
		}
		return true, c.store.SetFloat(base, float64(v))
	case string:
		if v == "" || isNaN(v) {
			return false, nil
		}
		if err := checkLen(1); err != nil {
			return false, err
		}
		return true, c.store.Parse(base, v)
	case []float64:
		if err := checkLen(len(v)); err != nil {
			return false, err
		}
		if missing, err := missingRow(c.feature.Name, v, math.IsNaN); missing || err != nil {
			return false, err
		}
		for i, x := range v {
			if err := c.store.SetFloat(base+i, x); err != nil {
				return false, err
			}
		}
	case []float32:
		if err := checkLen(len(v)); err != nil {
			return false, err
		}
		if missing, err := missingRow(c.feature.Name, v, math32.IsNaN); missing || err != nil {
			return false, err
		}
		for i, x := range v {
			if err := c.store.SetFloat(base+i, float64(x)); err != nil {
				return false, err
			}
		}
	case []int:
		if err := checkLen(len(v)); err != nil {
			return false, err
		}
		for i, x := range v {
			if err := c.store.SetInt(base+i, int64(x)); err != nil {
				return false, err
			}
		}
	case []int64:
		if err := checkLen(len(v)); err != nil {
			return false, err
		}
		for i, x := range v {
			if err := c.store.SetInt(base+i, x); err != nil {
				return false, err
			}
		}
	case []uint8:
		if err := checkLen(len(v)); err != nil {
			return false, err
		}
		for i, x := range v {
			if err := c.store.SetUint(base+i, uint64(x)); err != nil {
				return false, err
			}
		}
	case []string:
		if err := checkLen(len(v)); err != nil {
			return false, err
		}
		if missing, err := missingRow(c.feature.Name, v, isNaN); missing || err != nil {
			return false, err
		}
		for i, x := range v {
			if err := c.store.Parse(base+i, x); err != nil {
				return false, err
			}
		}
	default:
		if err := checkLen(1); err != nil {
			return false, err
		}
		if i, ok := asInt(value); ok {
			return true, c.store.SetInt(base, i)
		}
		if u, ok := asUint(value); ok {
			return true, c.store.SetUint(base, u)
		}
		return false, errs.TypeMismatchf("%T as value of feature %q", value, c.feature.Name)
	}
	return true, nil
}

// GetScalars gathers continuous values of samples into out, size(dims) values
// per sample. Missing samples are NaN.
func (c *Column) GetScalars(samples []int, out []float64) error {
	if c.feature.Type != Continuous {
		return errs.TypeMismatchf("scalar access to %v feature %q", c.feature.Type, c.feature.Name)
	}
	if len(out) != len(samples)*c.stride {
		return errs.TypeMismatchf("output of %d values for %d samples of dims %v", len(out), len(samples), c.feature.Dims)
	}
	for k, sample := range samples {
		if err := errs.CheckIndex("sample", sample, c.samples); err != nil {
			return err
		}
		row := out[k*c.stride : (k+1)*c.stride]
		if !c.mask.Get(sample) {
			for i := range row {
				row[i] = math.NaN()
			}
			continue
		}
		c.Floats(sample, row)
	}
	return nil
}

// GetLabels gathers single label classes of samples into out. Missing samples are -1.
func (c *Column) GetLabels(samples []int, out []int32) error {
	if c.feature.Type != SingleLabel {
		return errs.TypeMismatchf("single label access to %v feature %q", c.feature.Type, c.feature.Name)
	}
	if len(out) != len(samples) {
		return errs.TypeMismatchf("output of %d labels for %d samples", len(out), len(samples))
	}
	for k, sample := range samples {
		if err := errs.CheckIndex("sample", sample, c.samples); err != nil {
			return err
		}
		if !c.mask.Get(sample) {
			out[k] = -1
			continue
		}
		out[k] = int32(c.Label(sample))
	}
	return nil
}

// GetHits gathers multi label hits of samples into out, one row of classes
// per sample. Rows of missing samples are -1.
func (c *Column) GetHits(samples []int, out []int8) error {
	if c.feature.Type != MultiLabel {
		return errs.TypeMismatchf("multi label access to %v feature %q", c.feature.Type, c.feature.Name)
	}
	if len(out) != len(samples)*c.stride {
		return errs.TypeMismatchf("output of %d hits for %d samples of %d classes", len(out), len(samples), c.stride)
	}
	for k, sample := range samples {
		if err := errs.CheckIndex("sample", sample, c.samples); err != nil {
			return err
		}
		row := out[k*c.stride : (k+1)*c.stride]
		present := c.mask.Get(sample)
		for i := range row {
			switch {
			case !present:
				row[i] = -1
			case c.Hit(sample, i):
				row[i] = 1
			default:
				row[i] = 0
			}
		}
	}
	return nil
}

// ScalarStats reduces the present samples of a continuous column.
func (c *Column) ScalarStats(samples []int) (*stats.Scalar, error) {
	if c.feature.Type != Continuous {
		return nil, errs.TypeMismatchf("scalar stats of %v feature %q", c.feature.Type, c.feature.Name)
	}
	s := stats.NewScalar(c.stride)
	values := make([]float64, c.stride)
	for _, sample := range samples {
		if err := errs.CheckIndex("sample", sample, c.samples); err != nil {
			return nil, err
		}
		if c.mask.Get(sample) {
			c.Floats(sample, values)
			s.Add(values)
		}
	}
	return s, nil
}

// SClassStats counts the classes of the present samples of a single label column.
func (c *Column) SClassStats(samples []int) (*stats.SClass, error) {
	if c.feature.Type != SingleLabel {
		return nil, errs.TypeMismatchf("single label stats of %v feature %q", c.feature.Type, c.feature.Name)
	}
	s := stats.NewSClass(c.feature.Classes())
	for _, sample := range samples {
		if err := errs.CheckIndex("sample", sample, c.samples); err != nil {
			return nil, err
		}
		if c.mask.Get(sample) {
			s.Add(c.Label(sample))
		}
	}
	return s, nil
}

// MClassStats counts the hit patterns of the present samples of a multi label column.
func (c *Column) MClassStats(samples []int) (*stats.MClass, error) {
	if c.feature.Type != MultiLabel {
		return nil, errs.TypeMismatchf("multi label stats of %v feature %q", c.feature.Type, c.feature.Name)
	}
	s := stats.NewMClass(c.feature.Classes())
	hits := make([]bool, c.stride)
	for _, sample := range samples {
		if err := errs.CheckIndex("sample", sample, c.samples); err != nil {
			return nil, err
		}
		if c.mask.Get(sample) {
			for i := range hits {
				hits[i] = c.Hit(sample, i)
			}
			s.Add(hits)
		}
	}
	return s, nil
}

// missingRow reports whether every component of a row is NaN. Rows mixing
// NaN and numbers are rejected.
func missingRow[T any](name string, row []T, nan func(T) bool) (bool, error) {
	n := 0
	for _, x := range row {
		if nan(x) {
			n++
		}
	}
	switch n {
	case 0:
		return false, nil
	case len(row):
		return true, nil
	default:
		return false, errs.TypeMismatchf("%d of %d values of feature %q are NaN", n, len(row), name)
	}
}

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	default:
		return 0, false
	}
}

func asUint(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint:
		return uint64(v), true
	case uint64:
		return v, true
	default:
		return 0, false
	}
}

func isNaN(s string) bool {
	v, err := util.ParseFloat[float64](s)
	return err == nil && math.IsNaN(v)
}

// wholeNumber converts a float without fraction to an integer.
func wholeNumber(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, false
	}
	return int64(v), true
}
