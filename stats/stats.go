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

// Package stats provides streaming reducers that can be filled on separate
// shards and merged in any order.
package stats

import (
	"math"
	"strings"

	"github.com/gorse-io/tabular/common/errs"
	"github.com/samber/lo"
)

// Stats is one of *Scalar, *SClass or *MClass.
type Stats interface {
	// Merge adds the partial result of another accumulator of the same variant.
	Merge(other Stats) error
	// Done finalizes derived values. Calling it again recomputes them.
	Done()
}

// Scalar accumulates per component count, min, max and raw sums. Mean and
// Stdev are only valid after Done.
type Scalar struct {
	Count int
	Min   []float64
	Max   []float64
	Sum   []float64
	Sum2  []float64
	Mean  []float64
	Stdev []float64
}

func NewScalar(components int) *Scalar {
	return &Scalar{
		Min:   lo.RepeatBy(components, func(int) float64 { return math.Inf(1) }),
		Max:   lo.RepeatBy(components, func(int) float64 { return math.Inf(-1) }),
		Sum:   make([]float64, components),
		Sum2:  make([]float64, components),
		Mean:  make([]float64, components),
		Stdev: make([]float64, components),
	}
}

func (s *Scalar) Components() int {
	return len(s.Sum)
}

// Add accumulates one sample. len(values) must equal Components().
func (s *Scalar) Add(values []float64) {
	s.Count++
	for i, x := range values {
		s.Min[i] = math.Min(s.Min[i], x)
		s.Max[i] = math.Max(s.Max[i], x)
		s.Sum[i] += x
		s.Sum2[i] += x * x
	}
}

func (s *Scalar) Merge(other Stats) error {
	o, ok := other.(*Scalar)
	if !ok {
		return errs.TypeMismatchf("merge %T into scalar stats", other)
	}
	if o.Components() != s.Components() {
		return errs.TypeMismatchf("merge %d components into %d", o.Components(), s.Components())
	}
	s.Count += o.Count
	for i := range s.Sum {
		s.Min[i] = math.Min(s.Min[i], o.Min[i])
		s.Max[i] = math.Max(s.Max[i], o.Max[i])
		s.Sum[i] += o.Sum[i]
		s.Sum2[i] += o.Sum2[i]
	}
	return nil
}

func (s *Scalar) Done() {
	n := float64(s.Count)
	for i := range s.Sum {
		if s.Count == 0 {
			s.Mean[i], s.Stdev[i] = 0, 0
			continue
		}
		s.Mean[i] = s.Sum[i] / n
		if s.Count > 1 {
			s.Stdev[i] = math.Sqrt(math.Max(0, (s.Sum2[i]-s.Mean[i]*s.Sum[i])/(n-1)))
		} else {
			s.Stdev[i] = 0
		}
	}
}

// SClass counts single label classes.
type SClass struct {
	Counts []int
}

func NewSClass(classes int) *SClass {
	return &SClass{Counts: make([]int, classes)}
}

func (s *SClass) Classes() int {
	return len(s.Counts)
}

func (s *SClass) Add(label int) {
	s.Counts[label]++
}

func (s *SClass) AddCounts(counts []int) {
	for i, c := range counts {
		s.Counts[i] += c
	}
}

// Total returns the number of counted samples.
func (s *SClass) Total() int {
	return lo.Sum(s.Counts)
}

func (s *SClass) Merge(other Stats) error {
	o, ok := other.(*SClass)
	if !ok {
		return errs.TypeMismatchf("merge %T into single label stats", other)
	}
	if o.Classes() != s.Classes() {
		return errs.TypeMismatchf("merge %d classes into %d", o.Classes(), s.Classes())
	}
	s.AddCounts(o.Counts)
	return nil
}

func (s *SClass) Done() {}

// MClass is a histogram of multi label hit patterns. A pattern is keyed by
// one '0' or '1' per class.
type MClass struct {
	Classes  int
	Patterns map[string]int
}

func NewMClass(classes int) *MClass {
	return &MClass{Classes: classes, Patterns: make(map[string]int)}
}

// Add counts one sample given its hit vector.
func (s *MClass) Add(hits []bool) {
	s.Patterns[Pattern(hits)]++
}

func (s *MClass) Merge(other Stats) error {
	o, ok := other.(*MClass)
	if !ok {
		return errs.TypeMismatchf("merge %T into multi label stats", other)
	}
	if o.Classes != s.Classes {
		return errs.TypeMismatchf("merge %d classes into %d", o.Classes, s.Classes)
	}
	for k, v := range o.Patterns {
		s.Patterns[k] += v
	}
	return nil
}

func (s *MClass) Done() {}

// Total returns the number of counted samples.
func (s *MClass) Total() int {
	return lo.Sum(lo.Values(s.Patterns))
}

// Pattern renders hits as a string of '0' and '1'.
func Pattern(hits []bool) string {
	var b strings.Builder
	b.Grow(len(hits))
	for _, hit := range hits {
		if hit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
