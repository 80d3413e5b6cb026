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
	"context"
	"math"

	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/common/log"
	"github.com/gorse-io/tabular/common/parallel"
	"github.com/gorse-io/tabular/common/util"
	"github.com/gorse-io/tabular/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// source computes one generated feature.
type source interface {
	feature() dataset.Feature
	mapping() []int
	present(sample int) bool
	// read writes the value of sample into out: size(dims) values for
	// continuous features, the class for single label features and one 0/1
	// hit per class for multi label features.
	read(sample int, out []float64)
	fit(samples []int) error
}

// base implements Generator over the sources returned by build.
type base struct {
	name  string
	data  *dataset.Dataset
	build func() ([]source, error)
	jobs  int
	rng   util.RandomGenerator

	sources  []source
	features []dataset.Feature
	offsets  []int
	modes    []Mode
	perms    [][]int
	samples  []int
	fitted   bool
}

func newBase(name string, data *dataset.Dataset, o options) *base {
	return &base{
		name: name,
		data: data,
		jobs: o.jobs,
		rng:  util.NewRandomGenerator(o.seed),
	}
}

func (g *base) Name() string {
	return g.name
}

func (g *base) Fit(samples []int, exec parallel.Execution) error {
	if !g.data.Ready() {
		return errs.NotReadyf("dataset not resized")
	}
	for _, sample := range samples {
		if err := errs.CheckIndex("sample", sample, g.data.Samples()); err != nil {
			return err
		}
	}
	sources, err := g.build()
	if err != nil {
		return errors.Trace(err)
	}
	err = parallel.Parallel(context.Background(), len(sources), exec.Workers(g.jobs), func(_, i int) error {
		return sources[i].fit(samples)
	})
	if err != nil {
		return errors.Trace(err)
	}
	g.sources = sources
	g.features = make([]dataset.Feature, len(sources))
	g.offsets = make([]int, len(sources)+1)
	for i, src := range sources {
		g.features[i] = src.feature()
		g.offsets[i+1] = g.offsets[i] + g.features[i].Columns()
	}
	g.modes = make([]Mode, len(sources))
	g.perms = make([][]int, len(sources))
	g.samples = append([]int(nil), samples...)
	g.fitted = true
	log.Logger().Debug("fit generator",
		zap.String("generator", g.name),
		zap.Int("samples", len(samples)),
		zap.Int("features", len(sources)),
		zap.Int("columns", g.Columns()),
		zap.Stringer("execution", exec))
	return nil
}

func (g *base) Fitted() bool {
	return g.fitted
}

func (g *base) Features() int {
	return len(g.sources)
}

func (g *base) Columns() int {
	if len(g.offsets) == 0 {
		return 0
	}
	return g.offsets[len(g.offsets)-1]
}

func (g *base) check(i int) error {
	if !g.fitted {
		return errs.NotReadyf("generator %s not fitted", g.name)
	}
	return errs.CheckIndex("feature", i, len(g.sources))
}

func (g *base) Feature(i int) (dataset.Feature, error) {
	if err := g.check(i); err != nil {
		return dataset.Feature{}, err
	}
	return g.features[i], nil
}

func (g *base) Mapping(i int) ([]int, error) {
	if err := g.check(i); err != nil {
		return nil, err
	}
	return g.sources[i].mapping(), nil
}

func (g *base) Mode(i int) (Mode, error) {
	if err := g.check(i); err != nil {
		return Default, err
	}
	return g.modes[i], nil
}

func (g *base) Drop(i int) error {
	if err := g.check(i); err != nil {
		return err
	}
	g.modes[i] = Dropped
	return nil
}

func (g *base) Undrop() {
	for i, mode := range g.modes {
		if mode != Dropped {
			continue
		}
		if g.perms[i] != nil {
			g.modes[i] = Shuffled
		} else {
			g.modes[i] = Default
		}
	}
}

// Shuffle draws a new permutation of the fit samples for feature i. Reading
// fit sample k of feature i then returns the value stored for perm(k).
// Samples outside the fit set are not affected.
func (g *base) Shuffle(i int) error {
	if err := g.check(i); err != nil {
		return err
	}
	// repeated fit samples are permuted once
	domain := lo.Uniq(g.samples)
	perm := util.RangeInt(g.data.Samples())
	for k, sample := range g.rng.Permutation(domain) {
		perm[domain[k]] = sample
	}
	g.perms[i] = perm
	if g.modes[i] != Dropped {
		g.modes[i] = Shuffled
	}
	return nil
}

func (g *base) Unshuffle() {
	for i := range g.perms {
		g.perms[i] = nil
		if g.modes[i] == Shuffled {
			g.modes[i] = Default
		}
	}
}

// origin maps a requested sample to the sample actually read.
func (g *base) origin(i, sample int) int {
	if perm := g.perms[i]; perm != nil && sample < len(perm) {
		return perm[sample]
	}
	return sample
}

// value reads sample of feature i into out and reports whether it is defined.
func (g *base) value(i, sample int, out []float64) (bool, error) {
	if err := errs.CheckIndex("sample", sample, g.data.Samples()); err != nil {
		return false, err
	}
	if g.modes[i] == Dropped {
		return false, nil
	}
	sample = g.origin(i, sample)
	if !g.sources[i].present(sample) {
		return false, nil
	}
	g.sources[i].read(sample, out)
	return true, nil
}

func (g *base) SelectSClass(i int, samples []int, out []int32) error {
	if err := g.check(i); err != nil {
		return err
	}
	f := g.features[i]
	if f.Type != dataset.SingleLabel {
		return errs.TypeMismatchf("single label select of %v feature %q", f.Type, f.Name)
	}
	if len(out) != len(samples) {
		return errs.TypeMismatchf("output of %d labels for %d samples", len(out), len(samples))
	}
	var buf [1]float64
	for k, sample := range samples {
		ok, err := g.value(i, sample, buf[:])
		if err != nil {
			return err
		}
		if ok {
			out[k] = int32(buf[0])
		} else {
			out[k] = -1
		}
	}
	return nil
}

func (g *base) SelectMClass(i int, samples []int, out []int8) error {
	if err := g.check(i); err != nil {
		return err
	}
	f := g.features[i]
	if f.Type != dataset.MultiLabel {
		return errs.TypeMismatchf("multi label select of %v feature %q", f.Type, f.Name)
	}
	classes := f.Classes()
	if len(out) != len(samples)*classes {
		return errs.TypeMismatchf("output of %d hits for %d samples of %d classes", len(out), len(samples), classes)
	}
	buf := make([]float64, classes)
	for k, sample := range samples {
		ok, err := g.value(i, sample, buf)
		if err != nil {
			return err
		}
		row := out[k*classes : (k+1)*classes]
		for c := range row {
			switch {
			case !ok:
				row[c] = -1
			case buf[c] != 0:
				row[c] = 1
			default:
				row[c] = 0
			}
		}
	}
	return nil
}

func (g *base) SelectScalar(i int, samples []int, out []float64) error {
	if err := g.check(i); err != nil {
		return err
	}
	f := g.features[i]
	if !f.Scalar() {
		return errs.TypeMismatchf("scalar select of %v feature %q with dims %v", f.Type, f.Name, f.Dims)
	}
	return g.selectFloats(i, samples, out)
}

func (g *base) SelectStruct(i int, samples []int, out []float64) error {
	if err := g.check(i); err != nil {
		return err
	}
	f := g.features[i]
	if f.Type != dataset.Continuous {
		return errs.TypeMismatchf("structured select of %v feature %q", f.Type, f.Name)
	}
	return g.selectFloats(i, samples, out)
}

func (g *base) selectFloats(i int, samples []int, out []float64) error {
	size := g.features[i].Size()
	if len(out) != len(samples)*size {
		return errs.TypeMismatchf("output of %d values for %d samples of size %d", len(out), len(samples), size)
	}
	for k, sample := range samples {
		row := out[k*size : (k+1)*size]
		ok, err := g.value(i, sample, row)
		if err != nil {
			return err
		}
		if !ok {
			for c := range row {
				row[c] = math.NaN()
			}
		}
	}
	return nil
}

func (g *base) Flatten(samples []int, out *mat.Dense, column int) error {
	if !g.fitted {
		return errs.NotReadyf("generator %s not fitted", g.name)
	}
	for i := range g.sources {
		if err := g.FlattenFeature(i, samples, out, column+g.offsets[i]); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// FlattenFeature expands feature i into columns [column, column+Columns(i)).
// Single and multi label features are encoded with +1 for active classes and
// -1 otherwise. Missing and dropped samples are all zero.
func (g *base) FlattenFeature(i int, samples []int, out *mat.Dense, column int) error {
	if err := g.check(i); err != nil {
		return err
	}
	f := g.features[i]
	width := f.Columns()
	rows, cols := out.Dims()
	if rows != len(samples) || column < 0 || column+width > cols {
		return errs.TypeMismatchf("flatten %d samples into columns [%d, %d) of a %dx%d matrix",
			len(samples), column, column+width, rows, cols)
	}
	raw := out.RawMatrix()
	buf := make([]float64, f.Size())
	for k, sample := range samples {
		row := raw.Data[k*raw.Stride+column : k*raw.Stride+column+width]
		ok, err := g.value(i, sample, buf)
		if err != nil {
			return err
		}
		if !ok {
			clear(row)
			continue
		}
		switch f.Type {
		case dataset.SingleLabel:
			for c := range row {
				row[c] = -1
			}
			row[int(buf[0])] = 1
		case dataset.MultiLabel:
			for c := range row {
				if buf[c] != 0 {
					row[c] = 1
				} else {
					row[c] = -1
				}
			}
		default:
			copy(row, buf)
		}
	}
	return nil
}
