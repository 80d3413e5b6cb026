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

// DatasetGenerator composes generators fitted on the same samples behind one
// global feature and column address space. Feature i of the composition is
// feature featureMapping[i].B of generator featureMapping[i].A.
type DatasetGenerator struct {
	data       *dataset.Dataset
	samples    []int
	jobs       int
	batch      int
	exec       parallel.Execution
	generators []Generator

	featureMapping []lo.Tuple2[int, int]
	columnMapping  []int
	featureColumns []int
	columns        int
}

// NewDatasetGenerator creates an empty composition over the fit samples of
// data. A nil samples selects every sample.
func NewDatasetGenerator(data *dataset.Dataset, samples []int, opts ...Option) (*DatasetGenerator, error) {
	if !data.Ready() {
		return nil, errs.NotReadyf("dataset not resized")
	}
	if samples == nil {
		samples = util.RangeInt(data.Samples())
	}
	for _, sample := range samples {
		if err := errs.CheckIndex("sample", sample, data.Samples()); err != nil {
			return nil, err
		}
	}
	o := newOptions(opts)
	return &DatasetGenerator{
		data:    data,
		samples: samples,
		jobs:    o.jobs,
		batch:   o.batch,
		exec:    o.exec,
	}, nil
}

// Add fits g on the fit samples and appends its features.
func (d *DatasetGenerator) Add(g Generator) error {
	if err := g.Fit(d.samples, d.exec); err != nil {
		return errors.Annotatef(err, "fit generator %s", g.Name())
	}
	d.generators = append(d.generators, g)
	if err := d.update(); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Debug("add generator",
		zap.String("generator", g.Name()),
		zap.Int("features", g.Features()),
		zap.Int("total_features", d.Features()),
		zap.Int("total_columns", d.columns))
	return nil
}

func (d *DatasetGenerator) update() error {
	d.featureMapping = d.featureMapping[:0]
	d.columnMapping = d.columnMapping[:0]
	d.featureColumns = d.featureColumns[:0]
	d.columns = 0
	for gi, g := range d.generators {
		for i := 0; i < g.Features(); i++ {
			f, err := g.Feature(i)
			if err != nil {
				return errors.Trace(err)
			}
			d.featureMapping = append(d.featureMapping, lo.T2(gi, i))
			d.featureColumns = append(d.featureColumns, d.columns)
			for c := 0; c < f.Columns(); c++ {
				d.columnMapping = append(d.columnMapping, gi)
			}
			d.columns += f.Columns()
		}
	}
	return nil
}

func (d *DatasetGenerator) Dataset() *dataset.Dataset {
	return d.data
}

// Batch returns the chunk size used by FlattenStats and TargetStats when
// they are called with batch 0.
func (d *DatasetGenerator) Batch() int {
	return d.batch
}

// Samples returns the fit samples.
func (d *DatasetGenerator) Samples() []int {
	return d.samples
}

func (d *DatasetGenerator) Generators() []Generator {
	return d.generators
}

func (d *DatasetGenerator) Features() int {
	return len(d.featureMapping)
}

func (d *DatasetGenerator) Columns() int {
	return d.columns
}

// Locate returns the generator owning feature i and the feature's local index.
func (d *DatasetGenerator) Locate(i int) (Generator, int, error) {
	if err := errs.CheckIndex("feature", i, len(d.featureMapping)); err != nil {
		return nil, 0, err
	}
	t := d.featureMapping[i]
	return d.generators[t.A], t.B, nil
}

func (d *DatasetGenerator) Feature(i int) (dataset.Feature, error) {
	g, local, err := d.Locate(i)
	if err != nil {
		return dataset.Feature{}, err
	}
	return g.Feature(local)
}

// FeatureColumn returns the first flatten column of feature i.
func (d *DatasetGenerator) FeatureColumn(i int) (int, error) {
	if err := errs.CheckIndex("feature", i, len(d.featureColumns)); err != nil {
		return 0, err
	}
	return d.featureColumns[i], nil
}

// ColumnGenerator returns the generator owning flatten column c.
func (d *DatasetGenerator) ColumnGenerator(c int) (Generator, error) {
	if err := errs.CheckIndex("column", c, len(d.columnMapping)); err != nil {
		return nil, err
	}
	return d.generators[d.columnMapping[c]], nil
}

func (d *DatasetGenerator) SelectSClass(i int, samples []int, out []int32) error {
	g, local, err := d.Locate(i)
	if err != nil {
		return err
	}
	return g.SelectSClass(local, samples, out)
}

func (d *DatasetGenerator) SelectMClass(i int, samples []int, out []int8) error {
	g, local, err := d.Locate(i)
	if err != nil {
		return err
	}
	return g.SelectMClass(local, samples, out)
}

func (d *DatasetGenerator) SelectScalar(i int, samples []int, out []float64) error {
	g, local, err := d.Locate(i)
	if err != nil {
		return err
	}
	return g.SelectScalar(local, samples, out)
}

func (d *DatasetGenerator) SelectStruct(i int, samples []int, out []float64) error {
	g, local, err := d.Locate(i)
	if err != nil {
		return err
	}
	return g.SelectStruct(local, samples, out)
}

func (d *DatasetGenerator) Drop(i int) error {
	g, local, err := d.Locate(i)
	if err != nil {
		return err
	}
	return g.Drop(local)
}

func (d *DatasetGenerator) Shuffle(i int) error {
	g, local, err := d.Locate(i)
	if err != nil {
		return err
	}
	return g.Shuffle(local)
}

func (d *DatasetGenerator) Mode(i int) (Mode, error) {
	g, local, err := d.Locate(i)
	if err != nil {
		return Default, err
	}
	return g.Mode(local)
}

func (d *DatasetGenerator) Undrop() {
	for _, g := range d.generators {
		g.Undrop()
	}
}

func (d *DatasetGenerator) Unshuffle() {
	for _, g := range d.generators {
		g.Unshuffle()
	}
}

// Flatten writes every feature of samples into out, which must be
// len(samples) x Columns(). Under Par features and row chunks are written
// concurrently.
func (d *DatasetGenerator) Flatten(exec parallel.Execution, samples []int, out *mat.Dense) error {
	rows, cols := out.Dims()
	if rows != len(samples) || cols != d.columns {
		return errs.TypeMismatchf("flatten %d samples of %d columns into a %dx%d matrix", len(samples), d.columns, rows, cols)
	}
	// jobs are (feature, row chunk) pairs so that a few wide features still
	// use every worker
	workers := exec.Workers(d.jobs)
	chunks := parallel.Split(samples, workers)
	begins := make([]int, len(chunks))
	for c := 1; c < len(chunks); c++ {
		begins[c] = begins[c-1] + len(chunks[c-1])
	}
	return parallel.Parallel(context.Background(), d.Features()*len(chunks), workers, func(_, job int) error {
		i, c := job/len(chunks), job%len(chunks)
		t := d.featureMapping[i]
		rows := out.Slice(begins[c], begins[c]+len(chunks[c]), 0, cols).(*mat.Dense)
		return d.generators[t.A].FlattenFeature(t.B, chunks[c], rows, d.featureColumns[i])
	})
}

// SelectStats partitions the features by the kind of value they select.
type SelectStats struct {
	SClass []int
	MClass []int
	Scalar []int
	Struct []int
}

func (d *DatasetGenerator) SelectStats() (SelectStats, error) {
	var s SelectStats
	for i := range d.featureMapping {
		f, err := d.Feature(i)
		if err != nil {
			return SelectStats{}, errors.Trace(err)
		}
		switch {
		case f.Type == dataset.SingleLabel:
			s.SClass = append(s.SClass, i)
		case f.Type == dataset.MultiLabel:
			s.MClass = append(s.MClass, i)
		case f.Scalar():
			s.Scalar = append(s.Scalar, i)
		default:
			s.Struct = append(s.Struct, i)
		}
	}
	return s, nil
}
