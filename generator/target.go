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
	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/dataset"
	"github.com/gorse-io/tabular/stats"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

func (d *DatasetGenerator) Target() (dataset.Feature, error) {
	return d.data.Target()
}

func (d *DatasetGenerator) TargetDims() (dataset.Dims, error) {
	return d.data.TargetDims()
}

func (d *DatasetGenerator) TargetSClass(samples []int, out []int32) error {
	column, err := d.data.TargetColumn()
	if err != nil {
		return errors.Trace(err)
	}
	return column.GetLabels(samples, out)
}

func (d *DatasetGenerator) TargetMClass(samples []int, out []int8) error {
	column, err := d.data.TargetColumn()
	if err != nil {
		return errors.Trace(err)
	}
	return column.GetHits(samples, out)
}

func (d *DatasetGenerator) TargetScalars(samples []int, out []float64) error {
	column, err := d.data.TargetColumn()
	if err != nil {
		return errors.Trace(err)
	}
	return column.GetScalars(samples, out)
}

// FlattenTargets writes the target of samples into out with the encoding of
// Flatten: ±1 per class for label targets, raw values for continuous ones
// and zeros for missing samples.
func (d *DatasetGenerator) FlattenTargets(samples []int, out *mat.Dense) error {
	return d.data.VisitTarget(func(f dataset.Feature, view dataset.View, mask *dataset.Mask) error {
		rows, cols := out.Dims()
		if rows != len(samples) || cols != f.Columns() {
			return errs.TypeMismatchf("flatten %d targets of %d columns into a %dx%d matrix", len(samples), f.Columns(), rows, cols)
		}
		raw := out.RawMatrix()
		for k, sample := range samples {
			if err := errs.CheckIndex("sample", sample, mask.Samples()); err != nil {
				return err
			}
			row := raw.Data[k*raw.Stride : k*raw.Stride+cols]
			if !mask.Get(sample) {
				clear(row)
				continue
			}
			switch f.Type {
			case dataset.SingleLabel:
				label := view.Label(sample)
				for c := range row {
					row[c] = lo.Ternary(c == label, 1.0, -1.0)
				}
			case dataset.MultiLabel:
				for c := range row {
					row[c] = lo.Ternary(view.Hit(sample, c), 1.0, -1.0)
				}
			default:
				for c := range row {
					row[c] = view.Float(sample, c)
				}
			}
		}
		return nil
	})
}

// SampleWeights returns one weight per fit sample that balances the classes
// of a single label target: N/(classes·count). st must be the single label
// TargetStats of the fit samples. Samples without a target weigh zero.
// Multi label and continuous targets are not reweighted.
func (d *DatasetGenerator) SampleWeights(st stats.Stats) ([]float64, error) {
	column, err := d.data.TargetColumn()
	if err != nil {
		return nil, errors.Trace(err)
	}
	f := column.Feature()
	weights := make([]float64, len(d.samples))
	if f.Type != dataset.SingleLabel {
		for i := range weights {
			weights[i] = 1
		}
		return weights, nil
	}
	counts, ok := st.(*stats.SClass)
	if !ok {
		return nil, errs.TypeMismatchf("%T as single label target stats", st)
	}
	if counts.Classes() != f.Classes() {
		return nil, errs.TypeMismatchf("stats of %d classes for target %q of %d classes", counts.Classes(), f.Name, f.Classes())
	}
	total := float64(counts.Total())
	classes := float64(f.Classes())
	for i, sample := range d.samples {
		if column.Present(sample) {
			weights[i] = total / (classes * float64(max(counts.Counts[column.Label(sample)], 1)))
		}
	}
	return weights, nil
}
