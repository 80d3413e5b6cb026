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
	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/common/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// NoTarget is the target index of unsupervised datasets.
const NoTarget = -1

// Dataset is an ordered list of columns sharing the same number of samples.
// One column may be the target; the others are inputs.
type Dataset struct {
	features []Feature
	columns  []*Column
	target   int
	samples  int
	ready    bool
}

func NewDataset() *Dataset {
	return &Dataset{target: NoTarget}
}

// Resize allocates one column per feature. The optional target is an index
// into features and must not be optional.
func (d *Dataset) Resize(samples int, features []Feature, target ...int) error {
	t := NoTarget
	if len(target) > 0 {
		t = target[0]
	}
	if t != NoTarget {
		if err := errs.CheckIndex("target", t, len(features)); err != nil {
			return err
		}
		if features[t].Optional {
			return errs.TypeMismatchf("optional target %q", features[t].Name)
		}
	}
	columns := make([]*Column, len(features))
	for i, feature := range features {
		column, err := NewColumn(feature, samples)
		if err != nil {
			return errors.Annotatef(err, "feature %d", i)
		}
		columns[i] = column
	}
	d.features = append([]Feature(nil), features...)
	d.columns = columns
	d.target = t
	d.samples = samples
	d.ready = true
	log.Logger().Debug("resize dataset",
		zap.Int("samples", samples),
		zap.Int("features", len(features)),
		zap.Int("target", t))
	return nil
}

// Grow extends every column to samples.
func (d *Dataset) Grow(samples int) error {
	if !d.ready {
		return errs.NotReadyf("dataset not resized")
	}
	for _, column := range d.columns {
		column.Grow(samples)
	}
	if samples > d.samples {
		d.samples = samples
	}
	return nil
}

func (d *Dataset) Ready() bool {
	return d.ready
}

func (d *Dataset) Samples() int {
	return d.samples
}

// Features counts all features including the target.
func (d *Dataset) Features() int {
	return len(d.features)
}

// Inputs counts features excluding the target.
func (d *Dataset) Inputs() int {
	if d.Supervised() {
		return len(d.features) - 1
	}
	return len(d.features)
}

func (d *Dataset) Supervised() bool {
	return d.target != NoTarget
}

// TargetIndex returns the index of the target among all features.
func (d *Dataset) TargetIndex() int {
	return d.target
}

// Set stores value for sample of feature. feature indexes all features
// including the target.
func (d *Dataset) Set(sample, feature int, value any) error {
	if !d.ready {
		return errs.NotReadyf("dataset not resized")
	}
	if err := errs.CheckIndex("feature", feature, len(d.columns)); err != nil {
		return err
	}
	return errors.Annotatef(d.columns[feature].Set(sample, value), "feature %q", d.features[feature].Name)
}

// Column returns a column by its index among all features.
func (d *Dataset) Column(feature int) (*Column, error) {
	if !d.ready {
		return nil, errs.NotReadyf("dataset not resized")
	}
	if err := errs.CheckIndex("feature", feature, len(d.columns)); err != nil {
		return nil, err
	}
	return d.columns[feature], nil
}

func (d *Dataset) inputIndex(i int) (int, error) {
	if !d.ready {
		return 0, errs.NotReadyf("dataset not resized")
	}
	if err := errs.CheckIndex("input", i, d.Inputs()); err != nil {
		return 0, err
	}
	if d.Supervised() && i >= d.target {
		i++
	}
	return i, nil
}

// Input returns the descriptor of the i-th input.
func (d *Dataset) Input(i int) (Feature, error) {
	column, err := d.InputColumn(i)
	if err != nil {
		return Feature{}, err
	}
	return column.Feature(), nil
}

// InputColumn returns the column of the i-th input, skipping the target.
func (d *Dataset) InputColumn(i int) (*Column, error) {
	j, err := d.inputIndex(i)
	if err != nil {
		return nil, err
	}
	return d.columns[j], nil
}

func (d *Dataset) TargetColumn() (*Column, error) {
	if !d.ready {
		return nil, errs.NotReadyf("dataset not resized")
	}
	if !d.Supervised() {
		return nil, errs.OutOfRangef("unsupervised dataset has no target")
	}
	return d.columns[d.target], nil
}

func (d *Dataset) Target() (Feature, error) {
	column, err := d.TargetColumn()
	if err != nil {
		return Feature{}, err
	}
	return column.Feature(), nil
}

// TargetDims is (classes, 1, 1) for categorical targets and the feature dims
// for continuous targets.
func (d *Dataset) TargetDims() (Dims, error) {
	target, err := d.Target()
	if err != nil {
		return Dims{}, err
	}
	if target.Discrete() {
		return Dims{target.Classes(), 1, 1}, nil
	}
	return target.Dims, nil
}

// VisitTarget calls op with the target column.
func (d *Dataset) VisitTarget(op func(Feature, View, *Mask) error) error {
	column, err := d.TargetColumn()
	if err != nil {
		return err
	}
	return column.Visit(op)
}

// VisitInput calls op with the i-th input column.
func (d *Dataset) VisitInput(i int, op func(Feature, View, *Mask) error) error {
	column, err := d.InputColumn(i)
	if err != nil {
		return err
	}
	return column.Visit(op)
}
