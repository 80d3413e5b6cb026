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

// Package generator derives model ready features from a dataset. A
// Generator owns a list of generated features, each computed on demand from
// one or two stored input components. A DatasetGenerator composes several
// generators behind one feature and column address space.
package generator

import (
	"github.com/gorse-io/tabular/common/parallel"
	"github.com/gorse-io/tabular/dataset"
	"gonum.org/v1/gonum/mat"
)

// Generator produces features from one dataset. It must be fitted before any
// read. Drop and Shuffle configure how later reads behave and must not run
// concurrently with Select or Flatten.
type Generator interface {
	Name() string
	// Fit builds the feature mapping on training samples. Fitting again
	// rebuilds the mapping and clears drops and shuffles.
	Fit(samples []int, exec parallel.Execution) error
	Fitted() bool
	Features() int
	Columns() int
	Feature(i int) (dataset.Feature, error)
	// Mapping lists the input features and components feature i reads.
	Mapping(i int) ([]int, error)

	SelectSClass(i int, samples []int, out []int32) error
	SelectMClass(i int, samples []int, out []int8) error
	SelectScalar(i int, samples []int, out []float64) error
	SelectStruct(i int, samples []int, out []float64) error

	// Flatten writes every feature into out starting at column. Row k holds samples[k].
	Flatten(samples []int, out *mat.Dense, column int) error
	// FlattenFeature writes feature i into out starting at column.
	FlattenFeature(i int, samples []int, out *mat.Dense, column int) error

	Drop(i int) error
	Undrop()
	Shuffle(i int) error
	Unshuffle()
	Mode(i int) (Mode, error)
}

// Mode is the read behavior of a generated feature.
type Mode int

const (
	Default Mode = iota
	Dropped
	Shuffled
)

func (m Mode) String() string {
	switch m {
	case Dropped:
		return "drop"
	case Shuffled:
		return "shuffle"
	default:
		return "default"
	}
}

const defaultBatch = 1024

type options struct {
	seed          int64
	jobs          int
	batch         int
	exec          parallel.Execution
	struct2scalar bool
	features      []int
}

type Option func(*options)

// WithSeed seeds the random generator used by Shuffle.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithJobs sets the size of the worker pool.
func WithJobs(jobs int) Option {
	return func(o *options) {
		o.jobs = jobs
	}
}

// WithBatch sets the default chunk size of FlattenStats and TargetStats.
func WithBatch(batch int) Option {
	return func(o *options) {
		o.batch = batch
	}
}

// WithExecution sets how a DatasetGenerator fits added generators.
func WithExecution(exec parallel.Execution) Option {
	return func(o *options) {
		o.exec = exec
	}
}

// WithStruct2Scalar expands every component of structured features instead
// of component 0 only.
func WithStruct2Scalar(enable bool) Option {
	return func(o *options) {
		o.struct2scalar = enable
	}
}

// WithFeatures restricts a generator to the listed input features.
func WithFeatures(features ...int) Option {
	return func(o *options) {
		o.features = features
	}
}

func newOptions(opts []Option) options {
	o := options{exec: parallel.Seq, batch: defaultBatch}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
