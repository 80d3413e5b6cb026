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
	"github.com/gorse-io/tabular/config"
	"github.com/gorse-io/tabular/dataset"
	"github.com/juju/errors"
)

// Build creates a DatasetGenerator over samples of data and adds the
// generators listed in cfg in order. A nil cfg uses the default pipeline.
// The global logger is replaced according to the log section of cfg.
func Build(cfg *config.Config, data *dataset.Dataset, samples []int) (*DatasetGenerator, error) {
	cfg = cfg.LoadDefaultIfNil()
	cfg.Log.SetupLogger()
	d, err := NewDatasetGenerator(data, samples,
		WithJobs(cfg.Jobs),
		WithBatch(cfg.BatchSize),
		WithExecution(cfg.Execution))
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i, gc := range cfg.Generators {
		g, err := newGenerator(gc, data,
			WithSeed(cfg.Seed+int64(i)),
			WithJobs(cfg.Jobs),
			WithStruct2Scalar(gc.Struct2Scalar),
			WithFeatures(gc.Features...))
		if err != nil {
			return nil, errors.Annotatef(err, "generator %d", i)
		}
		if err = d.Add(g); err != nil {
			return nil, errors.Annotatef(err, "generator %d", i)
		}
	}
	return d, nil
}

func newGenerator(gc config.GeneratorConfig, data *dataset.Dataset, opts ...Option) (Generator, error) {
	params := OpParams{Edges: gc.Edges, Bins: gc.Bins, Expression: gc.Expression}
	switch gc.Type {
	case config.IdentityGenerator:
		return NewIdentity(data, opts...), nil
	case config.ElementWiseGenerator:
		op, err := LookupUnary(gc.Op, params)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return NewElementWise(data, op, opts...), nil
	case config.PairwiseGenerator:
		op, err := LookupBinary(gc.Op, params)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return NewPairwise(data, op, opts...), nil
	default:
		return nil, errs.Unsupportedf("generator type %q", gc.Type)
	}
}
