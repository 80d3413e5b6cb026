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
	"github.com/gorse-io/tabular/dataset"
	"github.com/gorse-io/tabular/stats"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// reduce accumulates the fit samples in chunks of batch, or of Batch() when
// batch is 0. Under Par every chunk gets a private accumulator and the
// results are merged in chunk order. Under Seq one accumulator visits the
// chunks in order.
func (d *DatasetGenerator) reduce(exec parallel.Execution, batch int,
	create func() stats.Stats, add func(acc stats.Stats, samples []int) error) (stats.Stats, error) {
	if batch == 0 {
		batch = d.batch
	}
	if batch <= 0 {
		return nil, errors.NotValidf("batch size %d", batch)
	}
	n := len(d.samples)
	acc := create()
	if exec == parallel.Seq {
		for begin := 0; begin < n; begin += batch {
			if err := add(acc, d.samples[begin:min(begin+batch, n)]); err != nil {
				return nil, errors.Trace(err)
			}
		}
	} else {
		partials := make([]stats.Stats, (n+batch-1)/batch)
		err := parallel.BatchParallel(context.Background(), n, exec.Workers(d.jobs), batch,
			func(_, batchId, begin, end int) error {
				partial := create()
				if err := add(partial, d.samples[begin:end]); err != nil {
					return errors.Trace(err)
				}
				partials[batchId] = partial
				return nil
			})
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, partial := range partials {
			if err = acc.Merge(partial); err != nil {
				return nil, errors.Trace(err)
			}
		}
	}
	acc.Done()
	return acc, nil
}

// FlattenStats computes per column statistics of the flattened fit samples.
func (d *DatasetGenerator) FlattenStats(exec parallel.Execution, batch int) (*stats.Scalar, error) {
	if d.columns == 0 {
		return nil, errs.NotReadyf("no generated columns")
	}
	st, err := d.reduce(exec, batch,
		func() stats.Stats {
			return stats.NewScalar(d.columns)
		},
		func(acc stats.Stats, samples []int) error {
			out := mat.NewDense(len(samples), d.columns, nil)
			if err := d.Flatten(parallel.Seq, samples, out); err != nil {
				return errors.Trace(err)
			}
			s := acc.(*stats.Scalar)
			for k := range samples {
				s.Add(out.RawRowView(k))
			}
			return nil
		})
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Debug("flatten stats",
		zap.Int("samples", len(d.samples)),
		zap.Int("columns", d.columns),
		zap.Int("batch", batch),
		zap.Stringer("execution", exec))
	return st.(*stats.Scalar), nil
}

// TargetStats computes the statistics of the target over the fit samples:
// *stats.Scalar for continuous targets, *stats.SClass for single label and
// *stats.MClass for multi label targets.
func (d *DatasetGenerator) TargetStats(exec parallel.Execution, batch int) (stats.Stats, error) {
	column, err := d.data.TargetColumn()
	if err != nil {
		return nil, errors.Trace(err)
	}
	f := column.Feature()
	var (
		create func() stats.Stats
		chunk  func(samples []int) (stats.Stats, error)
	)
	switch f.Type {
	case dataset.SingleLabel:
		create = func() stats.Stats { return stats.NewSClass(f.Classes()) }
		chunk = func(samples []int) (stats.Stats, error) { return column.SClassStats(samples) }
	case dataset.MultiLabel:
		create = func() stats.Stats { return stats.NewMClass(f.Classes()) }
		chunk = func(samples []int) (stats.Stats, error) { return column.MClassStats(samples) }
	default:
		create = func() stats.Stats { return stats.NewScalar(f.Size()) }
		chunk = func(samples []int) (stats.Stats, error) { return column.ScalarStats(samples) }
	}
	return d.reduce(exec, batch, create, func(acc stats.Stats, samples []int) error {
		s, err := chunk(samples)
		if err != nil {
			return errors.Trace(err)
		}
		return acc.Merge(s)
	})
}
