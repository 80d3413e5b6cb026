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
	"fmt"

	"github.com/gorse-io/tabular/dataset"
	"github.com/juju/errors"
)

// ElementWise applies a unary operator to every selected component.
type ElementWise struct {
	*base
	op UnaryOp
}

func NewElementWise(data *dataset.Dataset, op UnaryOp, opts ...Option) *ElementWise {
	o := newOptions(opts)
	g := &ElementWise{base: newBase(op.Name, data, o), op: op}
	g.build = func() ([]source, error) {
		components, err := selectComponents(data, o, op.Accept)
		if err != nil {
			return nil, errors.Trace(err)
		}
		sources := make([]source, len(components))
		for i, c := range components {
			sources[i] = &unarySource{op: op, component: c}
		}
		return sources, nil
	}
	return g
}

type unarySource struct {
	op UnaryOp
	component
}

func (s *unarySource) feature() dataset.Feature {
	name := fmt.Sprintf("%s(%s)", s.op.Name, s.name())
	if s.op.Label != nil {
		return dataset.NewSingleLabelFeature(name, s.op.Labels...).WithOptional(s.optional())
	}
	return dataset.NewScalarFeature(name, dataset.Float64).WithOptional(s.optional())
}

func (s *unarySource) mapping() []int {
	return []int{s.input, s.index}
}

func (s *unarySource) present(sample int) bool {
	return s.mask.Get(sample)
}

func (s *unarySource) read(sample int, out []float64) {
	x := Sample{view: s.view, dims: s.desc.Dims, index: sample}
	if s.op.Label != nil {
		out[0] = float64(s.op.Label(x, s.index))
	} else {
		out[0] = s.op.Value(x, s.index)
	}
}

// fit replaces a trainable operator with its fitted form.
func (s *unarySource) fit(samples []int) error {
	if s.op.Fit == nil {
		return nil
	}
	var values []float64
	for _, sample := range samples {
		if s.mask.Get(sample) {
			values = append(values, s.view.Float(sample, s.index))
		}
	}
	op, err := s.op.Fit(values)
	if err != nil {
		return errors.Annotatef(err, "fit %s on %s", s.op.Name, s.name())
	}
	s.op = op
	return nil
}
