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
	"github.com/gorse-io/tabular/dataset"
	"github.com/juju/errors"
)

// Identity passes the dataset's input features through unchanged.
type Identity struct {
	*base
}

// NewIdentity creates a generator with one feature per input feature of
// data. WithFeatures restricts it to a subset of inputs.
func NewIdentity(data *dataset.Dataset, opts ...Option) *Identity {
	o := newOptions(opts)
	g := &Identity{base: newBase("identity", data, o)}
	g.build = func() ([]source, error) {
		filter, err := inputFilter(data, o.features)
		if err != nil {
			return nil, errors.Trace(err)
		}
		var sources []source
		for i := 0; i < data.Inputs(); i++ {
			if filter != nil && !filter.Contains(i) {
				continue
			}
			v, err := visitInput(data, i)
			if err != nil {
				return nil, errors.Trace(err)
			}
			sources = append(sources, &columnSource{in: v})
		}
		return sources, nil
	}
	return g
}

type columnSource struct {
	in inputView
}

func (s *columnSource) feature() dataset.Feature {
	return s.in.desc
}

func (s *columnSource) mapping() []int {
	return []int{s.in.input}
}

func (s *columnSource) present(sample int) bool {
	return s.in.mask.Get(sample)
}

func (s *columnSource) read(sample int, out []float64) {
	switch s.in.desc.Type {
	case dataset.SingleLabel:
		out[0] = float64(s.in.view.Label(sample))
	case dataset.MultiLabel:
		for c := range out {
			if s.in.view.Hit(sample, c) {
				out[c] = 1
			} else {
				out[c] = 0
			}
		}
	default:
		for c := range out {
			out[c] = s.in.view.Float(sample, c)
		}
	}
}

func (s *columnSource) fit([]int) error {
	return nil
}
