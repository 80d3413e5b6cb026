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

// Pairwise combines every unordered pair of selected components, the
// diagonal included, with a binary operator. n components yield
// n(n+1)/2 features.
type Pairwise struct {
	*base
	op BinaryOp
}

func NewPairwise(data *dataset.Dataset, op BinaryOp, opts ...Option) *Pairwise {
	o := newOptions(opts)
	g := &Pairwise{base: newBase(op.Name, data, o), op: op}
	g.build = func() ([]source, error) {
		components, err := selectComponents(data, o, nil)
		if err != nil {
			return nil, errors.Trace(err)
		}
		sources := make([]source, 0, len(components)*(len(components)+1)/2)
		for i := range components {
			for j := i; j < len(components); j++ {
				sources = append(sources, &binarySource{op: op, a: components[i], b: components[j]})
			}
		}
		return sources, nil
	}
	return g
}

type binarySource struct {
	op   BinaryOp
	a, b component
}

func (s *binarySource) feature() dataset.Feature {
	name := fmt.Sprintf("%s(%s,%s)", s.op.Name, s.a.name(), s.b.name())
	return dataset.NewScalarFeature(name, dataset.Float64).WithOptional(s.a.optional() || s.b.optional())
}

func (s *binarySource) mapping() []int {
	return []int{s.a.input, s.a.index, s.b.input, s.b.index}
}

func (s *binarySource) present(sample int) bool {
	return s.a.mask.Get(sample) && s.b.mask.Get(sample)
}

func (s *binarySource) read(sample int, out []float64) {
	out[0] = s.op.Value(s.a.view.Float(sample, s.a.index), s.b.view.Float(sample, s.b.index))
}

func (s *binarySource) fit([]int) error {
	return nil
}
