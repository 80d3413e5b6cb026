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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/dataset"
	"github.com/juju/errors"
)

// inputView is read access to one input column of a dataset.
type inputView struct {
	input int
	desc  dataset.Feature
	view  dataset.View
	mask  *dataset.Mask
}

func visitInput(data *dataset.Dataset, i int) (inputView, error) {
	var v inputView
	err := data.VisitInput(i, func(f dataset.Feature, view dataset.View, mask *dataset.Mask) error {
		v = inputView{input: i, desc: f, view: view, mask: mask}
		return nil
	})
	return v, errors.Trace(err)
}

// component is one scalar component of a continuous input feature.
type component struct {
	inputView
	index int
}

func (c component) name() string {
	return fmt.Sprintf("%s[%d]", c.desc.Name, c.index)
}

func (c component) optional() bool {
	return c.desc.Optional
}

// inputFilter returns the set of input features a generator may read. An
// empty filter admits every input.
func inputFilter(data *dataset.Dataset, features []int) (mapset.Set[int], error) {
	if len(features) == 0 {
		return nil, nil
	}
	filter := mapset.NewSet[int]()
	for _, i := range features {
		if err := errs.CheckIndex("input feature", i, data.Inputs()); err != nil {
			return nil, err
		}
		filter.Add(i)
	}
	return filter, nil
}

// selectComponents expands the continuous inputs admitted by the filter and
// by accept into scalar components, in input order. Structured features
// contribute every component when struct2scalar is set and component 0
// otherwise.
func selectComponents(data *dataset.Dataset, o options, accept func(dataset.Feature) bool) ([]component, error) {
	filter, err := inputFilter(data, o.features)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var components []component
	for i := 0; i < data.Inputs(); i++ {
		if filter != nil && !filter.Contains(i) {
			continue
		}
		v, err := visitInput(data, i)
		if err != nil {
			return nil, errors.Trace(err)
		}
		f := v.desc
		if f.Type != dataset.Continuous {
			continue
		}
		if accept != nil && !accept(f) {
			continue
		}
		n := 1
		if o.struct2scalar {
			n = f.Size()
		}
		for c := 0; c < n; c++ {
			components = append(components, component{inputView: v, index: c})
		}
	}
	return components, nil
}
