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
	"testing"

	"github.com/gorse-io/tabular/dataset"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newScenario builds a 10 sample dataset of a 3-class multi label feature
// set every 3rd sample, a 2-class single label feature, a float32 scalar,
// an uint8 (2,1,2) struct set every 2nd sample and a float64 scalar.
func newScenario(t *testing.T, target ...int) *dataset.Dataset {
	data := dataset.NewDataset()
	err := data.Resize(10, []dataset.Feature{
		dataset.NewMultiLabelFeature("tags", "a", "b", "c").WithOptional(true),
		dataset.NewSingleLabelFeature("label", "zero", "one"),
		dataset.NewScalarFeature("f32", dataset.Float32),
		dataset.NewStructFeature("u8", dataset.Uint8, dataset.Dims{2, 1, 2}).WithOptional(true),
		dataset.NewScalarFeature("f64", dataset.Float64),
	}, target...)
	require.NoError(t, err)
	for s := 0; s < 10; s++ {
		if s%3 == 0 {
			require.NoError(t, data.Set(s, 0, []int{0, 2}))
			require.NoError(t, data.Set(s, 1, 0))
		} else {
			require.NoError(t, data.Set(s, 1, 1))
		}
		require.NoError(t, data.Set(s, 2, float32(s)))
		if s%2 == 0 {
			require.NoError(t, data.Set(s, 3, []int{s, s + 1, s + 2, s + 3}))
		}
		require.NoError(t, data.Set(s, 4, float64(1-s)))
	}
	return data
}

// scenarioFlatten is the identity flatten of every scenario sample.
var scenarioFlatten = mat.NewDense(10, 11, []float64{
	1, -1, 1, 1, -1, 0, 0, 1, 2, 3, 1,
	0, 0, 0, -1, 1, 1, 0, 0, 0, 0, 0,
	0, 0, 0, -1, 1, 2, 2, 3, 4, 5, -1,
	1, -1, 1, 1, -1, 3, 0, 0, 0, 0, -2,
	0, 0, 0, -1, 1, 4, 4, 5, 6, 7, -3,
	0, 0, 0, -1, 1, 5, 0, 0, 0, 0, -4,
	1, -1, 1, 1, -1, 6, 6, 7, 8, 9, -5,
	0, 0, 0, -1, 1, 7, 0, 0, 0, 0, -6,
	0, 0, 0, -1, 1, 8, 8, 9, 10, 11, -7,
	1, -1, 1, 1, -1, 9, 0, 0, 0, 0, -8,
})

// newScalarDataset builds a dataset of scalar float64 features from columns
// of values. NaN marks a missing sample.
func newScalarDataset(t *testing.T, columns ...[]float64) *dataset.Dataset {
	features := make([]dataset.Feature, len(columns))
	for i := range columns {
		features[i] = dataset.NewScalarFeature(string(rune('a'+i)), dataset.Float64).WithOptional(true)
	}
	data := dataset.NewDataset()
	require.NoError(t, data.Resize(len(columns[0]), features))
	for i, column := range columns {
		for s, v := range column {
			require.NoError(t, data.Set(s, i, v))
		}
	}
	return data
}
