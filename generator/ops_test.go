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
	"math"
	"testing"

	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalarSample(t *testing.T, v float64) Sample {
	column, err := dataset.NewColumn(dataset.NewScalarFeature("x", dataset.Float64), 1)
	require.NoError(t, err)
	require.NoError(t, column.Set(0, v))
	return Sample{view: column, dims: column.Feature().Dims, index: 0}
}

func TestPointwise(t *testing.T) {
	slog1p := SLog1p()
	assert.InDelta(t, math.Log(2), slog1p.Value(scalarSample(t, 1), 0), 1e-12)
	assert.InDelta(t, -math.Log(11), slog1p.Value(scalarSample(t, -10), 0), 1e-12)
	assert.Zero(t, slog1p.Value(scalarSample(t, 0), 0))

	sign := Sign()
	assert.Equal(t, 1.0, sign.Value(scalarSample(t, 3), 0))
	assert.Equal(t, 1.0, sign.Value(scalarSample(t, 0), 0))
	assert.Equal(t, -1.0, sign.Value(scalarSample(t, -0.5), 0))

	signClass := SignClass()
	assert.Len(t, signClass.Labels, 2)
	assert.Equal(t, 1, signClass.Label(scalarSample(t, 3), 0))
	assert.Equal(t, 0, signClass.Label(scalarSample(t, -3), 0))
}

func TestBuckets(t *testing.T) {
	op := Buckets([]float64{-1, 0, 2.5})
	assert.Equal(t, []string{"(-inf,-1]", "(-1,0]", "(0,2.5]", "(2.5,+inf)"}, op.Labels)
	for _, c := range []struct {
		x     float64
		class int
	}{{-5, 0}, {-1, 0}, {-0.5, 1}, {0, 1}, {1, 2}, {2.5, 2}, {3, 3}} {
		assert.Equal(t, c.class, op.Label(scalarSample(t, c.x), 0), c.x)
	}
	assert.Equal(t, []string{"(-inf,+inf)"}, Buckets(nil).Labels)
}

func TestQuantiles(t *testing.T) {
	op := Quantiles(4)
	assert.Nil(t, op.Label)
	fitted, err := op.Fit([]float64{8, 7, 6, 5, 4, 3, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "quantiles", fitted.Name)
	assert.Equal(t, []string{"(-inf,2]", "(2,4]", "(4,6]", "(6,+inf)"}, fitted.Labels)
	assert.Equal(t, 0, fitted.Label(scalarSample(t, 1), 0))
	assert.Equal(t, 3, fitted.Label(scalarSample(t, 8), 0))

	// repeated quantiles collapse
	fitted, err = op.Fit([]float64{1, 1, 1, 1, 1, 1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"(-inf,1]", "(1,+inf)"}, fitted.Labels)

	// no training values
	fitted, err = op.Fit(nil)
	require.NoError(t, err)
	assert.Len(t, fitted.Labels, 1)
}

func TestBinaryOps(t *testing.T) {
	assert.Equal(t, 6.0, Product().Value(2, 3))
	assert.Equal(t, 5.0, Sum().Value(2, 3))
	assert.Equal(t, 1.0, AbsDiff().Value(2, 3))
	assert.Equal(t, 2.0, Min().Value(2, 3))
	assert.Equal(t, 3.0, Max().Value(2, 3))
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"slog1p", "sign", "sign_class",
		"sobel_x", "sobel_y", "sobel_mag", "sobel_angle",
		"scharr_x", "scharr_y", "scharr_mag", "scharr_angle",
		"prewitt_x", "prewitt_y", "prewitt_mag", "prewitt_angle"} {
		op, err := LookupUnary(name, OpParams{})
		require.NoError(t, err, name)
		assert.Equal(t, name, op.Name)
	}
	op, err := LookupUnary("buckets", OpParams{Edges: []float64{0, 1}})
	require.NoError(t, err)
	assert.Len(t, op.Labels, 3)
	op, err = LookupUnary("quantiles", OpParams{Bins: 10})
	require.NoError(t, err)
	assert.NotNil(t, op.Fit)

	_, err = LookupUnary("buckets", OpParams{})
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = LookupUnary("buckets", OpParams{Edges: []float64{1, 0}})
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = LookupUnary("quantiles", OpParams{})
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = LookupUnary("unknown", OpParams{})
	assert.ErrorIs(t, err, errs.Unsupported)

	for _, name := range []string{"product", "sum", "absdiff", "min", "max"} {
		op, err := LookupBinary(name, OpParams{})
		require.NoError(t, err)
		assert.Equal(t, name, op.Name)
	}
	_, err = LookupBinary("unknown", OpParams{})
	assert.ErrorIs(t, err, errs.Unsupported)
}
