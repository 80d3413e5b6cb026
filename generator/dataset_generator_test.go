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
	"github.com/gorse-io/tabular/common/parallel"
	"github.com/gorse-io/tabular/common/util"
	"github.com/gorse-io/tabular/dataset"
	"github.com/gorse-io/tabular/stats"
	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"
)

type DatasetGeneratorTestSuite struct {
	suite.Suite
	data      *dataset.Dataset
	generator *DatasetGenerator
}

func (suite *DatasetGeneratorTestSuite) SetupTest() {
	suite.data = newScenario(suite.T(), 1)
	var err error
	suite.generator, err = NewDatasetGenerator(suite.data, nil, WithJobs(3), WithExecution(parallel.Par))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.generator.Add(NewIdentity(suite.data)))
	suite.Require().NoError(suite.generator.Add(NewPairwise(suite.data, Product(), WithFeatures(1, 3))))
}

func (suite *DatasetGeneratorTestSuite) TestAddressMaps() {
	d := suite.generator
	// identity: tags, f32, u8, f64; pairwise: f32*f32, f32*f64, f64*f64
	suite.Equal(7, d.Features())
	suite.Equal(12, d.Columns())
	suite.Equal(util.RangeInt(10), d.Samples())
	suite.Len(d.Generators(), 2)

	f, err := d.Feature(5)
	suite.NoError(err)
	suite.Equal("product(f32[0],f64[0])", f.Name)
	g, local, err := d.Locate(5)
	suite.NoError(err)
	suite.Equal("product", g.Name())
	suite.Equal(1, local)
	_, _, err = d.Locate(7)
	suite.ErrorIs(err, errs.OutOfRange)

	for feature, column := range []int{0, 3, 4, 8, 9, 10, 11} {
		c, err := d.FeatureColumn(feature)
		suite.NoError(err)
		suite.Equal(column, c)
	}
	for c := 0; c < 12; c++ {
		g, err := d.ColumnGenerator(c)
		suite.NoError(err)
		if c < 9 {
			suite.Equal("identity", g.Name())
		} else {
			suite.Equal("product", g.Name())
		}
	}
	_, err = d.ColumnGenerator(12)
	suite.ErrorIs(err, errs.OutOfRange)
}

func (suite *DatasetGeneratorTestSuite) TestSelect() {
	d := suite.generator
	samples := []int{0, 1}
	hits := make([]int8, 6)
	suite.NoError(d.SelectMClass(0, samples, hits))
	suite.Equal([]int8{1, 0, 1, -1, -1, -1}, hits)
	scalars := make([]float64, 2)
	suite.NoError(d.SelectScalar(6, samples, scalars))
	suite.Equal([]float64{1, 0}, scalars)
	values := make([]float64, 8)
	suite.NoError(d.SelectStruct(2, samples, values))
	suite.Equal([]float64{0, 1, 2, 3}, values[:4])
	suite.True(math.IsNaN(values[4]))
	suite.ErrorIs(d.SelectSClass(1, samples, make([]int32, 2)), errs.TypeMismatch)
	suite.ErrorIs(d.SelectScalar(7, samples, scalars), errs.OutOfRange)
}

func (suite *DatasetGeneratorTestSuite) TestSelectStats() {
	st, err := suite.generator.SelectStats()
	suite.NoError(err)
	suite.Empty(st.SClass)
	suite.Equal([]int{0}, st.MClass)
	suite.Equal([]int{1, 3, 4, 5, 6}, st.Scalar)
	suite.Equal([]int{2}, st.Struct)
}

func (suite *DatasetGeneratorTestSuite) TestFlatten() {
	d := suite.generator
	expected := mat.NewDense(10, 12, nil)
	for s := 0; s < 10; s++ {
		row := scenarioFlatten.RawRowView(s)
		f32, f64 := float64(s), float64(1-s)
		expected.SetRow(s, append(append(append([]float64{}, row[:3]...), row[5:]...), f32*f32, f32*f64, f64*f64))
	}
	for _, exec := range []parallel.Execution{parallel.Seq, parallel.Par} {
		out := mat.NewDense(10, 12, nil)
		suite.NoError(d.Flatten(exec, util.RangeInt(10), out))
		suite.True(mat.Equal(expected, out), exec.String())
	}
	// fewer rows than workers
	samples := []int{9, 4}
	out := mat.NewDense(2, 12, nil)
	suite.NoError(d.Flatten(parallel.Par, samples, out))
	for k, s := range samples {
		suite.Equal(expected.RawRowView(s), out.RawRowView(k))
	}
	suite.ErrorIs(d.Flatten(parallel.Par, util.RangeInt(10), mat.NewDense(10, 11, nil)), errs.TypeMismatch)
	// a failing row chunk reaches the caller
	suite.ErrorIs(d.Flatten(parallel.Par, []int{0, 1, 2, 3, 10}, mat.NewDense(5, 12, nil)), errs.OutOfRange)
}

// brokenIdentity fails to flatten sample 7.
type brokenIdentity struct {
	*Identity
	panics bool
}

func (g *brokenIdentity) FlattenFeature(i int, samples []int, out *mat.Dense, column int) error {
	for _, sample := range samples {
		if sample == 7 {
			if g.panics {
				panic("broken sample")
			}
			return errors.New("broken sample")
		}
	}
	return g.Identity.FlattenFeature(i, samples, out, column)
}

func (suite *DatasetGeneratorTestSuite) TestFlattenError() {
	for _, panics := range []bool{false, true} {
		d, err := NewDatasetGenerator(suite.data, nil, WithJobs(4))
		suite.Require().NoError(err)
		suite.Require().NoError(d.Add(&brokenIdentity{Identity: NewIdentity(suite.data), panics: panics}))
		for _, exec := range []parallel.Execution{parallel.Seq, parallel.Par} {
			err = d.Flatten(exec, util.RangeInt(10), mat.NewDense(10, d.Columns(), nil))
			suite.ErrorContains(err, "broken sample", exec.String())
			_, err = d.FlattenStats(exec, 3)
			suite.ErrorContains(err, "broken sample", exec.String())
		}
		suite.NoError(d.Flatten(parallel.Par, []int{0, 1, 2}, mat.NewDense(3, d.Columns(), nil)))
	}
}

func (suite *DatasetGeneratorTestSuite) TestDropShuffle() {
	d := suite.generator
	suite.NoError(d.Drop(1))
	suite.NoError(d.Shuffle(5))
	mode, err := d.Mode(1)
	suite.NoError(err)
	suite.Equal(Dropped, mode)
	mode, err = d.Mode(5)
	suite.NoError(err)
	suite.Equal(Shuffled, mode)

	out := mat.NewDense(10, 12, nil)
	suite.NoError(d.Flatten(parallel.Par, util.RangeInt(10), out))
	for s := 0; s < 10; s++ {
		suite.Zero(out.At(s, 3))
	}

	d.Undrop()
	d.Unshuffle()
	for i := 0; i < d.Features(); i++ {
		mode, err = d.Mode(i)
		suite.NoError(err)
		suite.Equal(Default, mode)
	}
	suite.ErrorIs(d.Drop(7), errs.OutOfRange)
	suite.ErrorIs(d.Shuffle(7), errs.OutOfRange)
}

func (suite *DatasetGeneratorTestSuite) TestTarget() {
	d := suite.generator
	target, err := d.Target()
	suite.NoError(err)
	suite.Equal("label", target.Name)
	dims, err := d.TargetDims()
	suite.NoError(err)
	suite.Equal(dataset.Dims{2, 1, 1}, dims)

	labels := make([]int32, 4)
	suite.NoError(d.TargetSClass([]int{0, 1, 2, 3}, labels))
	suite.Equal([]int32{0, 1, 1, 0}, labels)
	suite.ErrorIs(d.TargetScalars([]int{0}, make([]float64, 1)), errs.TypeMismatch)
	suite.ErrorIs(d.TargetMClass([]int{0}, make([]int8, 2)), errs.TypeMismatch)

	out := mat.NewDense(3, 2, nil)
	suite.NoError(d.FlattenTargets([]int{0, 1, 2}, out))
	suite.Equal([]float64{1, -1, -1, 1, -1, 1}, out.RawMatrix().Data)
	suite.ErrorIs(d.FlattenTargets([]int{0, 1, 2}, mat.NewDense(3, 1, nil)), errs.TypeMismatch)
}

func (suite *DatasetGeneratorTestSuite) TestFlattenStats() {
	d := suite.generator
	for _, batch := range []int{1, 10 / 3, 10} {
		seq, err := d.FlattenStats(parallel.Seq, batch)
		suite.NoError(err)
		par, err := d.FlattenStats(parallel.Par, batch)
		suite.NoError(err)
		suite.Equal(10, seq.Count)
		suite.Equal(seq.Count, par.Count)
		suite.Equal(seq.Min, par.Min)
		suite.Equal(seq.Max, par.Max)
		for c := 0; c < d.Columns(); c++ {
			suite.InEpsilon(1+seq.Mean[c], 1+par.Mean[c], 1e-12)
			suite.InEpsilon(1+seq.Stdev[c], 1+par.Stdev[c], 1e-12)
		}
	}
	st, err := d.FlattenStats(parallel.Par, 4)
	suite.NoError(err)
	// f32 column
	suite.Equal(0.0, st.Min[3])
	suite.Equal(9.0, st.Max[3])
	suite.InDelta(4.5, st.Mean[3], 1e-12)
	suite.InDelta(math.Sqrt(55.0/6), st.Stdev[3], 1e-12)

	_, err = d.FlattenStats(parallel.Seq, -1)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *DatasetGeneratorTestSuite) TestBatch() {
	suite.Equal(defaultBatch, suite.generator.Batch())
	d, err := NewDatasetGenerator(suite.data, nil, WithBatch(4), WithExecution(parallel.Par))
	suite.Require().NoError(err)
	suite.Equal(4, d.Batch())
	suite.Require().NoError(d.Add(NewIdentity(suite.data)))
	configured, err := d.FlattenStats(parallel.Par, 0)
	suite.NoError(err)
	explicit, err := d.FlattenStats(parallel.Par, 4)
	suite.NoError(err)
	suite.Equal(explicit, configured)
	st, err := d.TargetStats(parallel.Par, 0)
	suite.NoError(err)
	suite.Equal(&stats.SClass{Counts: []int{4, 6}}, st)

	d, err = NewDatasetGenerator(suite.data, nil, WithBatch(-1))
	suite.Require().NoError(err)
	suite.Require().NoError(d.Add(NewIdentity(suite.data)))
	_, err = d.FlattenStats(parallel.Seq, 0)
	suite.True(errors.Is(err, errors.NotValid))
	_, err = d.TargetStats(parallel.Seq, 0)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *DatasetGeneratorTestSuite) TestTargetStats() {
	d := suite.generator
	for _, exec := range []parallel.Execution{parallel.Seq, parallel.Par} {
		st, err := d.TargetStats(exec, 3)
		suite.NoError(err)
		suite.Equal(&stats.SClass{Counts: []int{4, 6}}, st)
	}
}

func (suite *DatasetGeneratorTestSuite) TestSampleWeights() {
	d := suite.generator
	st, err := d.TargetStats(parallel.Par, 5)
	suite.NoError(err)
	weights, err := d.SampleWeights(st)
	suite.NoError(err)
	suite.Len(weights, 10)
	for s, w := range weights {
		if s%3 == 0 {
			suite.InDelta(1.25, w, 1e-12)
		} else {
			suite.InDelta(10.0/12, w, 1e-12)
		}
	}

	_, err = d.SampleWeights(stats.NewScalar(1))
	suite.ErrorIs(err, errs.TypeMismatch)
	_, err = d.SampleWeights(stats.NewSClass(3))
	suite.ErrorIs(err, errs.TypeMismatch)
}

func TestDatasetGenerator(t *testing.T) {
	suite.Run(t, new(DatasetGeneratorTestSuite))
}
