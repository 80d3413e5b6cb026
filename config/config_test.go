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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gorse-io/tabular/common/parallel"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("config.toml.template")
	require.NoError(t, err)
	assert.Equal(t, 4, config.Jobs)
	assert.Equal(t, parallel.Par, config.Execution)
	assert.Equal(t, 256, config.BatchSize)
	assert.Equal(t, int64(42), config.Seed)
	// [log]
	assert.False(t, config.Log.Debug)
	assert.Equal(t, 100, config.Log.MaxSize)
	assert.Equal(t, 7, config.Log.MaxAge)
	assert.Equal(t, 3, config.Log.MaxBackups)
	// [[generators]]
	require.Len(t, config.Generators, 6)
	assert.Equal(t, GeneratorConfig{Type: IdentityGenerator}, config.Generators[0])
	assert.Equal(t, GeneratorConfig{Type: ElementWiseGenerator, Op: "slog1p", Struct2Scalar: true}, config.Generators[1])
	assert.Equal(t, []float64{-1, 0, 1}, config.Generators[2].Edges)
	assert.Equal(t, []int{0, 2}, config.Generators[2].Features)
	assert.Equal(t, 4, config.Generators[3].Bins)
	assert.Equal(t, GeneratorConfig{Type: PairwiseGenerator, Op: "product"}, config.Generators[4])
	assert.Equal(t, "x > y ? x - y : 0", config.Generators[5].Expression)
}

func TestLoadConfigType(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "tabular.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("jobs: 3\nbatch_size: 8\n"), 0o644))
	config, err := LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 3, config.Jobs)
	assert.Equal(t, 8, config.BatchSize)

	// unknown extensions are read as toml
	for _, name := range []string{"tabular", "tabular.conf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("jobs = 5\n"), 0o644))
		config, err = LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 5, config.Jobs)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestSetDefault(t *testing.T) {
	config, err := ReadConfig("toml", "")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}

func TestBindEnv(t *testing.T) {
	t.Setenv("TABULAR_JOBS", "7")
	t.Setenv("TABULAR_EXECUTION", "seq")
	t.Setenv("TABULAR_LOG_DEBUG", "true")
	config, err := LoadConfig("config.toml.template")
	require.NoError(t, err)
	assert.Equal(t, 7, config.Jobs)
	assert.Equal(t, parallel.Seq, config.Execution)
	assert.True(t, config.Log.Debug)
	// check values from file
	assert.Equal(t, 256, config.BatchSize)
}

func TestReadYAML(t *testing.T) {
	config, err := ReadConfig("yaml", `
execution: sequential
batch_size: 10
generators:
  - type: pairwise
    op: max
    features: [1]
`)
	require.NoError(t, err)
	assert.Equal(t, parallel.Seq, config.Execution)
	assert.Equal(t, 10, config.BatchSize)
	assert.Equal(t, []GeneratorConfig{{Type: PairwiseGenerator, Op: "max", Features: []int{1}}}, config.Generators)
}

func TestValidate(t *testing.T) {
	_, err := ReadConfig("toml", "execution = \"fast\"")
	assert.Error(t, err)

	_, err = ReadConfig("toml", "batch_size = 0")
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = ReadConfig("toml", "jobs = -1")
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = ReadConfig("toml", "[[generators]]\ntype = \"elementwise\"")
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = ReadConfig("toml", "[[generators]]\ntype = \"unknown\"\nop = \"sum\"")
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = ReadConfig("toml", "[[generators]]\ntype = \"pairwise\"\nop = \"sum\"\nfeatures = [-1]")
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = ReadConfig("toml", "[[generators]]\ntype = \"pairwise\"\nop = \"expr\"")
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestLogOptions(t *testing.T) {
	config := GetDefaultConfig()
	config.Log.Path = "tabular.log"
	opts := config.Log.Options()
	assert.Equal(t, "tabular.log", opts.Path)
	assert.Equal(t, 100, opts.MaxSize)
	assert.Equal(t, 3, opts.MaxBackups)
}

func TestLoadDefaultIfNil(t *testing.T) {
	var config *Config
	assert.Equal(t, GetDefaultConfig(), config.LoadDefaultIfNil())
}
