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
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/tabular/common/log"
	"github.com/gorse-io/tabular/common/parallel"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	IdentityGenerator    = "identity"
	ElementWiseGenerator = "elementwise"
	PairwiseGenerator    = "pairwise"
)

// Config is the configuration of a feature generation pipeline.
type Config struct {
	Jobs       int                `mapstructure:"jobs" validate:"gte=0"`
	Execution  parallel.Execution `mapstructure:"execution" validate:"oneof=0 1"`
	BatchSize  int                `mapstructure:"batch_size" validate:"gt=0"`
	Seed       int64              `mapstructure:"seed"`
	Log        LogConfig          `mapstructure:"log"`
	Generators []GeneratorConfig  `mapstructure:"generators" validate:"dive"`
}

type LogConfig struct {
	Debug      bool   `mapstructure:"debug"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

// GeneratorConfig describes one generator of the pipeline. Op names the
// operator of elementwise and pairwise generators. Edges and Bins
// parameterize the buckets and quantiles operators and Expression is the
// source of the expr operator.
type GeneratorConfig struct {
	Type          string    `mapstructure:"type" validate:"oneof=identity elementwise pairwise"`
	Op            string    `mapstructure:"op" validate:"required_unless=Type identity"`
	Struct2Scalar bool      `mapstructure:"struct2scalar"`
	Features      []int     `mapstructure:"features" validate:"dive,gte=0"`
	Edges         []float64 `mapstructure:"edges"`
	Bins          int       `mapstructure:"bins" validate:"gte=0"`
	Expression    string    `mapstructure:"expression" validate:"required_if=Op expr"`
}

func (c LogConfig) Options() log.Options {
	return log.Options{
		Debug:      c.Debug,
		Path:       c.Path,
		MaxSize:    c.MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
	}
}

// SetupLogger replaces the global logger according to the log section.
func (c LogConfig) SetupLogger() {
	log.SetLogger(c.Options())
}

func GetDefaultConfig() *Config {
	return &Config{
		Jobs:       0,
		Execution:  parallel.Par,
		BatchSize:  1024,
		Seed:       0,
		Log:        LogConfig{MaxSize: 100, MaxAge: 0, MaxBackups: 3},
		Generators: []GeneratorConfig{{Type: IdentityGenerator}},
	}
}

// LoadDefaultIfNil returns the default configuration for a nil config.
func (config *Config) LoadDefaultIfNil() *Config {
	if config == nil {
		return GetDefaultConfig()
	}
	return config
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	v.SetDefault("jobs", defaultConfig.Jobs)
	v.SetDefault("execution", defaultConfig.Execution.String())
	v.SetDefault("batch_size", defaultConfig.BatchSize)
	v.SetDefault("seed", defaultConfig.Seed)
	v.SetDefault("log.debug", defaultConfig.Log.Debug)
	v.SetDefault("log.path", defaultConfig.Log.Path)
	v.SetDefault("log.max_size", defaultConfig.Log.MaxSize)
	v.SetDefault("log.max_age", defaultConfig.Log.MaxAge)
	v.SetDefault("log.max_backups", defaultConfig.Log.MaxBackups)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("TABULAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// stringToExecutionHook decodes "seq" and "par" into parallel.Execution.
func stringToExecutionHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(parallel.Seq) {
			return data, nil
		}
		return parallel.ParseExecution(data.(string))
	}
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToExecutionHook(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(config.Generators) == 0 {
		config.Generators = GetDefaultConfig().Generators
	}
	if err = config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

// Validate checks the struct tags of the configuration.
func (config *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid configuration")
	}
	return nil
}

var configTypes = []string{"toml", "yaml", "yml", "json"}

// LoadConfig loads configuration from a toml, yaml or json file. Values are
// overridden by TABULAR_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	bindEnv(v)
	v.SetConfigFile(path)
	if !lo.Contains(configTypes, strings.TrimPrefix(filepath.Ext(path), ".")) {
		// templates and extensionless files are toml
		v.SetConfigType("toml")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Annotatef(err, "read config %s", path)
	}
	return unmarshal(v)
}

// ReadConfig loads configuration of the given type from text.
func ReadConfig(configType, text string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	bindEnv(v)
	v.SetConfigType(configType)
	if err := v.ReadConfig(strings.NewReader(text)); err != nil {
		return nil, errors.Trace(err)
	}
	return unmarshal(v)
}
