// Copyright 2025 bitirme2 Authors
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
	"github.com/SerberkSagnak/bitirme2/engine"
	"github.com/SerberkSagnak/bitirme2/model"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the engine.
type Config struct {
	Recommend RecommendConfig `mapstructure:"recommend"`
	Evaluate  EvaluateConfig  `mapstructure:"evaluate"`
	Weights   engine.Weights  `mapstructure:"weights"`
}

// RecommendConfig holds the scorer hyper-parameters.
type RecommendConfig struct {
	NNeighbors      int     `mapstructure:"n_neighbors" validate:"gt=0"`
	MinSupport      int     `mapstructure:"min_support" validate:"gt=0"`
	SimilarityFloor float32 `mapstructure:"similarity_floor" validate:"gte=0,lte=1"`
	LikedThreshold  float32 `mapstructure:"liked_threshold" validate:"gte=1,lte=5"`
	NFactors        int     `mapstructure:"n_factors" validate:"gt=0"`
	NEpochs         int     `mapstructure:"n_epochs" validate:"gt=0"`
	Lr              float32 `mapstructure:"lr" validate:"gt=0"`
	Reg             float32 `mapstructure:"reg" validate:"gte=0"`
	RandomState     int64   `mapstructure:"random_state"`
	PopularityFloor int     `mapstructure:"popularity_floor" validate:"gte=0"`
	Jobs            int     `mapstructure:"jobs" validate:"gt=0"`
}

// EvaluateConfig holds the evaluation protocol settings.
type EvaluateConfig struct {
	TestRatio float32 `mapstructure:"test_ratio" validate:"gt=0,lt=1"`
	TopN      int     `mapstructure:"top_n" validate:"gt=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Recommend: RecommendConfig{
			NNeighbors:      5,
			MinSupport:      3,
			SimilarityFloor: 0.1,
			LikedThreshold:  4,
			NFactors:        50,
			NEpochs:         20,
			Lr:              0.01,
			Reg:             0.02,
			PopularityFloor: 20,
			Jobs:            1,
		},
		Evaluate: EvaluateConfig{
			TestRatio: 0.2,
			TopN:      10,
		},
		Weights: engine.DefaultWeights(),
	}
}

func (config *Config) LoadDefaultIfNil() *Config {
	if config == nil {
		return GetDefaultConfig()
	}
	return config
}

// Validate checks field constraints and the weight vector.
func (config *Config) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return errors.Trace(config.Weights.Validate())
}

// ToParams converts the recommend section into scorer hyper-parameters.
func (config *Config) ToParams() model.Params {
	return model.Params{
		model.NNeighbors:      config.Recommend.NNeighbors,
		model.MinSupport:      config.Recommend.MinSupport,
		model.SimilarityFloor: config.Recommend.SimilarityFloor,
		model.LikedThreshold:  config.Recommend.LikedThreshold,
		model.NFactors:        config.Recommend.NFactors,
		model.NEpochs:         config.Recommend.NEpochs,
		model.Lr:              config.Recommend.Lr,
		model.Reg:             config.Recommend.Reg,
		model.RandomState:     config.Recommend.RandomState,
		model.PopularityFloor: config.Recommend.PopularityFloor,
		model.Jobs:            config.Recommend.Jobs,
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [recommend]
	v.SetDefault("recommend.n_neighbors", defaultConfig.Recommend.NNeighbors)
	v.SetDefault("recommend.min_support", defaultConfig.Recommend.MinSupport)
	v.SetDefault("recommend.similarity_floor", defaultConfig.Recommend.SimilarityFloor)
	v.SetDefault("recommend.liked_threshold", defaultConfig.Recommend.LikedThreshold)
	v.SetDefault("recommend.n_factors", defaultConfig.Recommend.NFactors)
	v.SetDefault("recommend.n_epochs", defaultConfig.Recommend.NEpochs)
	v.SetDefault("recommend.lr", defaultConfig.Recommend.Lr)
	v.SetDefault("recommend.reg", defaultConfig.Recommend.Reg)
	v.SetDefault("recommend.random_state", defaultConfig.Recommend.RandomState)
	v.SetDefault("recommend.popularity_floor", defaultConfig.Recommend.PopularityFloor)
	v.SetDefault("recommend.jobs", defaultConfig.Recommend.Jobs)
	// [evaluate]
	v.SetDefault("evaluate.test_ratio", defaultConfig.Evaluate.TestRatio)
	v.SetDefault("evaluate.top_n", defaultConfig.Evaluate.TopN)
	// [weights]
	v.SetDefault("weights.collaborative", defaultConfig.Weights.Collaborative)
	v.SetDefault("weights.content", defaultConfig.Weights.Content)
	v.SetDefault("weights.factor", defaultConfig.Weights.Factor)
	v.SetDefault("weights.popularity", defaultConfig.Weights.Popularity)
}

// LoadConfig loads the configuration from a TOML file. Missing keys fall back
// to defaults, an empty path loads pure defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}
