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
	"os"
	"path/filepath"
	"testing"

	"github.com/SerberkSagnak/bitirme2/model"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	config, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	text := `
[recommend]
n_neighbors = 10
n_factors = 25
jobs = 4

[evaluate]
test_ratio = 0.3

[weights]
collaborative = 0.4
content = 0.3
factor = 0.2
popularity = 0.1
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	config, err := LoadConfig(path)
	assert.NoError(t, err)
	// overridden keys
	assert.Equal(t, 10, config.Recommend.NNeighbors)
	assert.Equal(t, 25, config.Recommend.NFactors)
	assert.Equal(t, 4, config.Recommend.Jobs)
	assert.Equal(t, float32(0.3), config.Evaluate.TestRatio)
	assert.Equal(t, float32(0.4), config.Weights.Collaborative)
	// untouched keys keep their defaults
	assert.Equal(t, 3, config.Recommend.MinSupport)
	assert.Equal(t, float32(0.1), config.Recommend.SimilarityFloor)
	assert.Equal(t, 10, config.Evaluate.TopN)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("no_such_config.toml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	config := GetDefaultConfig()
	config.Recommend.NFactors = 0
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	config = GetDefaultConfig()
	config.Recommend.SimilarityFloor = 1.5
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	config = GetDefaultConfig()
	config.Weights.Content = -0.5
	assert.Error(t, config.Validate())
}

func TestToParams(t *testing.T) {
	params := GetDefaultConfig().ToParams()
	assert.Equal(t, 5, params.GetInt(model.NNeighbors, 0))
	assert.Equal(t, 3, params.GetInt(model.MinSupport, 0))
	assert.Equal(t, float32(0.1), params.GetFloat32(model.SimilarityFloor, 0))
	assert.Equal(t, float32(4), params.GetFloat32(model.LikedThreshold, 0))
	assert.Equal(t, 50, params.GetInt(model.NFactors, 0))
	assert.Equal(t, 20, params.GetInt(model.PopularityFloor, 0))
}

func TestLoadDefaultIfNil(t *testing.T) {
	var config *Config
	assert.Equal(t, GetDefaultConfig(), config.LoadDefaultIfNil())
	config = &Config{}
	assert.Same(t, config, config.LoadDefaultIfNil())
}
