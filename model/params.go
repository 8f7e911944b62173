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

package model

import (
	"reflect"

	"github.com/SerberkSagnak/bitirme2/base/log"
	"go.uber.org/zap"
)

// ParamName is the type of hyper-parameter names.
type ParamName string

// Predefined hyper-parameter names
const (
	NNeighbors      ParamName = "n_neighbors"      // number of neighbors kept per user
	MinSupport      ParamName = "min_support"      // minimum co-rated items for a correlation
	SimilarityFloor ParamName = "similarity_floor" // content similarity cutoff
	LikedThreshold  ParamName = "liked_threshold"  // rating above which an item counts as liked
	NFactors        ParamName = "n_factors"        // number of latent factors
	NEpochs         ParamName = "n_epochs"         // number of epochs
	Lr              ParamName = "lr"               // learning rate
	Reg             ParamName = "reg"              // regularization strength
	RandomState     ParamName = "random_state"     // random state (seed)
	PopularityFloor ParamName = "popularity_floor" // minimum observation count for popularity
	Jobs            ParamName = "jobs"             // number of concurrent workers
)

// Params stores hyper-parameters for a scorer. It is a map between names and
// interface{} values.
type Params map[ParamName]interface{}

// Copy hyper-parameters.
func (parameters Params) Copy() Params {
	newParams := make(Params)
	for k, v := range parameters {
		newParams[k] = v
	}
	return newParams
}

// GetInt gets an integer parameter by name. Returns _default if not exists or type doesn't match.
func (parameters Params) GetInt(name ParamName, _default int) int {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		default:
			log.Logger().Error("failed to get int parameter",
				zap.String("name", string(name)),
				zap.String("type", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// GetInt64 gets an int64 parameter by name. Returns _default if not exists or
// type doesn't match. The value will be converted if given an int.
func (parameters Params) GetInt64(name ParamName, _default int64) int64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int64:
			return val
		case int:
			return int64(val)
		default:
			log.Logger().Error("failed to get int64 parameter",
				zap.String("name", string(name)),
				zap.String("type", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// GetFloat32 gets a float32 parameter by name. Returns _default if not exists
// or type doesn't match. The value will be converted if given a float64 or int.
func (parameters Params) GetFloat32(name ParamName, _default float32) float32 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case float32:
			return val
		case float64:
			return float32(val)
		case int:
			return float32(val)
		default:
			log.Logger().Error("failed to get float32 parameter",
				zap.String("name", string(name)),
				zap.String("type", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// Overwrite returns a merged copy where the argument's values win.
func (parameters Params) Overwrite(params Params) Params {
	merged := make(Params)
	for k, v := range parameters {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}
