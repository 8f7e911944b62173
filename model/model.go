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
	"sort"
)

// Algorithm identifies one of the fixed scoring strategies. The comparative
// evaluation loop and the weight vector are both indexed by this enum so the
// set of strategies is closed and exhaustive.
type Algorithm int

const (
	Collaborative Algorithm = iota
	Content
	Factor
	Popularity
	NumAlgorithms
)

func (a Algorithm) String() string {
	switch a {
	case Collaborative:
		return "collaborative"
	case Content:
		return "content"
	case Factor:
		return "factor"
	case Popularity:
		return "popularity"
	default:
		return "unknown"
	}
}

// Algorithms lists every scoring strategy in enum order.
func Algorithms() []Algorithm {
	return []Algorithm{Collaborative, Content, Factor, Popularity}
}

// Scored is a candidate item with the raw score a single strategy assigned to it.
type Scored struct {
	ItemId int64
	Score  float32
}

// Scorer is the capability shared by the four scoring strategies. Score
// returns up to n ranked candidates the user has not rated, ordered by
// decreasing score. A user unknown to the strategy, or one without enough
// signal, yields an empty slice rather than an error so the hybrid step can
// still draw on the remaining strategies. Predict estimates the rating of a
// single pair; the boolean reports whether the strategy had any signal.
type Scorer interface {
	Name() Algorithm
	Score(userId int64, n int) []Scored
	Predict(userId, itemId int64) (float32, bool)
}

// BaseModel holds the hyper-parameters shared by every scorer.
type BaseModel struct {
	Params Params
}

// SetParams sets hyper-parameters.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

// sortScored orders candidates by decreasing score, then by increasing item
// id so equal scores still rank deterministically.
func sortScored(scored []Scored) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ItemId < scored[j].ItemId
	})
}

// truncate caps a ranked list at n. Non-positive n keeps everything.
func truncate(scored []Scored, n int) []Scored {
	if n > 0 && len(scored) > n {
		return scored[:n]
	}
	return scored
}
