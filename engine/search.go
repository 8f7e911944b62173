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

package engine

import (
	"context"

	"github.com/SerberkSagnak/bitirme2/base/log"
	"github.com/SerberkSagnak/bitirme2/common/parallel"
	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/SerberkSagnak/bitirme2/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// DefaultSearchGrid returns the stock weight candidates for OptimizeWeights.
func DefaultSearchGrid() []Weights {
	return []Weights{
		{Collaborative: 0.4, Content: 0.3, Factor: 0.2, Popularity: 0.1},
		{Collaborative: 0.3, Content: 0.4, Factor: 0.2, Popularity: 0.1},
		{Collaborative: 0.3, Content: 0.2, Factor: 0.4, Popularity: 0.1},
		{Collaborative: 0.2, Content: 0.2, Factor: 0.3, Popularity: 0.3},
		{Collaborative: 0.5, Content: 0.2, Factor: 0.2, Popularity: 0.1},
	}
}

// OptimizeWeights evaluates the live weight vector and every candidate over
// the test users and keeps the vector with the highest mean F1. The incumbent
// is always part of the grid, so the selected score never falls below it.
// Ties keep the earliest candidate. The winner replaces the live weights
// before returning.
func (e *Engine) OptimizeWeights(ctx context.Context, testSet *dataset.Matrix, userIds []int64, candidates []Weights, n int) (Weights, error) {
	s := e.state.Load()
	if s == nil {
		return Weights{}, errors.NotProvisionedf("engine")
	}
	grid := append([]Weights{e.Weights()}, candidates...)
	best := grid[0]
	bestF1 := float32(-1)
	for _, weights := range grid {
		if err := weights.Validate(); err != nil {
			return Weights{}, errors.Trace(err)
		}
		f1, testUsers, err := e.meanF1(ctx, s, weights, testSet, userIds, n)
		if err != nil {
			return Weights{}, errors.Trace(err)
		}
		log.Logger().Debug("evaluated weight candidate",
			zap.Any("weights", weights),
			zap.Float32("mean_f1", f1),
			zap.Int("test_users", testUsers))
		if f1 > bestF1 {
			best = weights
			bestF1 = f1
		}
	}
	e.weights.Store(&best)
	log.Logger().Info("optimized weights",
		zap.Any("weights", best),
		zap.Float32("mean_f1", bestF1))
	return best, nil
}

// meanF1 scores one weight vector: mean F1 of hybrid recommendations over
// the users the blend could serve.
func (e *Engine) meanF1(ctx context.Context, s *engineState, weights Weights, testSet *dataset.Matrix, userIds []int64, n int) (float32, int, error) {
	perUser := make([]*Metrics, len(userIds))
	err := parallel.Parallel(ctx, len(userIds), e.params.GetInt(model.Jobs, 1), func(_, i int) error {
		recommendations, err := e.recommend(s, weights, userIds[i], n)
		if err != nil || len(recommendations) == 0 {
			return nil
		}
		metrics := e.evaluate(s, recommendations, groundTruth(testSet, userIds[i]))
		perUser[i] = &metrics
		return nil
	})
	if err != nil {
		return 0, 0, errors.Trace(err)
	}
	var sum float32
	var testUsers int
	for _, metrics := range perUser {
		if metrics != nil {
			sum += metrics.F1
			testUsers++
		}
	}
	if testUsers == 0 {
		return 0, 0, nil
	}
	return sum / float32(testUsers), testUsers, nil
}
