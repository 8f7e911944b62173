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
	"time"

	"github.com/SerberkSagnak/bitirme2/common/parallel"
	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/SerberkSagnak/bitirme2/model"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
)

// diversityTagCap is the tag count treated as full diversity. Catalogs in
// this domain rarely exceed twenty genres, so the ratio is capped at one.
const diversityTagCap = 20

// Metrics quantifies one recommendation list against ground truth. Values
// are created once per evaluation call and never mutated afterwards.
type Metrics struct {
	Precision float32
	Recall    float32
	F1        float32
	Coverage  float32
	Diversity float32
	Novelty   float32
	Duration  time.Duration
}

// Evaluate scores a recommendation list against a ground truth rating map,
// usually the held-out part of a split. Items rated at or above the liked
// threshold count as relevant. Empty ground truth degrades to all zero
// metrics instead of failing.
func (e *Engine) Evaluate(recommendations []Recommendation, truth map[int64]float32) Metrics {
	return e.evaluate(e.state.Load(), recommendations, truth)
}

// evaluate scores against an explicit state snapshot so a batch keeps one
// catalog generation even when a refresh lands mid-run.
func (e *Engine) evaluate(s *engineState, recommendations []Recommendation, truth map[int64]float32) Metrics {
	start := time.Now()
	if s == nil || len(truth) == 0 {
		return Metrics{Duration: time.Since(start)}
	}
	liked := e.params.GetFloat32(model.LikedThreshold, 4)

	relevant := mapset.NewSet[int64]()
	for itemId, rating := range truth {
		if rating >= liked {
			relevant.Add(itemId)
		}
	}
	recommended := mapset.NewSet[int64]()
	hits := 0
	for _, rec := range recommendations {
		recommended.Add(rec.ItemId)
		if relevant.Contains(rec.ItemId) {
			hits++
		}
	}

	var metrics Metrics
	if recommended.Cardinality() > 0 {
		metrics.Precision = float32(hits) / float32(recommended.Cardinality())
	}
	if relevant.Cardinality() > 0 {
		metrics.Recall = float32(hits) / float32(relevant.Cardinality())
	}
	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}
	if s.catalog.CountItems() > 0 {
		metrics.Coverage = float32(recommended.Cardinality()) / float32(s.catalog.CountItems())
	}

	tags := mapset.NewSet[string]()
	var noveltySum float32
	for _, rec := range recommendations {
		if item, err := s.catalog.Item(rec.ItemId); err == nil {
			tags.Append(item.Tags...)
			noveltySum += 1 / float32(item.Popularity+1)
		} else {
			noveltySum += 1
		}
	}
	metrics.Diversity = float32(tags.Cardinality()) / diversityTagCap
	if metrics.Diversity > 1 {
		metrics.Diversity = 1
	}
	if len(recommendations) > 0 {
		metrics.Novelty = noveltySum / float32(len(recommendations))
	}
	metrics.Duration = time.Since(start)
	return metrics
}

// Arm is one variant of the comparative evaluation: the hybrid blend or a
// single scorer on its own.
type Arm int

const (
	ArmHybrid Arm = iota
	ArmCollaborative
	ArmContent
	ArmFactor
	ArmPopularity
)

func (a Arm) String() string {
	if a == ArmHybrid {
		return "hybrid"
	}
	return a.algorithm().String()
}

func (a Arm) algorithm() model.Algorithm {
	return model.Algorithm(a - 1)
}

// Arms lists every variant in evaluation order.
func Arms() []Arm {
	return []Arm{ArmHybrid, ArmCollaborative, ArmContent, ArmFactor, ArmPopularity}
}

// ABResult aggregates per-user metrics for one arm by mean. TestUsers counts
// the users that produced a non-empty recommendation list for this arm.
type ABResult struct {
	Arm       Arm
	Metrics   Metrics
	TestUsers int
}

// ABTest runs every arm over the test users and reports per-arm mean
// metrics. Ground truth for each user comes from the held-out test set.
// Users an arm cannot serve are skipped for that arm, never aborting the
// batch. Users are evaluated in parallel but aggregated in slot order, so the
// result does not depend on scheduling.
func (e *Engine) ABTest(ctx context.Context, testSet *dataset.Matrix, userIds []int64, arms []Arm, n int) ([]ABResult, error) {
	s := e.state.Load()
	if s == nil {
		return nil, errors.NotProvisionedf("engine")
	}
	weights := *e.weights.Load()
	results := make([]ABResult, 0, len(arms))
	for _, arm := range arms {
		perUser := make([]*Metrics, len(userIds))
		err := parallel.Parallel(ctx, len(userIds), e.params.GetInt(model.Jobs, 1), func(_, i int) error {
			recommendations := e.armRecommend(s, weights, arm, userIds[i], n)
			if len(recommendations) == 0 {
				return nil
			}
			metrics := e.evaluate(s, recommendations, groundTruth(testSet, userIds[i]))
			perUser[i] = &metrics
			return nil
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		results = append(results, aggregate(arm, perUser))
	}
	return results, nil
}

// armRecommend produces the recommendation list of one arm. Single scorer
// arms bypass the blend: the raw score fills both the total and the arm's
// own contribution slot.
func (e *Engine) armRecommend(s *engineState, weights Weights, arm Arm, userId int64, n int) []Recommendation {
	if arm == ArmHybrid {
		recommendations, err := e.recommend(s, weights, userId, n)
		if err != nil {
			return nil
		}
		return recommendations
	}
	algorithm := arm.algorithm()
	scored := s.scorers[algorithm].Score(userId, n)
	recommendations := make([]Recommendation, 0, len(scored))
	for _, candidate := range scored {
		rec := Recommendation{ItemId: candidate.ItemId, Score: candidate.Score}
		rec.Contributions[algorithm] = candidate.Score
		recommendations = append(recommendations, rec)
	}
	return recommendations
}

// groundTruth extracts a user's held-out ratings. Users absent from the test
// set evaluate against an empty map.
func groundTruth(testSet *dataset.Matrix, userId int64) map[int64]float32 {
	truth := make(map[int64]float32)
	items, ratings, err := testSet.UserRow(userId)
	if err != nil {
		return truth
	}
	for i, itemIndex := range items {
		itemId, _ := testSet.ItemDict().Value(itemIndex)
		truth[itemId] = ratings[i]
	}
	return truth
}

func aggregate(arm Arm, perUser []*Metrics) ABResult {
	result := ABResult{Arm: arm}
	for _, metrics := range perUser {
		if metrics == nil {
			continue
		}
		result.TestUsers++
		result.Metrics.Precision += metrics.Precision
		result.Metrics.Recall += metrics.Recall
		result.Metrics.F1 += metrics.F1
		result.Metrics.Coverage += metrics.Coverage
		result.Metrics.Diversity += metrics.Diversity
		result.Metrics.Novelty += metrics.Novelty
		result.Metrics.Duration += metrics.Duration
	}
	if result.TestUsers > 0 {
		count := float32(result.TestUsers)
		result.Metrics.Precision /= count
		result.Metrics.Recall /= count
		result.Metrics.F1 /= count
		result.Metrics.Coverage /= count
		result.Metrics.Diversity /= count
		result.Metrics.Novelty /= count
		result.Metrics.Duration /= time.Duration(result.TestUsers)
	}
	return result
}
