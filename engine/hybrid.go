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
	"sort"

	"github.com/SerberkSagnak/bitirme2/base/log"
	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/SerberkSagnak/bitirme2/model"
	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrInsufficientSignal reports that every scorer came back empty for a user,
// so there is nothing to recommend at all. Callers render a cold-start
// fallback instead of treating this as a failure.
var ErrInsufficientSignal = errors.New("insufficient signal from every scorer")

// Weights blends the four scorers. The values are relative: they do not have
// to sum to one, but none may be negative and at least one must be positive.
// A Weights value is immutable, the engine swaps the whole vector at once.
type Weights struct {
	Collaborative float32 `json:"collaborative" mapstructure:"collaborative" validate:"gte=0"`
	Content       float32 `json:"content" mapstructure:"content" validate:"gte=0"`
	Factor        float32 `json:"factor" mapstructure:"factor" validate:"gte=0"`
	Popularity    float32 `json:"popularity" mapstructure:"popularity" validate:"gte=0"`
}

func DefaultWeights() Weights {
	return Weights{
		Collaborative: 0.35,
		Content:       0.25,
		Factor:        0.25,
		Popularity:    0.15,
	}
}

func (w Weights) Get(a model.Algorithm) float32 {
	switch a {
	case model.Collaborative:
		return w.Collaborative
	case model.Content:
		return w.Content
	case model.Factor:
		return w.Factor
	case model.Popularity:
		return w.Popularity
	default:
		return 0
	}
}

func (w Weights) Validate() error {
	for _, a := range model.Algorithms() {
		v := w.Get(a)
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return errors.NotValidf("non-finite weight %v for %v", v, a)
		}
		if v < 0 {
			return errors.NotValidf("negative weight %v for %v", v, a)
		}
	}
	if w.Collaborative+w.Content+w.Factor+w.Popularity <= 0 {
		return errors.NotValidf("all zero weights")
	}
	return nil
}

// Recommendation is one ranked output item. Contributions records weight
// times raw score per algorithm, zero for algorithms that did not surface the
// item, and always sums to Score.
type Recommendation struct {
	ItemId        int64
	Score         float32
	Contributions [model.NumAlgorithms]float32
}

// engineState bundles everything derived from one data snapshot. A refresh
// builds a complete new state and swaps the pointer, so an in-flight scoring
// call never sees a fresh matrix next to a stale similarity index.
type engineState struct {
	matrix  *dataset.Matrix
	catalog *dataset.Catalog
	scorers [model.NumAlgorithms]model.Scorer
}

// popularity returns the observation count used as the ranking tiebreak.
func (s *engineState) popularity(itemId int64) int {
	if item, err := s.catalog.Item(itemId); err == nil {
		return item.Popularity
	}
	return 0
}

// Engine blends the four scoring strategies into ranked recommendations and
// evaluates them. It carries no signal of its own until Refresh loads a data
// snapshot. The weight vector and the derived state are the only mutable
// fields and both are swapped atomically, so concurrent scoring calls need no
// locking.
type Engine struct {
	params  model.Params
	weights atomic.Pointer[Weights]
	state   atomic.Pointer[engineState]
}

func NewEngine(params model.Params, weights Weights) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if params.GetInt(model.NFactors, 50) <= 0 {
		return nil, errors.NotValidf("rank %d", params.GetInt(model.NFactors, 50))
	}
	if params.GetFloat32(model.SimilarityFloor, 0.1) < 0 || params.GetFloat32(model.SimilarityFloor, 0.1) > 1 {
		return nil, errors.NotValidf("similarity floor %v", params.GetFloat32(model.SimilarityFloor, 0.1))
	}
	e := &Engine{params: params}
	e.weights.Store(&weights)
	return e, nil
}

// Weights returns the live weight vector.
func (e *Engine) Weights() Weights {
	return *e.weights.Load()
}

// SetWeights replaces the live weight vector wholesale.
func (e *Engine) SetWeights(w Weights) error {
	if err := w.Validate(); err != nil {
		return errors.Trace(err)
	}
	e.weights.Store(&w)
	return nil
}

// Refresh rebuilds every derived structure from a new data snapshot: catalog
// aggregates, the similarity index and the latent factors. The new state
// becomes visible in one atomic swap only after everything succeeded.
func (e *Engine) Refresh(ctx context.Context, m *dataset.Matrix, catalog *dataset.Catalog) error {
	catalog = catalog.WithAggregates(m)
	index, err := model.BuildSimilarityIndex(ctx, catalog, e.params)
	if err != nil {
		return errors.Trace(err)
	}
	svd := model.NewSVD(m, e.params)
	if err := svd.Fit(ctx); err != nil {
		return errors.Trace(err)
	}
	var scorers [model.NumAlgorithms]model.Scorer
	scorers[model.Collaborative] = model.NewKNN(m, e.params)
	scorers[model.Content] = model.NewContentBased(m, index, e.params)
	scorers[model.Factor] = svd
	scorers[model.Popularity] = model.NewMostPopular(m, catalog, e.params)
	e.state.Store(&engineState{matrix: m, catalog: catalog, scorers: scorers})
	log.Logger().Info("refreshed engine",
		zap.Int("num_users", m.CountUsers()),
		zap.Int("num_items", m.CountItems()),
		zap.Int("num_ratings", m.CountRatings()),
		zap.Float32("sparsity", m.Sparsity()))
	return nil
}

// Recommend returns the top n items for a user under the live weights.
// ErrInsufficientSignal means no scorer produced a single candidate.
func (e *Engine) Recommend(userId int64, n int) ([]Recommendation, error) {
	s := e.state.Load()
	if s == nil {
		return nil, errors.NotProvisionedf("engine")
	}
	return e.recommend(s, *e.weights.Load(), userId, n)
}

func (e *Engine) recommend(s *engineState, weights Weights, userId int64, n int) ([]Recommendation, error) {
	// each scorer offers twice the requested count so overlap between
	// scorers does not starve the final list
	merged := make(map[int64]*Recommendation)
	for _, scorer := range s.scorers {
		weight := weights.Get(scorer.Name())
		for _, candidate := range scorer.Score(userId, 2*n) {
			rec, exist := merged[candidate.ItemId]
			if !exist {
				rec = &Recommendation{ItemId: candidate.ItemId}
				merged[candidate.ItemId] = rec
			}
			contribution := weight * candidate.Score
			rec.Contributions[scorer.Name()] = contribution
			rec.Score += contribution
		}
	}
	if len(merged) == 0 {
		return nil, ErrInsufficientSignal
	}
	recommendations := make([]Recommendation, 0, len(merged))
	for _, rec := range merged {
		recommendations = append(recommendations, *rec)
	}
	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		pi, pj := s.popularity(recommendations[i].ItemId), s.popularity(recommendations[j].ItemId)
		if pi != pj {
			return pi > pj
		}
		return recommendations[i].ItemId < recommendations[j].ItemId
	})
	if n > 0 && len(recommendations) > n {
		recommendations = recommendations[:n]
	}
	return recommendations, nil
}

// PredictRating blends the scorers' single pair predictions, weighted by the
// live weights and normalized over the scorers that had signal. The result is
// clamped to the rating scale.
func (e *Engine) PredictRating(userId, itemId int64) (float32, error) {
	s := e.state.Load()
	if s == nil {
		return 0, errors.NotProvisionedf("engine")
	}
	weights := *e.weights.Load()
	var sum, mass float32
	for _, scorer := range s.scorers {
		if prediction, ok := scorer.Predict(userId, itemId); ok {
			weight := weights.Get(scorer.Name())
			sum += weight * prediction
			mass += weight
		}
	}
	if mass <= 0 {
		return 0, ErrInsufficientSignal
	}
	prediction := sum / mass
	if prediction < dataset.MinRating {
		prediction = dataset.MinRating
	} else if prediction > dataset.MaxRating {
		prediction = dataset.MaxRating
	}
	return prediction, nil
}

// Analytics is a summary of the loaded snapshot.
type Analytics struct {
	NumUsers   int
	NumItems   int
	NumRatings int
	Sparsity   float32
	Weights    Weights
}

func (e *Engine) Analytics() (Analytics, error) {
	s := e.state.Load()
	if s == nil {
		return Analytics{}, errors.NotProvisionedf("engine")
	}
	return Analytics{
		NumUsers:   s.matrix.CountUsers(),
		NumItems:   s.matrix.CountItems(),
		NumRatings: s.matrix.CountRatings(),
		Sparsity:   s.matrix.Sparsity(),
		Weights:    *e.weights.Load(),
	}, nil
}
