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
	"context"
	"testing"

	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func newSVDMatrix(t *testing.T) *dataset.Matrix {
	m := dataset.NewMatrix()
	ratings := []struct {
		user, item int64
		rating     float32
	}{
		{1, 1, 5}, {1, 2, 1}, {1, 3, 4},
		{2, 1, 4}, {2, 2, 1}, {2, 3, 5},
		{3, 1, 1}, {3, 2, 5},
	}
	for _, r := range ratings {
		assert.NoError(t, m.AddRating(r.user, r.item, r.rating))
	}
	return m
}

func newFittedSVD(t *testing.T) *SVD {
	svd := NewSVD(newSVDMatrix(t), Params{
		NFactors:    3,
		NEpochs:     500,
		Lr:          0.05,
		Reg:         0.0,
		RandomState: int64(42),
	})
	assert.NoError(t, svd.Fit(context.Background()))
	return svd
}

func TestSVDRankTooLarge(t *testing.T) {
	svd := NewSVD(newSVDMatrix(t), Params{NFactors: 10})
	err := svd.Fit(context.Background())
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestSVDPredict(t *testing.T) {
	svd := newFittedSVD(t)
	// with full rank and no regularization the observed cells reconstruct
	prediction, ok := svd.Predict(1, 1)
	assert.True(t, ok)
	assert.InDelta(t, 5, prediction, 0.5)
	prediction, ok = svd.Predict(2, 3)
	assert.True(t, ok)
	assert.InDelta(t, 5, prediction, 0.5)
	_, ok = svd.Predict(42, 1)
	assert.False(t, ok)
	_, ok = svd.Predict(1, 42)
	assert.False(t, ok)
}

func TestSVDScore(t *testing.T) {
	svd := newFittedSVD(t)
	m := svd.matrix
	for _, userId := range m.UserIDs() {
		rated := m.RatedItems(userId)
		scored := svd.Score(userId, 10)
		for i, s := range scored {
			assert.False(t, rated.Contains(s.ItemId))
			assert.Greater(t, s.Score, float32(0))
			if i > 0 {
				assert.GreaterOrEqual(t, scored[i-1].Score, s.Score)
			}
		}
	}
	assert.Empty(t, svd.Score(42, 10))
}

func TestSVDScoreBeforeFit(t *testing.T) {
	svd := NewSVD(newSVDMatrix(t), Params{NFactors: 2})
	assert.Empty(t, svd.Score(1, 10))
	_, ok := svd.Predict(1, 1)
	assert.False(t, ok)
}

func TestSVDDeterministic(t *testing.T) {
	first := newFittedSVD(t)
	second := newFittedSVD(t)
	p1, ok1 := first.Predict(1, 1)
	p2, ok2 := second.Predict(1, 1)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, p1, p2)
}
