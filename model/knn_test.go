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
	"testing"

	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/stretchr/testify/assert"
)

// Three users over five items. User 2 tracks user 1 closely over their three
// common items, user 3 rates them the opposite way.
func newKNNMatrix(t *testing.T) *dataset.Matrix {
	m := dataset.NewMatrix()
	ratings := []struct {
		user, item int64
		rating     float32
	}{
		{1, 1, 5}, {1, 2, 4}, {1, 3, 1},
		{2, 1, 5}, {2, 2, 4}, {2, 3, 2}, {2, 4, 4},
		{3, 1, 1}, {3, 2, 2}, {3, 3, 5}, {3, 5, 5},
	}
	for _, r := range ratings {
		assert.NoError(t, m.AddRating(r.user, r.item, r.rating))
	}
	return m
}

func TestKNNScore(t *testing.T) {
	knn := NewKNN(newKNNMatrix(t), Params{})
	scored := knn.Score(1, 10)
	// item 4 arrives through the positively correlated user 2, item 5 is
	// rated only by the anti-correlated user 3 and must stay absent
	assert.Len(t, scored, 1)
	assert.Equal(t, int64(4), scored[0].ItemId)
	assert.Greater(t, scored[0].Score, float32(0))
}

func TestKNNScoreUnknownUser(t *testing.T) {
	knn := NewKNN(newKNNMatrix(t), Params{})
	assert.Empty(t, knn.Score(42, 10))
}

func TestKNNScoreNeverReturnsRated(t *testing.T) {
	m := newKNNMatrix(t)
	knn := NewKNN(m, Params{MinSupport: 2})
	for _, userId := range m.UserIDs() {
		rated := m.RatedItems(userId)
		for _, s := range knn.Score(userId, 10) {
			assert.False(t, rated.Contains(s.ItemId))
		}
	}
}

func TestKNNZeroVarianceNeighbor(t *testing.T) {
	m := dataset.NewMatrix()
	assert.NoError(t, m.AddRating(1, 1, 5))
	assert.NoError(t, m.AddRating(1, 2, 4))
	assert.NoError(t, m.AddRating(1, 3, 1))
	// a flat rating vector has no variance, its correlation is undefined
	assert.NoError(t, m.AddRating(2, 1, 3))
	assert.NoError(t, m.AddRating(2, 2, 3))
	assert.NoError(t, m.AddRating(2, 3, 3))
	assert.NoError(t, m.AddRating(2, 4, 3))
	knn := NewKNN(m, Params{})
	assert.Empty(t, knn.Score(1, 10))
}

func TestKNNMinSupport(t *testing.T) {
	m := dataset.NewMatrix()
	assert.NoError(t, m.AddRating(1, 1, 5))
	assert.NoError(t, m.AddRating(1, 2, 4))
	assert.NoError(t, m.AddRating(2, 1, 5))
	assert.NoError(t, m.AddRating(2, 2, 4))
	assert.NoError(t, m.AddRating(2, 3, 5))
	// two common items are below the default support of three
	knn := NewKNN(m, Params{})
	assert.Empty(t, knn.Score(1, 10))
	// lowering the support lets user 2 qualify
	knn = NewKNN(m, Params{MinSupport: 2})
	scored := knn.Score(1, 10)
	assert.Len(t, scored, 1)
	assert.Equal(t, int64(3), scored[0].ItemId)
}

func TestKNNPredict(t *testing.T) {
	knn := NewKNN(newKNNMatrix(t), Params{})
	// the only correlated neighbor rated item 4 with 4
	prediction, ok := knn.Predict(1, 4)
	assert.True(t, ok)
	assert.InDelta(t, 4, prediction, 1e-3)
	// item 5 has no correlated raters
	_, ok = knn.Predict(1, 5)
	assert.False(t, ok)
	_, ok = knn.Predict(42, 4)
	assert.False(t, ok)
}
