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

package dataset

import (
	"math"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestMatrixAddRating(t *testing.T) {
	m := NewMatrix()
	assert.NoError(t, m.AddRating(1, 10, 4))
	assert.NoError(t, m.AddRating(1, 20, 2.5))
	assert.NoError(t, m.AddRating(2, 10, 5))
	assert.Equal(t, 2, m.CountUsers())
	assert.Equal(t, 2, m.CountItems())
	assert.Equal(t, 3, m.CountRatings())

	// out of range ratings are rejected
	assert.True(t, errors.Is(m.AddRating(1, 30, 0.5), errors.NotValid))
	assert.True(t, errors.Is(m.AddRating(1, 30, 5.5), errors.NotValid))
	assert.Equal(t, 3, m.CountRatings())

	// NaN compares false against both bounds and must still be rejected
	assert.True(t, errors.Is(m.AddRating(1, 30, float32(math.NaN())), errors.NotValid))
	assert.Equal(t, 3, m.CountRatings())
	_, ok := m.Rating(1, 30)
	assert.False(t, ok)

	// a duplicate cell overwrites instead of duplicating
	assert.NoError(t, m.AddRating(1, 10, 3))
	assert.Equal(t, 3, m.CountRatings())
	r, ok := m.Rating(1, 10)
	assert.True(t, ok)
	assert.Equal(t, float32(3), r)
}

func TestMatrixUserRow(t *testing.T) {
	m := NewMatrix()
	assert.NoError(t, m.AddRating(1, 10, 4))
	assert.NoError(t, m.AddRating(1, 20, 2))

	items, ratings, err := m.UserRow(1)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, []float32{4, 2}, ratings)

	_, _, err = m.UserRow(42)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestMatrixRatedItems(t *testing.T) {
	m := NewMatrix()
	assert.NoError(t, m.AddRating(1, 10, 4))
	assert.NoError(t, m.AddRating(1, 20, 2))
	assert.NoError(t, m.AddRating(2, 30, 3))

	rated := m.RatedItems(1)
	assert.Equal(t, 2, rated.Cardinality())
	assert.True(t, rated.Contains(10))
	assert.True(t, rated.Contains(20))
	assert.Equal(t, 0, m.RatedItems(42).Cardinality())
}

func TestMatrixIDs(t *testing.T) {
	m := NewMatrix()
	assert.NoError(t, m.AddRating(5, 30, 4))
	assert.NoError(t, m.AddRating(1, 10, 4))
	assert.NoError(t, m.AddRating(3, 20, 4))
	assert.Equal(t, []int64{1, 3, 5}, m.UserIDs())
	assert.Equal(t, []int64{10, 20, 30}, m.ItemIDs())
}

func TestMatrixSparsity(t *testing.T) {
	m := NewMatrix()
	assert.Equal(t, float32(0), m.Sparsity())
	assert.NoError(t, m.AddRating(1, 10, 4))
	assert.NoError(t, m.AddRating(2, 20, 4))
	// 2 observed cells out of 4
	assert.Equal(t, float32(0.5), m.Sparsity())
}
