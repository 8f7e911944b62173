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
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSplitMatrix(t *testing.T) *Matrix {
	m := NewMatrix()
	for user := int64(1); user <= 4; user++ {
		for item := int64(10); item <= 50; item += 10 {
			assert.NoError(t, m.AddRating(user, item, 4))
		}
	}
	return m
}

func TestSplit(t *testing.T) {
	m := newSplitMatrix(t)
	train, test := Split(m, 0.4, 0)
	assert.Equal(t, m.CountRatings(), train.CountRatings()+test.CountRatings())
	// every user keeps ratings in the train matrix
	assert.Equal(t, 4, train.CountUsers())
	for _, userId := range m.UserIDs() {
		items, _, err := train.UserRow(userId)
		assert.NoError(t, err)
		assert.Len(t, items, 3)
		// train and test are disjoint per user
		rated := train.RatedItems(userId)
		for itemId := range test.RatedItems(userId).Iter() {
			assert.False(t, rated.Contains(itemId))
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	m := newSplitMatrix(t)
	train1, test1 := Split(m, 0.4, 42)
	train2, test2 := Split(m, 0.4, 42)
	for _, userId := range m.UserIDs() {
		assert.True(t, train1.RatedItems(userId).Equal(train2.RatedItems(userId)))
		assert.True(t, test1.RatedItems(userId).Equal(test2.RatedItems(userId)))
	}
}

func TestSplitKeepsOneRating(t *testing.T) {
	m := NewMatrix()
	assert.NoError(t, m.AddRating(1, 10, 4))
	train, test := Split(m, 0.9, 0)
	assert.Equal(t, 1, train.CountRatings())
	assert.Equal(t, 0, test.CountRatings())
}
