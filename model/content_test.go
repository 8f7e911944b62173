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
	"github.com/stretchr/testify/assert"
)

func newTagCatalog() *dataset.Catalog {
	c := dataset.NewCatalog()
	c.AddItem(dataset.ItemProfile{ItemId: 1, Tags: []string{"Action", "Sci-Fi"}})
	c.AddItem(dataset.ItemProfile{ItemId: 2, Tags: []string{"Action", "Sci-Fi"}})
	c.AddItem(dataset.ItemProfile{ItemId: 3, Tags: []string{"Comedy"}})
	c.AddItem(dataset.ItemProfile{ItemId: 4})
	return c
}

func TestSimilarityIndex(t *testing.T) {
	index, err := BuildSimilarityIndex(context.Background(), newTagCatalog(), Params{})
	assert.NoError(t, err)
	assert.Equal(t, 4, index.CountItems())
	// identical tag sets are fully similar, disjoint ones not at all
	assert.InDelta(t, 1, index.Similarity(1, 2), 1e-6)
	assert.Equal(t, index.Similarity(1, 2), index.Similarity(2, 1))
	assert.Equal(t, float32(0), index.Similarity(1, 3))
	assert.Equal(t, float32(1), index.Similarity(1, 1))
	// an item without tags is a zero vector, neutral to everything
	assert.Equal(t, float32(0), index.Similarity(1, 4))
	assert.Equal(t, float32(0), index.Similarity(4, 3))
	// unknown items read as zero
	assert.Equal(t, float32(0), index.Similarity(1, 42))
}

func TestSimilarityIndexFloor(t *testing.T) {
	c := dataset.NewCatalog()
	c.AddItem(dataset.ItemProfile{ItemId: 1, Tags: []string{"Action", "Drama", "Crime", "Thriller"}})
	c.AddItem(dataset.ItemProfile{ItemId: 2, Tags: []string{"Action", "Comedy", "Romance", "Family"}})
	// one shared tag out of four on both sides: cosine 0.25
	index, err := BuildSimilarityIndex(context.Background(), c, Params{})
	assert.NoError(t, err)
	assert.Equal(t, float32(0.25), index.Similarity(1, 2))
	// a floor above the cosine hides the pair entirely
	index, err = BuildSimilarityIndex(context.Background(), c, Params{SimilarityFloor: 0.5})
	assert.NoError(t, err)
	assert.Equal(t, float32(0), index.Similarity(1, 2))
}

func TestSimilarityIndexYear(t *testing.T) {
	c := dataset.NewCatalog()
	c.AddItem(dataset.ItemProfile{ItemId: 1, Tags: []string{"Action"}, Year: 1990})
	c.AddItem(dataset.ItemProfile{ItemId: 2, Tags: []string{"Action"}, Year: 1990})
	c.AddItem(dataset.ItemProfile{ItemId: 3, Tags: []string{"Action"}, Year: 1995})
	index, err := BuildSimilarityIndex(context.Background(), c, Params{Jobs: 2})
	assert.NoError(t, err)
	// the release year separates otherwise identical items, but only weakly
	assert.InDelta(t, 1, index.Similarity(1, 2), 1e-6)
	assert.Greater(t, index.Similarity(1, 2), index.Similarity(1, 3))
	assert.Greater(t, index.Similarity(1, 3), float32(0))
}

func TestContentBasedScore(t *testing.T) {
	m := dataset.NewMatrix()
	assert.NoError(t, m.AddRating(1, 1, 5))
	assert.NoError(t, m.AddRating(1, 3, 2))
	index, err := BuildSimilarityIndex(context.Background(), newTagCatalog(), Params{})
	assert.NoError(t, err)
	content := NewContentBased(m, index, Params{})

	scored := content.Score(1, 10)
	assert.Len(t, scored, 1)
	assert.Equal(t, int64(2), scored[0].ItemId)
	assert.InDelta(t, 1, scored[0].Score, 1e-6)
	// the tagless item 4 never arrives through similarity
	for _, s := range scored {
		assert.NotEqual(t, int64(4), s.ItemId)
	}
}

func TestContentBasedNoLikedItems(t *testing.T) {
	m := dataset.NewMatrix()
	assert.NoError(t, m.AddRating(1, 1, 3))
	index, err := BuildSimilarityIndex(context.Background(), newTagCatalog(), Params{})
	assert.NoError(t, err)
	content := NewContentBased(m, index, Params{})
	assert.Empty(t, content.Score(1, 10))
	assert.Empty(t, content.Score(42, 10))
}

func TestContentBasedPredict(t *testing.T) {
	m := dataset.NewMatrix()
	assert.NoError(t, m.AddRating(1, 1, 5))
	assert.NoError(t, m.AddRating(1, 3, 2))
	index, err := BuildSimilarityIndex(context.Background(), newTagCatalog(), Params{})
	assert.NoError(t, err)
	content := NewContentBased(m, index, Params{})

	// item 2 is only similar to the five star item 1
	prediction, ok := content.Predict(1, 2)
	assert.True(t, ok)
	assert.Equal(t, float32(5), prediction)
	// nothing the user rated resembles item 4
	_, ok = content.Predict(1, 4)
	assert.False(t, ok)
	_, ok = content.Predict(42, 2)
	assert.False(t, ok)
}
