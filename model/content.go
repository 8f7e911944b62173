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
	"fmt"

	"github.com/SerberkSagnak/bitirme2/common/parallel"
	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// SimilarityIndex is a dense item by item cosine similarity matrix built from
// term-frequency vectors over the tag vocabulary, with the release year added
// as a weak extra term. The matrix is symmetric with a unit diagonal and is
// read-only once built; a data refresh builds a new index instead of mutating
// this one. Similarities below the floor read as zero so weak matches never
// reach the aggregation step.
type SimilarityIndex struct {
	dict  *dataset.Dict[int64]
	sim   [][]float32
	floor float32
}

// BuildSimilarityIndex builds the index for every item in the catalog. The
// pairwise rows are computed in parallel, results depend only on the catalog.
func BuildSimilarityIndex(ctx context.Context, catalog *dataset.Catalog, params Params) (*SimilarityIndex, error) {
	index := &SimilarityIndex{
		dict:  dataset.NewDict[int64](),
		floor: params.GetFloat32(SimilarityFloor, 0.1),
	}
	// term-frequency vectors over tags plus a year token
	vocab := dataset.NewDict[string]()
	items := catalog.Items()
	terms := make([][]int32, len(items))
	norms := make([]float32, len(items))
	for i, item := range items {
		index.dict.NotCount(item.ItemId)
		for _, tag := range item.Tags {
			terms[i] = append(terms[i], vocab.NotCount(tag))
		}
		if item.Year != 0 && len(item.Tags) > 0 {
			terms[i] = append(terms[i], vocab.NotCount(fmt.Sprintf("year:%d", item.Year)))
		}
		norms[i] = math32.Sqrt(float32(len(terms[i])))
	}
	index.sim = make([][]float32, len(items))
	for i := range index.sim {
		index.sim[i] = make([]float32, len(items))
	}
	err := parallel.Parallel(ctx, len(items), params.GetInt(Jobs, 1), func(_, i int) error {
		row := make(map[int32]struct{}, len(terms[i]))
		for _, term := range terms[i] {
			row[term] = struct{}{}
		}
		index.sim[i][i] = 1
		for j := i + 1; j < len(items); j++ {
			if norms[i] == 0 || norms[j] == 0 {
				continue
			}
			var dot float32
			for _, term := range terms[j] {
				if _, exist := row[term]; exist {
					dot++
				}
			}
			cosine := dot / (norms[i] * norms[j])
			index.sim[i][j] = cosine
			index.sim[j][i] = cosine
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return index, nil
}

func (index *SimilarityIndex) CountItems() int {
	return int(index.dict.Count())
}

// ItemIds returns the indexed item identifiers in catalog order.
func (index *SimilarityIndex) ItemIds() []int64 {
	ids := make([]int64, 0, index.dict.Count())
	for i := int32(0); i < index.dict.Count(); i++ {
		id, _ := index.dict.Value(i)
		ids = append(ids, id)
	}
	return ids
}

// Similarity returns the floored similarity of two items. Values below the
// floor and unknown items read as zero.
func (index *SimilarityIndex) Similarity(a, b int64) float32 {
	i := index.dict.Index(a)
	j := index.dict.Index(b)
	if i == dataset.NotId || j == dataset.NotId {
		return 0
	}
	if s := index.sim[i][j]; s >= index.floor {
		return s
	}
	return 0
}

// ContentBased scores items by their tag similarity to the items the user
// liked: every liked item votes its similarity onto unrated candidates.
type ContentBased struct {
	BaseModel
	matrix *dataset.Matrix
	index  *SimilarityIndex
	liked  float32
}

func NewContentBased(m *dataset.Matrix, index *SimilarityIndex, params Params) *ContentBased {
	content := &ContentBased{matrix: m, index: index}
	content.SetParams(params)
	content.liked = params.GetFloat32(LikedThreshold, 4)
	return content
}

func (content *ContentBased) Name() Algorithm {
	return Content
}

// likedItems returns the identifiers of the items the user rated at or above
// the liked threshold.
func (content *ContentBased) likedItems(userIndex int32) []int64 {
	items, ratings := content.matrix.UserRowByIndex(userIndex)
	var liked []int64
	for i, itemIndex := range items {
		if ratings[i] >= content.liked {
			itemId, _ := content.matrix.ItemDict().Value(itemIndex)
			liked = append(liked, itemId)
		}
	}
	return liked
}

func (content *ContentBased) Score(userId int64, n int) []Scored {
	userIndex := content.matrix.UserDict().Index(userId)
	if userIndex == dataset.NotId {
		return nil
	}
	liked := content.likedItems(userIndex)
	if len(liked) == 0 {
		return nil
	}
	rated := content.matrix.RatedItems(userId)
	votes := make(map[int64]float32)
	for _, candidate := range content.index.ItemIds() {
		if rated.Contains(candidate) {
			continue
		}
		for _, likedItem := range liked {
			if s := content.index.Similarity(likedItem, candidate); s > 0 {
				votes[candidate] += s
			}
		}
	}
	scored := make([]Scored, 0, len(votes))
	for itemId, score := range votes {
		scored = append(scored, Scored{ItemId: itemId, Score: score})
	}
	sortScored(scored)
	return truncate(scored, n)
}

// Predict estimates a rating as the similarity weighted mean of the user's
// own ratings. ok is false when no rated item is similar to the target.
func (content *ContentBased) Predict(userId, itemId int64) (float32, bool) {
	userIndex := content.matrix.UserDict().Index(userId)
	if userIndex == dataset.NotId {
		return 0, false
	}
	items, ratings := content.matrix.UserRowByIndex(userIndex)
	var sum, mass float32
	for i, itemIndex := range items {
		ratedId, _ := content.matrix.ItemDict().Value(itemIndex)
		if s := content.index.Similarity(ratedId, itemId); s > 0 {
			sum += s * ratings[i]
			mass += s
		}
	}
	if mass <= 0 {
		return 0, false
	}
	return sum / mass, true
}
