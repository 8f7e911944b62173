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
	"github.com/SerberkSagnak/bitirme2/base/log"
	"github.com/SerberkSagnak/bitirme2/common/heap"
	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// KNN scores items through user-based collaborative filtering: find the users
// whose rating vectors correlate with the target user, then let their ratings
// vote on items the target has not seen.
type KNN struct {
	BaseModel
	matrix     *dataset.Matrix
	nNeighbors int
	minSupport int
}

func NewKNN(m *dataset.Matrix, params Params) *KNN {
	knn := &KNN{matrix: m}
	knn.SetParams(params)
	knn.nNeighbors = params.GetInt(NNeighbors, 5)
	knn.minSupport = params.GetInt(MinSupport, 3)
	return knn
}

func (knn *KNN) Name() Algorithm {
	return Collaborative
}

// pearson computes the Pearson correlation between two users' ratings over
// the items both observed. ok is false when the overlap is below minSupport
// or either side has zero variance over the overlap, which would make the
// correlation undefined.
func (knn *KNN) pearson(a, b int32) (corr float32, ok bool) {
	itemsA, ratingsA := knn.matrix.UserRowByIndex(a)
	itemsB, ratingsB := knn.matrix.UserRowByIndex(b)
	rowA := make(map[int32]float32, len(itemsA))
	for i, itemIndex := range itemsA {
		rowA[itemIndex] = ratingsA[i]
	}
	var n int
	var sumX, sumY, sumXY, sumX2, sumY2 float32
	for i, itemIndex := range itemsB {
		if x, exist := rowA[itemIndex]; exist {
			y := ratingsB[i]
			n++
			sumX += x
			sumY += y
			sumXY += x * y
			sumX2 += x * x
			sumY2 += y * y
		}
	}
	if n < knn.minSupport {
		return 0, false
	}
	varX := float32(n)*sumX2 - sumX*sumX
	varY := float32(n)*sumY2 - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return 0, false
	}
	return (float32(n)*sumXY - sumX*sumY) / math32.Sqrt(varX*varY), true
}

// neighbors returns the most correlated users in decreasing correlation
// order. Only positive, well-defined correlations qualify.
func (knn *KNN) neighbors(userIndex int32) ([]int32, []float32) {
	filter := heap.NewTopKFilter[int32, float32](knn.nNeighbors)
	for other := int32(0); other < int32(knn.matrix.CountUsers()); other++ {
		if other == userIndex {
			continue
		}
		if corr, ok := knn.pearson(userIndex, other); ok && corr > 0 {
			filter.Push(other, corr)
		}
	}
	return filter.PopAll()
}

// Score accumulates correlation weighted neighbor ratings on items the target
// user has not rated. Items no neighbor rated never become candidates, so a
// candidate's correlation mass is always positive.
func (knn *KNN) Score(userId int64, n int) []Scored {
	userIndex := knn.matrix.UserDict().Index(userId)
	if userIndex == dataset.NotId {
		log.Logger().Debug("unknown user", zap.Int64("user_id", userId))
		return nil
	}
	neighbors, correlations := knn.neighbors(userIndex)
	items, _ := knn.matrix.UserRowByIndex(userIndex)
	rated := make(map[int32]struct{}, len(items))
	for _, itemIndex := range items {
		rated[itemIndex] = struct{}{}
	}
	votes := make(map[int32]float32)
	for i, neighbor := range neighbors {
		neighborItems, neighborRatings := knn.matrix.UserRowByIndex(neighbor)
		for j, itemIndex := range neighborItems {
			if _, exist := rated[itemIndex]; exist {
				continue
			}
			votes[itemIndex] += correlations[i] * neighborRatings[j]
		}
	}
	scored := make([]Scored, 0, len(votes))
	for itemIndex, score := range votes {
		if score <= 0 {
			continue
		}
		itemId, _ := knn.matrix.ItemDict().Value(itemIndex)
		scored = append(scored, Scored{ItemId: itemId, Score: score})
	}
	sortScored(scored)
	return truncate(scored, n)
}

// Predict estimates a rating as the correlation weighted mean of neighbor
// ratings for the item. ok is false when no correlated neighbor rated it.
func (knn *KNN) Predict(userId, itemId int64) (float32, bool) {
	userIndex := knn.matrix.UserDict().Index(userId)
	itemIndex := knn.matrix.ItemDict().Index(itemId)
	if userIndex == dataset.NotId || itemIndex == dataset.NotId {
		return 0, false
	}
	neighbors, correlations := knn.neighbors(userIndex)
	var sum, mass float32
	for i, neighbor := range neighbors {
		neighborItems, neighborRatings := knn.matrix.UserRowByIndex(neighbor)
		for j, candidate := range neighborItems {
			if candidate == itemIndex {
				sum += correlations[i] * neighborRatings[j]
				mass += correlations[i]
			}
		}
	}
	if mass <= 0 {
		return 0, false
	}
	return sum / mass, true
}
