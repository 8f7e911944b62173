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
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
)

// Rating bounds accepted by the matrix.
const (
	MinRating = float32(1)
	MaxRating = float32(5)
)

// Matrix is a sparse user-item rating matrix. Observed cells are stored
// explicitly per row and per column; absence of a cell means "unobserved".
// The matrix is filled once per training cycle and treated as read-only
// by every scorer afterwards.
type Matrix struct {
	userDict    *Dict[int64]
	itemDict    *Dict[int64]
	userItems   [][]int32
	userRatings [][]float32
	itemUsers   [][]int32
	itemRatings [][]float32
	numRatings  int
}

func NewMatrix() *Matrix {
	return &Matrix{
		userDict: NewDict[int64](),
		itemDict: NewDict[int64](),
	}
}

// AddRating inserts an observed cell. Ratings outside [1,5], NaN included,
// are rejected. Inserting the same (user, item) pair twice overwrites the
// previous value so the one-cell-per-pair invariant always holds.
func (m *Matrix) AddRating(userId, itemId int64, rating float32) error {
	// negated form so NaN fails the check too
	if !(rating >= MinRating && rating <= MaxRating) {
		return errors.NotValidf("rating %v for user %v item %v", rating, userId, itemId)
	}
	userIndex := m.userDict.Id(userId)
	itemIndex := m.itemDict.Id(itemId)
	for int(userIndex) >= len(m.userItems) {
		m.userItems = append(m.userItems, nil)
		m.userRatings = append(m.userRatings, nil)
	}
	for int(itemIndex) >= len(m.itemUsers) {
		m.itemUsers = append(m.itemUsers, nil)
		m.itemRatings = append(m.itemRatings, nil)
	}
	// overwrite existing cell
	if i := slices.Index(m.userItems[userIndex], itemIndex); i >= 0 {
		m.userRatings[userIndex][i] = rating
		j := slices.Index(m.itemUsers[itemIndex], userIndex)
		m.itemRatings[itemIndex][j] = rating
		return nil
	}
	m.userItems[userIndex] = append(m.userItems[userIndex], itemIndex)
	m.userRatings[userIndex] = append(m.userRatings[userIndex], rating)
	m.itemUsers[itemIndex] = append(m.itemUsers[itemIndex], userIndex)
	m.itemRatings[itemIndex] = append(m.itemRatings[itemIndex], rating)
	m.numRatings++
	return nil
}

func (m *Matrix) CountUsers() int {
	return int(m.userDict.Count())
}

func (m *Matrix) CountItems() int {
	return int(m.itemDict.Count())
}

func (m *Matrix) CountRatings() int {
	return m.numRatings
}

// Sparsity is the fraction of unobserved cells.
func (m *Matrix) Sparsity() float32 {
	size := m.CountUsers() * m.CountItems()
	if size == 0 {
		return 0
	}
	return 1 - float32(m.numRatings)/float32(size)
}

func (m *Matrix) UserDict() *Dict[int64] {
	return m.userDict
}

func (m *Matrix) ItemDict() *Dict[int64] {
	return m.itemDict
}

// UserRow returns the observed cells of a user as parallel slices of item
// indices and ratings. An unknown user yields a NotFound error which callers
// must treat as "no collaborative signal", not as a failure.
func (m *Matrix) UserRow(userId int64) ([]int32, []float32, error) {
	userIndex := m.userDict.Index(userId)
	if userIndex == NotId {
		return nil, nil, errors.NotFoundf("user %v", userId)
	}
	return m.userItems[userIndex], m.userRatings[userIndex], nil
}

// UserRowByIndex returns the observed cells of a user by dense index.
func (m *Matrix) UserRowByIndex(userIndex int32) ([]int32, []float32) {
	return m.userItems[userIndex], m.userRatings[userIndex]
}

// ItemColumnByIndex returns the observed cells of an item by dense index.
func (m *Matrix) ItemColumnByIndex(itemIndex int32) ([]int32, []float32) {
	return m.itemUsers[itemIndex], m.itemRatings[itemIndex]
}

// RatedItems returns the set of item identifiers observed for a user.
// An unknown user yields an empty set.
func (m *Matrix) RatedItems(userId int64) mapset.Set[int64] {
	rated := mapset.NewSet[int64]()
	userIndex := m.userDict.Index(userId)
	if userIndex == NotId {
		return rated
	}
	for _, itemIndex := range m.userItems[userIndex] {
		itemId, _ := m.itemDict.Value(itemIndex)
		rated.Add(itemId)
	}
	return rated
}

// Rating returns the observed rating of a cell.
func (m *Matrix) Rating(userId, itemId int64) (float32, bool) {
	userIndex := m.userDict.Index(userId)
	itemIndex := m.itemDict.Index(itemId)
	if userIndex == NotId || itemIndex == NotId {
		return 0, false
	}
	if i := slices.Index(m.userItems[userIndex], itemIndex); i >= 0 {
		return m.userRatings[userIndex][i], true
	}
	return 0, false
}

// ItemIDs returns all item identifiers in ascending order.
func (m *Matrix) ItemIDs() []int64 {
	ids := make([]int64, 0, m.itemDict.Count())
	for i := int32(0); i < m.itemDict.Count(); i++ {
		id, _ := m.itemDict.Value(i)
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// UserIDs returns all user identifiers in ascending order.
func (m *Matrix) UserIDs() []int64 {
	ids := make([]int64, 0, m.userDict.Count())
	for i := int32(0); i < m.userDict.Count(); i++ {
		id, _ := m.userDict.Value(i)
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
