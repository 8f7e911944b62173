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
	"math/rand"
)

// Split holds out testRatio of every user's observed ratings into a test
// matrix and keeps the remainder in a train matrix. Users keep at least one
// rating in the train matrix so they stay reachable by the collaborative
// path. The split is deterministic for a fixed seed.
func Split(m *Matrix, testRatio float32, seed int64) (train, test *Matrix) {
	train, test = NewMatrix(), NewMatrix()
	rng := rand.New(rand.NewSource(seed))
	for userIndex := int32(0); userIndex < m.UserDict().Count(); userIndex++ {
		userId, _ := m.UserDict().Value(userIndex)
		items, ratings := m.UserRowByIndex(userIndex)
		perm := rng.Perm(len(items))
		testSize := int(float32(len(items)) * testRatio)
		if testSize >= len(items) {
			testSize = len(items) - 1
		}
		for i, p := range perm {
			itemId, _ := m.ItemDict().Value(items[p])
			if i < testSize {
				_ = test.AddRating(userId, itemId, ratings[p])
			} else {
				_ = train.AddRating(userId, itemId, ratings[p])
			}
		}
	}
	return train, test
}
