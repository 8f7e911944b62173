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
	"github.com/SerberkSagnak/bitirme2/dataset"
)

// MostPopular is the non-personalized fallback: items ranked by aggregate
// rating times observation count. It is the only scorer guaranteed to serve a
// user with no history at all, which makes it the cold-start path of the
// hybrid blend.
type MostPopular struct {
	BaseModel
	matrix  *dataset.Matrix
	catalog *dataset.Catalog
	minObs  int
}

func NewMostPopular(m *dataset.Matrix, catalog *dataset.Catalog, params Params) *MostPopular {
	popular := &MostPopular{matrix: m, catalog: catalog}
	popular.SetParams(params)
	popular.minObs = params.GetInt(PopularityFloor, 20)
	return popular
}

func (popular *MostPopular) Name() Algorithm {
	return Popularity
}

func (popular *MostPopular) Score(userId int64, n int) []Scored {
	rated := popular.matrix.RatedItems(userId)
	var scored []Scored
	for _, item := range popular.catalog.Items() {
		// the observation floor keeps one-rating outliers from dominating
		if item.Popularity < popular.minObs || rated.Contains(item.ItemId) {
			continue
		}
		if score := item.AvgRating * float32(item.Popularity); score > 0 {
			scored = append(scored, Scored{ItemId: item.ItemId, Score: score})
		}
	}
	sortScored(scored)
	return truncate(scored, n)
}

// Predict falls back to the item's aggregate rating. ok is false below the
// observation floor, where the aggregate is too noisy to trust.
func (popular *MostPopular) Predict(_, itemId int64) (float32, bool) {
	item, err := popular.catalog.Item(itemId)
	if err != nil || item.Popularity < popular.minObs {
		return 0, false
	}
	return item.AvgRating, true
}
