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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// ItemProfile carries the metadata of a single item. Tags are a set: order
// and duplicates are irrelevant. Popularity is the observation count used
// by the popularity scorer and the novelty metric.
type ItemProfile struct {
	ItemId     int64
	Tags       []string
	Year       int
	AvgRating  float32
	Popularity int
}

// Catalog holds item profiles. Like the rating matrix it is built once per
// training cycle and read-only afterwards; aggregate refreshes produce a
// new catalog instead of mutating in place.
type Catalog struct {
	dict  *Dict[int64]
	items []ItemProfile
}

func NewCatalog() *Catalog {
	return &Catalog{dict: NewDict[int64]()}
}

// AddItem inserts an item profile. Duplicate tags are collapsed, a second
// profile for the same item replaces the first.
func (c *Catalog) AddItem(item ItemProfile) {
	item.Tags = lo.Uniq(item.Tags)
	itemIndex := c.dict.NotCount(item.ItemId)
	if int(itemIndex) < len(c.items) {
		c.items[itemIndex] = item
		return
	}
	c.items = append(c.items, item)
}

func (c *Catalog) CountItems() int {
	return len(c.items)
}

// Item looks up an item profile. Absent items yield a NotFound error.
func (c *Catalog) Item(itemId int64) (ItemProfile, error) {
	itemIndex := c.dict.Index(itemId)
	if itemIndex == NotId {
		return ItemProfile{}, errors.NotFoundf("item %v", itemId)
	}
	return c.items[itemIndex], nil
}

// Items returns all profiles in insertion order.
func (c *Catalog) Items() []ItemProfile {
	return c.items
}

// Tags returns the set of all tags across the catalog.
func (c *Catalog) Tags() mapset.Set[string] {
	tags := mapset.NewSet[string]()
	for _, item := range c.items {
		tags.Append(item.Tags...)
	}
	return tags
}

// WithAggregates returns a copy of the catalog whose aggregate rating and
// popularity are recomputed from the given matrix. The receiver is left
// untouched so in-flight scoring never observes a half-updated profile.
func (c *Catalog) WithAggregates(m *Matrix) *Catalog {
	next := NewCatalog()
	for _, item := range c.items {
		itemIndex := m.ItemDict().Index(item.ItemId)
		if itemIndex == NotId {
			item.AvgRating = 0
			item.Popularity = 0
		} else {
			_, ratings := m.ItemColumnByIndex(itemIndex)
			sum := float32(0)
			for _, r := range ratings {
				sum += r
			}
			item.Popularity = len(ratings)
			if len(ratings) > 0 {
				item.AvgRating = sum / float32(len(ratings))
			} else {
				item.AvgRating = 0
			}
		}
		next.AddItem(item)
	}
	return next
}
