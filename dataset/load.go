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
	"bufio"
	"os"
	"strings"

	"github.com/SerberkSagnak/bitirme2/common/util"
	"github.com/juju/errors"
)

// LoadRatings reads a rating matrix from a CSV file with lines of the form
//
//	user_id,item_id,rating
func LoadRatings(path string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	m := NewMatrix()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			return nil, errors.NotValidf("rating line %q", line)
		}
		userId, err := util.ParseInt[int64](fields[0])
		if err != nil {
			return nil, errors.Trace(err)
		}
		itemId, err := util.ParseInt[int64](fields[1])
		if err != nil {
			return nil, errors.Trace(err)
		}
		rating, err := util.ParseFloat[float32](fields[2])
		if err != nil {
			return nil, errors.Trace(err)
		}
		if err = m.AddRating(userId, itemId, rating); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return m, errors.Trace(scanner.Err())
}

// LoadItems reads an item catalog from a CSV file with lines of the form
//
//	item_id,tag|tag|...,year,avg_rating,popularity
//
// Year, aggregate rating and popularity may be left empty.
func LoadItems(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	c := NewCatalog()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, errors.NotValidf("item line %q", line)
		}
		itemId, err := util.ParseInt[int64](fields[0])
		if err != nil {
			return nil, errors.Trace(err)
		}
		item := ItemProfile{ItemId: itemId}
		if fields[1] != "" {
			item.Tags = strings.Split(fields[1], "|")
		}
		if len(fields) > 2 && fields[2] != "" {
			if item.Year, err = util.ParseInt[int](fields[2]); err != nil {
				return nil, errors.Trace(err)
			}
		}
		if len(fields) > 3 && fields[3] != "" {
			if item.AvgRating, err = util.ParseFloat[float32](fields[3]); err != nil {
				return nil, errors.Trace(err)
			}
		}
		if len(fields) > 4 && fields[4] != "" {
			if item.Popularity, err = util.ParseInt[int](fields[4]); err != nil {
				return nil, errors.Trace(err)
			}
		}
		c.AddItem(item)
	}
	return c, errors.Trace(scanner.Err())
}
