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

// NotId is returned by Index when a value is unknown to the dictionary.
const NotId = int32(-1)

// Dict maps sparse external identifiers to dense indices and keeps the
// frequency of every value added through Id.
type Dict[K comparable] struct {
	si  map[K]int32
	is  []K
	cnt []int32
}

func NewDict[K comparable]() *Dict[K] {
	return &Dict[K]{si: make(map[K]int32)}
}

func (d *Dict[K]) Count() int32 {
	return int32(len(d.is))
}

// Id returns the index of a value, adding it and counting an occurrence.
func (d *Dict[K]) Id(v K) int32 {
	if y, ok := d.si[v]; ok {
		d.cnt[y]++
		return y
	}
	y := int32(len(d.is))
	d.si[v] = y
	d.is = append(d.is, v)
	d.cnt = append(d.cnt, 1)
	return y
}

// NotCount returns the index of a value, adding it without counting.
func (d *Dict[K]) NotCount(v K) int32 {
	if y, ok := d.si[v]; ok {
		return y
	}
	y := int32(len(d.is))
	d.si[v] = y
	d.is = append(d.is, v)
	d.cnt = append(d.cnt, 0)
	return y
}

// Index looks up the index of a value without adding it.
func (d *Dict[K]) Index(v K) int32 {
	if y, ok := d.si[v]; ok {
		return y
	}
	return NotId
}

// Value returns the value at an index.
func (d *Dict[K]) Value(id int32) (v K, ok bool) {
	if id < 0 || id >= int32(len(d.is)) {
		return v, false
	}
	return d.is[id], true
}

// Freq returns the occurrence count of the value at an index.
func (d *Dict[K]) Freq(id int32) int32 {
	if id < 0 || id >= int32(len(d.cnt)) {
		return 0
	}
	return d.cnt[id]
}
