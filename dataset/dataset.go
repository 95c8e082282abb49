// Copyright 2026 gorse Project Authors
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
	"iter"
	"sort"
)

// Builder collects feedback and builds an immutable Dataset.
type Builder struct {
	userDict     *FreqDict
	itemDict     *FreqDict
	userFeedback [][]entry
	count        int
}

type entry struct {
	index  int32
	weight float64
}

func NewBuilder() *Builder {
	return &Builder{
		userDict: NewFreqDict(),
		itemDict: NewFreqDict(),
	}
}

// AddUser registers a user without feedback.
func (b *Builder) AddUser(userId string) int32 {
	userIndex := b.userDict.NotCount(userId)
	b.grow(userIndex)
	return userIndex
}

// AddItem registers an item without feedback.
func (b *Builder) AddItem(itemId string) int32 {
	return b.itemDict.NotCount(itemId)
}

// AddFeedback adds a weighted interaction between a user and an item. Users
// and items are registered on first sight.
func (b *Builder) AddFeedback(userId, itemId string, weight float64) {
	userIndex := b.userDict.Id(userId)
	itemIndex := b.itemDict.Id(itemId)
	b.grow(userIndex)
	b.userFeedback[userIndex] = append(b.userFeedback[userIndex], entry{index: itemIndex, weight: weight})
	b.count++
}

func (b *Builder) grow(userIndex int32) {
	for len(b.userFeedback) <= int(userIndex) {
		b.userFeedback = append(b.userFeedback, nil)
	}
}

// Build sorts every profile, merges repeated interactions by summing their
// weights and builds the reverse index.
func (b *Builder) Build() *Dataset {
	numUsers := b.userDict.Count()
	numItems := b.itemDict.Count()
	d := &Dataset{
		userDict: b.userDict,
		itemDict: b.itemDict,
	}
	// user -> items
	d.userFeedback.indptr = make([]int, 1, numUsers+1)
	d.userFeedback.indices = make([]int32, 0, b.count)
	d.userFeedback.values = make([]float64, 0, b.count)
	itemCounts := make([]int, numItems)
	for userIndex := 0; userIndex < numUsers; userIndex++ {
		var entries []entry
		if userIndex < len(b.userFeedback) {
			entries = b.userFeedback[userIndex]
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].index < entries[j].index
		})
		for i, e := range entries {
			if i > 0 && entries[i-1].index == e.index {
				d.userFeedback.values[len(d.userFeedback.values)-1] += e.weight
				continue
			}
			d.userFeedback.indices = append(d.userFeedback.indices, e.index)
			d.userFeedback.values = append(d.userFeedback.values, e.weight)
			itemCounts[e.index]++
		}
		d.userFeedback.indptr = append(d.userFeedback.indptr, len(d.userFeedback.indices))
	}
	// item -> users
	nnz := len(d.userFeedback.indices)
	d.itemFeedback.indptr = make([]int, numItems+1)
	for itemIndex, c := range itemCounts {
		d.itemFeedback.indptr[itemIndex+1] = d.itemFeedback.indptr[itemIndex] + c
	}
	d.itemFeedback.indices = make([]int32, nnz)
	d.itemFeedback.values = make([]float64, nnz)
	offsets := make([]int, numItems)
	copy(offsets, d.itemFeedback.indptr[:numItems])
	for userIndex := 0; userIndex < numUsers; userIndex++ {
		for j := d.userFeedback.indptr[userIndex]; j < d.userFeedback.indptr[userIndex+1]; j++ {
			itemIndex := d.userFeedback.indices[j]
			d.itemFeedback.indices[offsets[itemIndex]] = int32(userIndex)
			d.itemFeedback.values[offsets[itemIndex]] = d.userFeedback.values[j]
			offsets[itemIndex]++
		}
	}
	return d
}

// csr is a sparse matrix in compressed sparse row format.
type csr struct {
	indptr  []int
	indices []int32
	values  []float64
}

func (m *csr) rows() int {
	return max(len(m.indptr)-1, 0)
}

func (m *csr) row(i int32) ([]int32, []float64) {
	if i < 0 || int(i) >= m.rows() {
		return nil, nil
	}
	begin, end := m.indptr[i], m.indptr[i+1]
	return m.indices[begin:end], m.values[begin:end]
}

// Dataset is an immutable set of user-item interactions. It is safe for
// concurrent reads.
type Dataset struct {
	userDict     *FreqDict
	itemDict     *FreqDict
	userFeedback csr
	itemFeedback csr
}

func (d *Dataset) CountUsers() int {
	return d.userFeedback.rows()
}

func (d *Dataset) CountItems() int {
	return d.itemFeedback.rows()
}

// CountFeedback returns the number of distinct user-item pairs.
func (d *Dataset) CountFeedback() int {
	return len(d.userFeedback.indices)
}

func (d *Dataset) UserDict() *FreqDict {
	return d.userDict
}

func (d *Dataset) ItemDict() *FreqDict {
	return d.itemDict
}

// Users returns the universe of users, whose profiles are made of items.
func (d *Dataset) Users() *Profiles {
	return &Profiles{
		name:      "users",
		dict:      d.userDict,
		profiles:  &d.userFeedback,
		consumers: &d.itemFeedback,
	}
}

// Items returns the universe of items, whose profiles are made of users.
func (d *Dataset) Items() *Profiles {
	return &Profiles{
		name:      "items",
		dict:      d.itemDict,
		profiles:  &d.itemFeedback,
		consumers: &d.userFeedback,
	}
}

// Profiles is one universe of a Dataset. Out of range indices have empty
// profiles.
type Profiles struct {
	name      string
	dict      *FreqDict
	profiles  *csr
	consumers *csr
}

func (p *Profiles) Name() string {
	return p.name
}

func (p *Profiles) Dict() *FreqDict {
	return p.dict
}

func (p *Profiles) Count() int {
	return p.profiles.rows()
}

func (p *Profiles) Universe() int {
	return p.consumers.rows()
}

func (p *Profiles) Profile(idx int32) iter.Seq2[int32, float64] {
	return pairs(p.profiles.row(idx))
}

func (p *Profiles) Consumers(element int32) iter.Seq2[int32, float64] {
	return pairs(p.consumers.row(element))
}

func (p *Profiles) Size(idx int32) int {
	indices, _ := p.profiles.row(idx)
	return len(indices)
}

func pairs(indices []int32, values []float64) iter.Seq2[int32, float64] {
	return func(yield func(int32, float64) bool) {
		for i, idx := range indices {
			if !yield(idx, values[i]) {
				return
			}
		}
	}
}
