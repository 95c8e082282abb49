// Copyright 2022 gorse Project Authors
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

package heap

import (
	"container/heap"
	"sort"

	"golang.org/x/exp/constraints"
)

type Elem[T any, W constraints.Ordered] struct {
	Value  T
	Weight W
}

type entry[T any, W constraints.Ordered] struct {
	Elem[T, W]
	seq int
}

// _heap is a min-heap. Among equal weights, the later pushed element is smaller.
type _heap[T any, W constraints.Ordered] struct {
	elems []entry[T, W]
	seq   int
}

func (e *_heap[T, W]) Len() int {
	return len(e.elems)
}

func (e *_heap[T, W]) Less(i, j int) bool {
	if e.elems[i].Weight == e.elems[j].Weight {
		return e.elems[i].seq > e.elems[j].seq
	}
	return e.elems[i].Weight < e.elems[j].Weight
}

func (e *_heap[T, W]) Swap(i, j int) {
	e.elems[i], e.elems[j] = e.elems[j], e.elems[i]
}

func (e *_heap[T, W]) Push(x any) {
	e.elems = append(e.elems, x.(entry[T, W]))
}

func (e *_heap[T, W]) Pop() any {
	old := e.elems
	item := old[len(old)-1]
	e.elems = old[:len(old)-1]
	return item
}

// TopKFilter filters out top k items with maximum weights. If k is not
// positive, every item is kept. Ties are resolved in favor of earlier pushes.
type TopKFilter[T any, W constraints.Ordered] struct {
	_heap[T, W]
	k int
}

// NewTopKFilter creates a top k filter.
func NewTopKFilter[T any, W constraints.Ordered](k int) *TopKFilter[T, W] {
	return &TopKFilter[T, W]{k: k}
}

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = h.Count().
func (filter *TopKFilter[T, W]) Push(item T, weight W) {
	e := entry[T, W]{Elem: Elem[T, W]{item, weight}, seq: filter.seq}
	filter.seq++
	if filter.k <= 0 {
		filter.elems = append(filter.elems, e)
		return
	}
	heap.Push(&filter._heap, e)
	if filter.Len() > filter.k {
		heap.Pop(&filter._heap)
	}
}

// PopAll pops all items in the filter with decreasing order.
func (filter *TopKFilter[T, W]) PopAll() []Elem[T, W] {
	entries := filter.elems
	filter.elems = nil
	filter.seq = 0
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight == entries[j].Weight {
			return entries[i].seq < entries[j].seq
		}
		return entries[i].Weight > entries[j].Weight
	})
	elems := make([]Elem[T, W], len(entries))
	for i, e := range entries {
		elems[i] = e.Elem
	}
	return elems
}

// PopAllValues pops all values in the filter with decreasing order.
func (filter *TopKFilter[T, W]) PopAllValues() []T {
	elems := filter.PopAll()
	values := make([]T, len(elems))
	for i, elem := range elems {
		values[i] = elem.Value
	}
	return values
}
