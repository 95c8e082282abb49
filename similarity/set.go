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

package similarity

import (
	"context"
	"iter"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"
)

// SetSimilarity scores entities by the overlap of their profiles seen as
// sets. Weights in profiles are ignored, only the presence of an element
// counts.
type SetSimilarity struct {
	profiles Profiles
	measure  Measure
	pool     sync.Pool
}

func NewSetSimilarity(profiles Profiles, measure Measure) *SetSimilarity {
	return &SetSimilarity{
		profiles: profiles,
		measure:  measure,
	}
}

func (s *SetSimilarity) Profiles() Profiles {
	return s.profiles
}

func (s *SetSimilarity) Measure() Measure {
	return s.measure
}

// SimilarityTo materializes the profile of a and returns a scorer of any
// entity against a. Each call of the scorer costs O(|profile(b)|). The
// scorer is safe for concurrent use.
func (s *SetSimilarity) SimilarityTo(a int32) (func(b int32) (float64, error), error) {
	if err := checkIndex(s.profiles, a); err != nil {
		return nil, errors.Trace(err)
	}
	set := s.materialize(a)
	na := int(set.GetCardinality())
	return func(b int32) (float64, error) {
		if err := checkIndex(s.profiles, b); err != nil {
			return 0, errors.Trace(err)
		}
		return s.measure.Sim(s.count(set, b), na, s.profiles.Size(b)), nil
	}, nil
}

// Intersection returns the number of elements shared by a and b.
func (s *SetSimilarity) Intersection(a, b int32) (int, error) {
	if err := checkIndex(s.profiles, a); err != nil {
		return 0, errors.Trace(err)
	}
	if err := checkIndex(s.profiles, b); err != nil {
		return 0, errors.Trace(err)
	}
	return s.count(s.materialize(a), b), nil
}

func (s *SetSimilarity) materialize(idx int32) *roaring.Bitmap {
	set := roaring.New()
	for element := range s.profiles.Profile(idx) {
		set.Add(uint32(element))
	}
	return set
}

func (s *SetSimilarity) count(set *roaring.Bitmap, idx int32) int {
	c := 0
	for element := range s.profiles.Profile(idx) {
		if set.Contains(uint32(element)) {
			c++
		}
	}
	return c
}

// Neighbors returns every entity sharing at least one element with a, paired
// with its score. a itself is never included. Candidates are emitted in
// ascending index order. The sequence can be consumed only once. A sequence
// dropped without iteration never returns its buffer to the pool; the buffer
// is then left to the garbage collector.
func (s *SetSimilarity) Neighbors(a int32) (iter.Seq2[int32, float64], error) {
	return s.NeighborsContext(context.Background(), a)
}

// NeighborsContext is Neighbors with cancellation checked between the
// elements of the profile of a.
func (s *SetSimilarity) NeighborsContext(ctx context.Context, a int32) (iter.Seq2[int32, float64], error) {
	if err := checkIndex(s.profiles, a); err != nil {
		return nil, errors.Trace(err)
	}
	acc := s.acquire()
	for element := range s.profiles.Profile(a) {
		if err := ctx.Err(); err != nil {
			s.release(acc)
			return nil, errors.Trace(err)
		}
		for consumer := range s.profiles.Consumers(element) {
			acc.counts[consumer]++
			acc.touched.Set(uint(consumer))
		}
	}
	// an entity is never its own neighbor
	acc.counts[a] = 0
	acc.touched.Clear(uint(a))

	na := s.profiles.Size(a)
	consumed := false
	return func(yield func(int32, float64) bool) {
		if consumed {
			return
		}
		consumed = true
		defer s.release(acc)
		for i, ok := acc.touched.NextSet(0); ok; i, ok = acc.touched.NextSet(i + 1) {
			b := int32(i)
			if !yield(b, s.measure.Sim(int(acc.counts[i]), na, s.profiles.Size(b))) {
				return
			}
		}
	}, nil
}

// accumulator counts co-occurrences for a single query. Only entries marked
// in touched are non-zero.
type accumulator struct {
	counts  []int32
	touched *bitset.BitSet
}

func (s *SetSimilarity) acquire() *accumulator {
	n := s.profiles.Count()
	if acc, ok := s.pool.Get().(*accumulator); ok && len(acc.counts) == n {
		return acc
	}
	return &accumulator{
		counts:  make([]int32, n),
		touched: bitset.New(uint(n)),
	}
}

func (s *SetSimilarity) release(acc *accumulator) {
	for i, ok := acc.touched.NextSet(0); ok; i, ok = acc.touched.NextSet(i + 1) {
		acc.counts[i] = 0
	}
	acc.touched.ClearAll()
	s.pool.Put(acc)
}
