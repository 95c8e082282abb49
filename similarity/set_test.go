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
	"fmt"
	"iter"
	"math/rand"
	"sync"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// mockProfiles stores profiles as sorted slices with a reverse index.
type mockProfiles struct {
	profiles  [][]int32
	consumers [][]int32
}

func newMockProfiles(universe int, profiles ...[]int32) *mockProfiles {
	m := &mockProfiles{
		profiles:  profiles,
		consumers: make([][]int32, universe),
	}
	for idx, profile := range profiles {
		for _, element := range profile {
			m.consumers[element] = append(m.consumers[element], int32(idx))
		}
	}
	return m
}

func (m *mockProfiles) Count() int {
	return len(m.profiles)
}

func (m *mockProfiles) Universe() int {
	return len(m.consumers)
}

func (m *mockProfiles) Profile(idx int32) iter.Seq2[int32, float64] {
	return ones(m.profiles[idx])
}

func (m *mockProfiles) Consumers(element int32) iter.Seq2[int32, float64] {
	return ones(m.consumers[element])
}

func (m *mockProfiles) Size(idx int32) int {
	return len(m.profiles[idx])
}

func ones(indices []int32) iter.Seq2[int32, float64] {
	return func(yield func(int32, float64) bool) {
		for _, idx := range indices {
			if !yield(idx, 1) {
				return
			}
		}
	}
}

func collect(seq iter.Seq2[int32, float64], err error) map[int32]float64 {
	lo.Must0(err)
	result := make(map[int32]float64)
	for idx, score := range seq {
		if _, exist := result[idx]; exist {
			panic(fmt.Sprintf("duplicate neighbor %d", idx))
		}
		result[idx] = score
	}
	return result
}

type SetSimilarityTestSuite struct {
	suite.Suite
	profiles *mockProfiles
	sim      *SetSimilarity
}

func (suite *SetSimilarityTestSuite) SetupTest() {
	suite.profiles = newMockProfiles(13,
		[]int32{10, 11},
		[]int32{10},
		[]int32{11, 12},
		[]int32{},
	)
	suite.sim = NewSetSimilarity(suite.profiles, JaccardMeasure{})
}

func (suite *SetSimilarityTestSuite) TestNeighbors() {
	neighbors := collect(suite.sim.Neighbors(0))
	suite.Len(neighbors, 2)
	suite.Equal(1.0/2, neighbors[1])
	suite.Equal(1.0/3, neighbors[2])

	neighbors = collect(suite.sim.Neighbors(3))
	suite.Empty(neighbors)

	neighbors = collect(suite.sim.Neighbors(2))
	suite.Equal(map[int32]float64{0: 1.0 / 3}, neighbors)
}

func (suite *SetSimilarityTestSuite) TestNeighborsOrder() {
	seq, err := suite.sim.Neighbors(0)
	suite.NoError(err)
	var indices []int32
	for idx := range seq {
		indices = append(indices, idx)
	}
	suite.Equal([]int32{1, 2}, indices)
}

func (suite *SetSimilarityTestSuite) TestNeighborsSinglePass() {
	seq, err := suite.sim.Neighbors(0)
	suite.NoError(err)
	suite.Len(collect(seq, nil), 2)
	suite.Empty(collect(seq, nil))
}

func (suite *SetSimilarityTestSuite) TestNeighborsBreak() {
	seq, err := suite.sim.Neighbors(0)
	suite.NoError(err)
	for range seq {
		break
	}
	// the buffer returned to the pool must be clean
	suite.Equal(map[int32]float64{1: 0.5, 2: 1.0 / 3}, collect(suite.sim.Neighbors(0)))
	suite.Equal(map[int32]float64{0: 0.5}, collect(suite.sim.Neighbors(1)))
}

func (suite *SetSimilarityTestSuite) TestSimilarityTo() {
	scorer, err := suite.sim.SimilarityTo(0)
	suite.NoError(err)
	score, err := scorer(1)
	suite.NoError(err)
	suite.Equal(0.5, score)
	score, err = scorer(2)
	suite.NoError(err)
	suite.Equal(1.0/3, score)
	score, err = scorer(3)
	suite.NoError(err)
	suite.Zero(score)
	score, err = scorer(0)
	suite.NoError(err)
	suite.Equal(1.0, score)

	// empty profile
	scorer, err = suite.sim.SimilarityTo(3)
	suite.NoError(err)
	for b := int32(0); b < 4; b++ {
		score, err = scorer(b)
		suite.NoError(err)
		suite.Equal(JaccardMeasure{}.Sim(0, 0, suite.profiles.Size(b)), score)
	}
}

func (suite *SetSimilarityTestSuite) TestInvalidIndex() {
	_, err := suite.sim.Neighbors(4)
	suite.True(errors.Is(err, ErrInvalidIndex), err)
	suite.True(errors.Is(err, errors.NotValid), err)
	suite.Contains(err.Error(), "index 4 out of range [0, 4)")
	_, err = suite.sim.Neighbors(-1)
	suite.True(errors.Is(err, ErrInvalidIndex), err)
	_, err = suite.sim.SimilarityTo(100)
	suite.True(errors.Is(err, ErrInvalidIndex), err)
	scorer, err := suite.sim.SimilarityTo(0)
	suite.NoError(err)
	_, err = scorer(4)
	suite.True(errors.Is(err, ErrInvalidIndex), err)
	_, err = suite.sim.Intersection(0, 7)
	suite.True(errors.Is(err, ErrInvalidIndex), err)
	suite.True(errors.Is(err, errors.NotValid), err)
	suite.False(errors.Is(err, errors.NotFound), err)
}

func (suite *SetSimilarityTestSuite) TestIntersection() {
	c, err := suite.sim.Intersection(0, 2)
	suite.NoError(err)
	suite.Equal(1, c)
	c, err = suite.sim.Intersection(0, 0)
	suite.NoError(err)
	suite.Equal(2, c)
	c, err = suite.sim.Intersection(1, 2)
	suite.NoError(err)
	suite.Zero(c)
}

func (suite *SetSimilarityTestSuite) TestCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := suite.sim.NeighborsContext(ctx, 0)
	suite.True(errors.Is(err, context.Canceled), err)
	// empty profile never checks the context
	_, err = suite.sim.NeighborsContext(ctx, 3)
	suite.NoError(err)
	suite.Equal(map[int32]float64{1: 0.5, 2: 1.0 / 3}, collect(suite.sim.Neighbors(0)))
}

func TestSetSimilarity(t *testing.T) {
	suite.Run(t, new(SetSimilarityTestSuite))
}

func randomProfiles(rng *rand.Rand, n, universe, maxSize int) *mockProfiles {
	profiles := make([][]int32, n)
	for i := range profiles {
		size := rng.Intn(maxSize + 1)
		profiles[i] = lo.Uniq(lo.Times(size, func(int) int32 {
			return int32(rng.Intn(universe))
		}))
	}
	return newMockProfiles(universe, profiles...)
}

func bruteForceIntersection(a, b []int32) int {
	return mapset.NewSet(a...).Intersect(mapset.NewSet(b...)).Cardinality()
}

func TestNeighborsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	profiles := randomProfiles(rng, 60, 40, 8)
	for _, name := range []string{Jaccard, Cosine, Dice, Overlap, LogLikelihood} {
		measure, err := NewMeasure(name, Options{CosineAlpha: 0.5, Universe: profiles.Universe()})
		assert.NoError(t, err)
		sim := NewSetSimilarity(profiles, measure)
		for a := int32(0); a < int32(profiles.Count()); a++ {
			neighbors := collect(sim.Neighbors(a))
			// self exclusion
			assert.NotContains(t, neighbors, a)
			scorer, err := sim.SimilarityTo(a)
			assert.NoError(t, err)
			for b := int32(0); b < int32(profiles.Count()); b++ {
				c := bruteForceIntersection(profiles.profiles[a], profiles.profiles[b])
				score, err := scorer(b)
				assert.NoError(t, err)
				if a == b {
					continue
				}
				if c > 0 {
					// completeness and consistency
					if assert.Contains(t, neighbors, b) {
						assert.Equal(t, score, neighbors[b])
					}
				} else {
					assert.NotContains(t, neighbors, b)
				}
			}
		}
	}
}

func TestNeighborsConcurrent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	profiles := randomProfiles(rng, 100, 50, 10)
	sim := NewSetSimilarity(profiles, CosineMeasure{Alpha: 0.5})
	expected := make([]map[int32]float64, profiles.Count())
	for a := range expected {
		expected[a] = collect(sim.Neighbors(int32(a)))
	}
	var wg sync.WaitGroup
	results := make([]map[int32]float64, profiles.Count())
	for a := range results {
		wg.Go(func() {
			seq, err := sim.Neighbors(int32(a))
			if err != nil {
				return
			}
			result := make(map[int32]float64)
			for idx, score := range seq {
				result[idx] = score
			}
			results[a] = result
		})
	}
	wg.Wait()
	assert.Equal(t, expected, results)
}
