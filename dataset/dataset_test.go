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
	"strings"
	"testing"

	"github.com/gorse-io/neighbors/similarity"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

var _ similarity.Profiles = (*Profiles)(nil)

func collect(seq iter.Seq2[int32, float64]) ([]int32, []float64) {
	var indices []int32
	var values []float64
	for idx, value := range seq {
		indices = append(indices, idx)
		values = append(values, value)
	}
	return indices, values
}

func newTestDataset() *Dataset {
	builder := NewBuilder()
	builder.AddFeedback("0", "10", 1)
	builder.AddFeedback("0", "11", 1)
	builder.AddFeedback("1", "10", 1)
	builder.AddFeedback("2", "12", 1)
	builder.AddFeedback("2", "11", 1)
	builder.AddUser("3")
	return builder.Build()
}

func TestDataset(t *testing.T) {
	d := newTestDataset()
	assert.Equal(t, 4, d.CountUsers())
	assert.Equal(t, 3, d.CountItems())
	assert.Equal(t, 5, d.CountFeedback())

	users := d.Users()
	assert.Equal(t, "users", users.Name())
	assert.Equal(t, 4, users.Count())
	assert.Equal(t, 3, users.Universe())
	indices, values := collect(users.Profile(0))
	assert.Equal(t, []int32{0, 1}, indices)
	assert.Equal(t, []float64{1, 1}, values)
	// profiles are sorted by index
	indices, _ = collect(users.Profile(2))
	assert.Equal(t, []int32{1, 2}, indices)
	assert.Equal(t, 2, users.Size(2))
	assert.Zero(t, users.Size(3))
	indices, _ = collect(users.Profile(3))
	assert.Empty(t, indices)
	indices, _ = collect(users.Consumers(0))
	assert.Equal(t, []int32{0, 1}, indices)

	items := d.Items()
	assert.Equal(t, "items", items.Name())
	assert.Equal(t, 3, items.Count())
	assert.Equal(t, 4, items.Universe())
	indices, _ = collect(items.Profile(1))
	assert.Equal(t, []int32{0, 2}, indices)
	indices, _ = collect(items.Consumers(2))
	assert.Equal(t, []int32{1, 2}, indices)

	// out of range
	indices, _ = collect(users.Profile(4))
	assert.Empty(t, indices)
	assert.Zero(t, users.Size(-1))
}

func TestBuilderMergeDuplicates(t *testing.T) {
	builder := NewBuilder()
	builder.AddFeedback("a", "x", 1)
	builder.AddFeedback("a", "y", 2)
	builder.AddFeedback("a", "x", 3)
	builder.AddItem("z")
	d := builder.Build()
	assert.Equal(t, 2, d.CountFeedback())
	assert.Equal(t, 3, d.CountItems())
	indices, values := collect(d.Users().Profile(0))
	assert.Equal(t, []int32{0, 1}, indices)
	assert.Equal(t, []float64{4, 2}, values)
	// reverse index keeps merged weights
	indices, values = collect(d.Items().Profile(0))
	assert.Equal(t, []int32{0}, indices)
	assert.Equal(t, []float64{4}, values)
	assert.Zero(t, d.Items().Size(2))
	// raw frequencies
	assert.Equal(t, 3, d.UserDict().Freq(0))
	assert.Equal(t, 2, d.ItemDict().Freq(0))
}

func TestLoadCSV(t *testing.T) {
	d, err := LoadCSV(strings.NewReader("user,item,weight\n0,10\n0,11,2.5\n1,10,\n"), ',', true)
	assert.NoError(t, err)
	assert.Equal(t, 2, d.CountUsers())
	assert.Equal(t, 2, d.CountItems())
	_, values := collect(d.Users().Profile(0))
	assert.Equal(t, []float64{1, 2.5}, values)
	idx, ok := d.ItemDict().Index("11")
	assert.True(t, ok)
	assert.Equal(t, int32(1), idx)

	d, err = LoadCSV(strings.NewReader("a\tb\n"), '\t', false)
	assert.NoError(t, err)
	assert.Equal(t, 1, d.CountFeedback())

	_, err = LoadCSV(strings.NewReader("0\n"), ',', false)
	assert.True(t, errors.Is(err, errors.NotValid), err)
	_, err = LoadCSV(strings.NewReader("0,,1\n"), ',', false)
	assert.True(t, errors.Is(err, errors.NotValid), err)
	_, err = LoadCSV(strings.NewReader("0,1,abc\n"), ',', false)
	assert.Error(t, err)
}

func TestDatasetNeighbors(t *testing.T) {
	d := newTestDataset()
	sim := similarity.NewSetSimilarity(d.Users(), similarity.JaccardMeasure{})
	seq, err := sim.Neighbors(0)
	assert.NoError(t, err)
	neighbors := make(map[int32]float64)
	for idx, score := range seq {
		neighbors[idx] = score
	}
	assert.Equal(t, map[int32]float64{1: 1.0 / 2, 2: 1.0 / 3}, neighbors)

	seq, err = sim.Neighbors(3)
	assert.NoError(t, err)
	indices, _ := collect(seq)
	assert.Empty(t, indices)

	scorer, err := sim.SimilarityTo(0)
	assert.NoError(t, err)
	score, err := scorer(3)
	assert.NoError(t, err)
	assert.Zero(t, score)

	_, err = sim.Neighbors(4)
	assert.True(t, errors.Is(err, similarity.ErrInvalidIndex), err)

	// item universe
	sim = similarity.NewSetSimilarity(d.Items(), similarity.JaccardMeasure{})
	seq, err = sim.Neighbors(0)
	assert.NoError(t, err)
	neighbors = make(map[int32]float64)
	for idx, score := range seq {
		neighbors[idx] = score
	}
	assert.Equal(t, map[int32]float64{1: 1.0 / 3}, neighbors)
}
