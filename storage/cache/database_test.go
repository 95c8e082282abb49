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

package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type baseTestSuite struct {
	suite.Suite
	Database
}

func (suite *baseTestSuite) TearDownTest() {
	err := suite.Database.Purge()
	suite.NoError(err)
}

func (suite *baseTestSuite) TestScores() {
	ctx := context.Background()
	scores := []Score{{"1", 0.9}, {"2", 0.5}, {"3", 0.7}}
	err := suite.SetScores(ctx, UserNeighbors, "0", scores)
	suite.NoError(err)
	// get all
	result, err := suite.GetScores(ctx, UserNeighbors, "0", -1)
	suite.NoError(err)
	suite.Equal([]Score{{"1", 0.9}, {"3", 0.7}, {"2", 0.5}}, result)
	// get top 2
	result, err = suite.GetScores(ctx, UserNeighbors, "0", 2)
	suite.NoError(err)
	suite.Equal([]Score{{"1", 0.9}, {"3", 0.7}}, result)
	// other collection is untouched
	result, err = suite.GetScores(ctx, ItemNeighbors, "0", -1)
	suite.NoError(err)
	suite.Empty(result)
}

func (suite *baseTestSuite) TestOverwriteScores() {
	ctx := context.Background()
	err := suite.SetScores(ctx, ItemNeighbors, "a", []Score{{"b", 0.3}, {"c", 0.2}})
	suite.NoError(err)
	err = suite.SetScores(ctx, ItemNeighbors, "a", []Score{{"d", 0.1}})
	suite.NoError(err)
	result, err := suite.GetScores(ctx, ItemNeighbors, "a", -1)
	suite.NoError(err)
	suite.Equal([]Score{{"d", 0.1}}, result)
	// empty list clears previous scores
	err = suite.SetScores(ctx, ItemNeighbors, "a", nil)
	suite.NoError(err)
	result, err = suite.GetScores(ctx, ItemNeighbors, "a", -1)
	suite.NoError(err)
	suite.Empty(result)
}

func TestKey(t *testing.T) {
	assert.Empty(t, Key())
	assert.Equal(t, "user_neighbors/1", Key(UserNeighbors, "1"))
	assert.Equal(t, "item_neighbors", Key(ItemNeighbors, ""))
}

func TestOpen(t *testing.T) {
	db, err := Open("", "")
	assert.NoError(t, err)
	assert.IsType(t, NoDatabase{}, db)
	_, err = Open("mongodb://127.0.0.1:27017", "")
	assert.Error(t, err)
}
