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

package logics

import (
	"context"
	"time"

	"github.com/gorse-io/neighbors/dataset"
	"github.com/gorse-io/neighbors/storage/cache"
	"github.com/juju/errors"
)

// UpdateNeighbors computes neighbors of a universe and replaces the neighbor
// lists in the cache store. Entities without neighbors get empty lists.
func UpdateNeighbors(ctx context.Context, profiles *dataset.Profiles, collection string, cacheStore cache.Database, cfg NeighborsConfig) error {
	dict := profiles.Dict()
	start := time.Now()
	err := Neighbors(ctx, profiles.Name(), profiles, cfg, func(idx int32, scores []Score) error {
		id, ok := dict.String(idx)
		if !ok {
			return errors.NotFoundf("%s index %d", profiles.Name(), idx)
		}
		cached := make([]cache.Score, 0, len(scores))
		for _, score := range scores {
			neighborId, ok := dict.String(score.Index)
			if !ok {
				return errors.NotFoundf("%s index %d", profiles.Name(), score.Index)
			}
			cached = append(cached, cache.Score{Id: neighborId, Score: score.Score})
		}
		return errors.Trace(cacheStore.SetScores(ctx, collection, id, cached))
	})
	if err != nil {
		return errors.Trace(err)
	}
	NeighborsStoreSeconds.WithLabelValues(profiles.Name()).Set(time.Since(start).Seconds())
	return nil
}
