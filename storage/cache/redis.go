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

	"github.com/gorse-io/neighbors/storage"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// Redis cache storage.
type Redis struct {
	storage.TablePrefix
	client *redis.Client
}

// Close redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Purge removes all keys of the selected database.
func (r *Redis) Purge() error {
	return errors.Trace(r.client.FlushDB(context.Background()).Err())
}

// SetScores deletes previous scores and adds new scores in a transaction.
func (r *Redis) SetScores(ctx context.Context, collection, id string, scores []Score) error {
	key := r.Key(Key(collection, id))
	members := lo.Map(scores, func(score Score, _ int) redis.Z {
		return redis.Z{Member: score.Id, Score: score.Score}
	})
	return errors.Trace(retry(ctx, func() error {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(members) > 0 {
				pipe.ZAdd(ctx, key, members...)
			}
			return nil
		})
		return err
	}))
}

// GetScores returns scores from a sorted set in descending order.
func (r *Redis) GetScores(ctx context.Context, collection, id string, n int) ([]Score, error) {
	if n == 0 {
		return nil, nil
	}
	stop := int64(n - 1)
	if n < 0 {
		stop = -1
	}
	members, err := r.client.ZRevRangeWithScores(ctx, r.Key(Key(collection, id)), 0, stop).Result()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return lo.Map(members, func(member redis.Z, _ int) Score {
		return Score{Id: member.Member.(string), Score: member.Score}
	}), nil
}
