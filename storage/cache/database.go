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
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorse-io/neighbors/storage"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// UserNeighbors is sorted set of neighbors for each user.
	//  Global user neighbors      - user_neighbors/{user_id}
	UserNeighbors = "user_neighbors"

	// ItemNeighbors is sorted set of neighbors for each item.
	//  Global item neighbors      - item_neighbors/{item_id}
	ItemNeighbors = "item_neighbors"
)

const maxRetryTime = 10 * time.Second

// Key creates key for cache. Empty field will be ignored.
func Key(keys ...string) string {
	if len(keys) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(keys[0])
	for _, key := range keys[1:] {
		if key != "" {
			builder.WriteRune('/')
			builder.WriteString(key)
		}
	}
	return builder.String()
}

// Score is a neighbor id with its similarity.
type Score struct {
	Id    string
	Score float64
}

type Database interface {
	Close() error
	Purge() error
	// SetScores replaces the sorted scores of an entity.
	SetScores(ctx context.Context, collection, id string, scores []Score) error
	// GetScores returns at most n scores in descending order. Negative n returns all.
	GetScores(ctx context.Context, collection, id string, n int) ([]Score, error)
}

// Open a connection to a database.
func Open(path, tablePrefix string) (Database, error) {
	if path == "" {
		return NoDatabase{}, nil
	} else if strings.HasPrefix(path, storage.RedisPrefix) || strings.HasPrefix(path, storage.RedissPrefix) {
		opt, err := redis.ParseURL(path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		database := new(Redis)
		database.client = redis.NewClient(opt)
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		return database, nil
	}
	return nil, errors.NotSupportedf("cache store %s", path)
}

// retry runs a write until it succeeds, the context is done or maxRetryTime elapses.
func retry(ctx context.Context, operation func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(maxRetryTime))
	return err
}
