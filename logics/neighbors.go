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

	"github.com/gorse-io/neighbors/base/log"
	"github.com/gorse-io/neighbors/common/heap"
	"github.com/gorse-io/neighbors/common/parallel"
	"github.com/gorse-io/neighbors/similarity"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type NeighborsConfig struct {
	Similarity  string
	CosineAlpha float64
	// NumNeighbors is the max length of a neighbor list. 0 keeps all neighbors.
	NumNeighbors int
	// MinScore drops neighbors with a score not greater than it.
	MinScore float64
	Jobs     int
	Progress bool
}

// Score is a neighbor of an entity.
type Score struct {
	Index int32
	Score float64
}

// Neighbors computes the neighbor list of every entity in profiles. fn is
// called once per entity, concurrently from up to cfg.Jobs goroutines, with
// scores in descending order. Ties keep ascending index order.
func Neighbors(ctx context.Context, name string, profiles similarity.Profiles, cfg NeighborsConfig,
	fn func(idx int32, scores []Score) error) error {
	measure, err := similarity.NewMeasure(cfg.Similarity, similarity.Options{
		CosineAlpha: cfg.CosineAlpha,
		Universe:    profiles.Universe(),
	})
	if err != nil {
		return errors.Trace(err)
	}
	sim := similarity.NewSetSimilarity(profiles, measure)

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.Default(int64(profiles.Count()), name+" neighbors")
	}
	var (
		start      = time.Now()
		completed  = atomic.NewInt64(0)
		candidates = atomic.NewInt64(0)
		kept       = atomic.NewInt64(0)
	)
	err = parallel.Parallel(ctx, profiles.Count(), max(cfg.Jobs, 1), func(_, jobId int) error {
		idx := int32(jobId)
		seq, err := sim.NeighborsContext(ctx, idx)
		if err != nil {
			return errors.Trace(err)
		}
		filter := heap.NewTopKFilter[int32, float64](cfg.NumNeighbors)
		numCandidates := 0
		for b, score := range seq {
			numCandidates++
			if score > cfg.MinScore {
				filter.Push(b, score)
			}
		}
		scores := lo.Map(filter.PopAll(), func(e heap.Elem[int32, float64], _ int) Score {
			return Score{Index: e.Value, Score: e.Weight}
		})
		if err = fn(idx, scores); err != nil {
			return errors.Trace(err)
		}
		// progress
		NeighborsCandidates.WithLabelValues(name).Observe(float64(numCandidates))
		NeighborsEntitiesTotal.WithLabelValues(name).Inc()
		candidates.Add(int64(numCandidates))
		kept.Add(int64(len(scores)))
		if n := completed.Inc(); n%10000 == 0 {
			log.Logger().Debug("computing neighbors",
				zap.String("universe", name),
				zap.Int64("completed", n),
				zap.Int("total", profiles.Count()))
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		return nil
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return errors.Annotatef(err, "compute %s neighbors", name)
	}
	elapsed := time.Since(start)
	NeighborsComputeSeconds.WithLabelValues(name).Set(elapsed.Seconds())
	log.Logger().Info("complete computing neighbors",
		zap.String("universe", name),
		zap.String("similarity", measure.Name()),
		zap.Int64("entities", completed.Load()),
		zap.Int64("candidates", candidates.Load()),
		zap.Int64("neighbors", kept.Load()),
		zap.Duration("elapsed", elapsed))
	return nil
}
