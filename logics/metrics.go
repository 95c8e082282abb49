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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NeighborsEntitiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gorse",
		Subsystem: "neighbors",
		Name:      "entities_total",
		Help:      "Number of entities whose neighbors have been computed.",
	}, []string{"universe"})
	NeighborsCandidates = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gorse",
		Subsystem: "neighbors",
		Name:      "candidates",
		Help:      "Number of candidates sharing at least one element with an entity.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"universe"})
	NeighborsComputeSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gorse",
		Subsystem: "neighbors",
		Name:      "compute_seconds",
		Help:      "Time spent on the last computation of neighbors.",
	}, []string{"universe"})
	NeighborsStoreSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gorse",
		Subsystem: "neighbors",
		Name:      "store_seconds",
		Help:      "Time spent on the last update of neighbor lists in the cache store.",
	}, []string{"universe"})
)
