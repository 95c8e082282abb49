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
	"math"

	"github.com/juju/errors"
)

const (
	Jaccard       = "jaccard"
	Cosine        = "cosine"
	Dice          = "dice"
	Overlap       = "overlap"
	LogLikelihood = "log_likelihood"
)

// Measure scores a pair of sets from the size of their intersection and
// the sizes of both sets.
type Measure interface {
	Name() string
	Sim(intersection, na, nb int) float64
}

type Options struct {
	// CosineAlpha is the exponent applied to the size of the first set by
	// the cosine measure. The second set gets 1 - CosineAlpha.
	CosineAlpha float64
	// Universe is the number of distinct elements sets are drawn from,
	// required by the log-likelihood measure.
	Universe int
}

// NewMeasure creates a measure by name.
func NewMeasure(name string, opts Options) (Measure, error) {
	switch name {
	case Jaccard:
		return JaccardMeasure{}, nil
	case Cosine:
		if opts.CosineAlpha < 0 || opts.CosineAlpha > 1 {
			return nil, errors.NotValidf("cosine alpha %v", opts.CosineAlpha)
		}
		return CosineMeasure{Alpha: opts.CosineAlpha}, nil
	case Dice:
		return DiceMeasure{}, nil
	case Overlap:
		return OverlapMeasure{}, nil
	case LogLikelihood:
		if opts.Universe < 0 {
			return nil, errors.NotValidf("universe size %d", opts.Universe)
		}
		return LogLikelihoodMeasure{Universe: opts.Universe}, nil
	}
	return nil, errors.NotSupportedf("similarity measure %q", name)
}

// sanitize clamps counts to 0 <= c <= min(na, nb).
func sanitize(c, na, nb int) (int, int, int) {
	na = max(na, 0)
	nb = max(nb, 0)
	c = min(max(c, 0), na, nb)
	return c, na, nb
}

// JaccardMeasure is |A∩B| / |A∪B|.
type JaccardMeasure struct{}

func (JaccardMeasure) Name() string {
	return Jaccard
}

func (JaccardMeasure) Sim(intersection, na, nb int) float64 {
	c, na, nb := sanitize(intersection, na, nb)
	union := na + nb - c
	if union == 0 {
		return 0
	}
	return float64(c) / float64(union)
}

// CosineMeasure is |A∩B| / (|A|^α |B|^(1-α)). With α = 0.5 it is the
// ordinary cosine similarity of binary vectors.
type CosineMeasure struct {
	Alpha float64
}

func (CosineMeasure) Name() string {
	return Cosine
}

func (m CosineMeasure) Sim(intersection, na, nb int) float64 {
	c, na, nb := sanitize(intersection, na, nb)
	if c == 0 {
		return 0
	}
	if m.Alpha == 0.5 {
		return float64(c) / math.Sqrt(float64(na)*float64(nb))
	}
	return float64(c) / (math.Pow(float64(na), m.Alpha) * math.Pow(float64(nb), 1-m.Alpha))
}

// DiceMeasure is 2|A∩B| / (|A| + |B|).
type DiceMeasure struct{}

func (DiceMeasure) Name() string {
	return Dice
}

func (DiceMeasure) Sim(intersection, na, nb int) float64 {
	c, na, nb := sanitize(intersection, na, nb)
	if na+nb == 0 {
		return 0
	}
	return 2 * float64(c) / float64(na+nb)
}

// OverlapMeasure is |A∩B| / min(|A|, |B|).
type OverlapMeasure struct{}

func (OverlapMeasure) Name() string {
	return Overlap
}

func (OverlapMeasure) Sim(intersection, na, nb int) float64 {
	c, na, nb := sanitize(intersection, na, nb)
	if c == 0 {
		return 0
	}
	return float64(c) / float64(min(na, nb))
}

// LogLikelihoodMeasure scores the co-occurrence by Dunning's log-likelihood
// ratio on the 2x2 contingency table
//
//	| c      | na - c           |
//	| nb - c | N - na - nb + c  |
//
// mapped to [0, 1) as 1 - 1/(1+G²).
type LogLikelihoodMeasure struct {
	Universe int
}

func (LogLikelihoodMeasure) Name() string {
	return LogLikelihood
}

func (m LogLikelihoodMeasure) Sim(intersection, na, nb int) float64 {
	c, na, nb := sanitize(intersection, na, nb)
	if c == 0 {
		return 0
	}
	n := max(m.Universe, na+nb-c)
	k11 := float64(c)
	k12 := float64(na - c)
	k21 := float64(nb - c)
	k22 := float64(n - na - nb + c)
	llr := logLikelihoodRatio(k11, k12, k21, k22)
	return 1 - 1/(1+llr)
}

func logLikelihoodRatio(k11, k12, k21, k22 float64) float64 {
	rowEntropy := entropy(k11+k12, k21+k22)
	columnEntropy := entropy(k11+k21, k12+k22)
	matrixEntropy := entropy(k11, k12, k21, k22)
	if rowEntropy+columnEntropy < matrixEntropy {
		// round off error
		return 0
	}
	return 2 * (rowEntropy + columnEntropy - matrixEntropy)
}

// entropy is the unnormalized Shannon entropy of counts.
func entropy(elements ...float64) float64 {
	sum, result := 0.0, 0.0
	for _, x := range elements {
		result += xLogX(x)
		sum += x
	}
	return xLogX(sum) - result
}

func xLogX(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log(x)
}
