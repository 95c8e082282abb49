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
	"fmt"
	"iter"

	"github.com/juju/errors"
)

// ErrInvalidIndex is returned when an entity index is outside the universe
// of the profiles.
const ErrInvalidIndex = errors.ConstError("invalid index")

// Profiles gives read access to the sparse profiles of one universe of
// entities (users or items). Implementations must be safe for concurrent
// reads.
type Profiles interface {
	// Count returns the number of entities. Valid indices are [0, Count()).
	Count() int
	// Universe returns the number of entities in the opposite universe, that
	// is the elements profiles are made of.
	Universe() int
	// Profile returns the (element, weight) pairs of an entity. Elements are
	// unique.
	Profile(idx int32) iter.Seq2[int32, float64]
	// Consumers returns the entities whose profile contains an element.
	Consumers(element int32) iter.Seq2[int32, float64]
	// Size returns the number of elements in the profile of an entity.
	Size(idx int32) int
}

func checkIndex(profiles Profiles, idx int32) error {
	if idx < 0 || int(idx) >= profiles.Count() {
		return errors.Trace(&invalidIndexError{idx: idx, count: profiles.Count()})
	}
	return nil
}

// invalidIndexError matches both ErrInvalidIndex and errors.NotValid.
type invalidIndexError struct {
	idx   int32
	count int
}

func (e *invalidIndexError) Error() string {
	return fmt.Sprintf("%v: index %d out of range [0, %d)", ErrInvalidIndex, e.idx, e.count)
}

func (e *invalidIndexError) Is(target error) bool {
	return target == ErrInvalidIndex || target == errors.NotValid
}
