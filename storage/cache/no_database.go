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

import "context"

// NoDatabase discards every write. It is used when no cache store is configured.
type NoDatabase struct{}

func (NoDatabase) Close() error {
	return nil
}

func (NoDatabase) Purge() error {
	return nil
}

func (NoDatabase) SetScores(_ context.Context, _, _ string, _ []Score) error {
	return nil
}

func (NoDatabase) GetScores(_ context.Context, _, _ string, _ int) ([]Score, error) {
	return nil, nil
}
