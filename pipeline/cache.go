// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// resultCache retains finished batch results by file identity, evicting
// least recently used entries beyond its size. The nil cache is the
// disabled cache: it stores nothing and never hits.
type resultCache struct {
	entries *lru.Cache[string, *evaluation.BatchResult]
}

// newResultCache returns a cache holding up to size results, or nil when
// size disables caching.
func newResultCache(size int) (*resultCache, error) {
	if size == 0 {
		return nil, nil
	}
	if size < 0 {
		return nil, fmt.Errorf("pipeline: cache size must not be negative, got %d", size)
	}
	entries, err := lru.New[string, *evaluation.BatchResult](size)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create result cache: %w", err)
	}
	return &resultCache{entries: entries}, nil
}

func (c *resultCache) get(fileID string) (*evaluation.BatchResult, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(fileID)
}

func (c *resultCache) add(fileID string, result *evaluation.BatchResult) {
	if c == nil {
		return
	}
	c.entries.Add(fileID, result)
}
