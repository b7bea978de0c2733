// Copyright 2025 Zintix Labs
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

package catalog

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
)

// DefaultCacheSize 每個遊戲最多同時保留的盤面尺寸數
const DefaultCacheSize = 16

// CatalogEntry 單一盤面尺寸的 catalog 與對應的比對器，建立後唯讀，可在 goroutine 間共用。
type CatalogEntry struct {
	Size     spec.GridSize
	Patterns []pattern.Pattern
	Calc     *calc.PatternCalculator
}

// CacheStats 快取統計
type CacheStats struct {
	Entries       int    `json:"entries"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
}

// Cache 以 GridSize 為 key 的 pattern catalog 快取。
//
// 同一個 Cache 綁定一份 PatternSetting 與圖標表（即一個遊戲），
// 尺寸不變時重複使用同一份 catalog，只有尺寸改變時才會重新生成。
type Cache struct {
	mu      sync.Mutex // 序列化 miss 時的生成
	entries *lru.Cache[spec.GridSize, *CatalogEntry]
	gen     *pattern.Generator
	legacy  bool
	table   calc.SymbolTable

	hits          atomic.Uint64
	misses        atomic.Uint64
	invalidations atomic.Uint64
}

// NewCache 建立快取；capacity <= 0 時使用 DefaultCacheSize。
func NewCache(capacity int, ps spec.PatternSetting, table calc.SymbolTable) (*Cache, error) {
	if table == nil {
		return nil, errs.NewFatal("symbol table is nil")
	}
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	if err := ps.Init(); err != nil {
		return nil, err
	}
	entries, err := lru.New[spec.GridSize, *CatalogEntry](capacity)
	if err != nil {
		return nil, errs.Wrap(err, "new catalog lru")
	}
	return &Cache{
		entries: entries,
		gen:     pattern.NewGenerator(ps),
		legacy:  ps.Catalog == spec.CatalogLegacy,
		table:   table,
	}, nil
}

// Get 取得 size 的 catalog（共用唯讀），未命中時生成並放入快取。
func (c *Cache) Get(size spec.GridSize) ([]pattern.Pattern, error) {
	e, err := c.Entry(size)
	if err != nil {
		return nil, err
	}
	return e.Patterns, nil
}

// Entry 同 Get，另外回傳已建好的比對器。
func (c *Cache) Entry(size spec.GridSize) (*CatalogEntry, error) {
	if e, ok := c.entries.Get(size); ok {
		c.hits.Add(1)
		return e, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// 等鎖期間可能已被其他 goroutine 建好
	if e, ok := c.entries.Get(size); ok {
		c.hits.Add(1)
		return e, nil
	}
	c.misses.Add(1)

	ps, err := c.build(size)
	if err != nil {
		return nil, err
	}
	pc, err := calc.NewPatternCalculator(size, ps, c.table)
	if err != nil {
		return nil, err
	}
	e := &CatalogEntry{Size: size, Patterns: ps, Calc: pc}
	c.entries.Add(size, e)
	return e, nil
}

// Preview 取得 size 的 catalog 但不動快取：已快取時直接共用（不影響 LRU 順序、不計 hit），
// 否則臨時生成一份。給查詢用途，避免任意尺寸擠掉機台正在用的 catalog。
func (c *Cache) Preview(size spec.GridSize) ([]pattern.Pattern, error) {
	if e, ok := c.entries.Peek(size); ok {
		return e.Patterns, nil
	}
	return c.build(size)
}

// Contains 是否已快取 size（不影響 LRU 順序）
func (c *Cache) Contains(size spec.GridSize) bool {
	return c.entries.Contains(size)
}

// Invalidate 移除 size 的 catalog，回傳是否真的有移除。
func (c *Cache) Invalidate(size spec.GridSize) bool {
	ok := c.entries.Remove(size)
	if ok {
		c.invalidations.Add(1)
	}
	return ok
}

// Purge 清空快取
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len 目前快取的尺寸數
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Sizes 由舊到新列出已快取的尺寸
func (c *Cache) Sizes() []spec.GridSize {
	return c.entries.Keys()
}

func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:       c.entries.Len(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
	}
}

func (c *Cache) build(size spec.GridSize) ([]pattern.Pattern, error) {
	if !c.legacy {
		return c.gen.Generate(size)
	}
	if size != pattern.LegacySize {
		return nil, pattern.ErrInvalidGridSize.Withf("legacy catalog is only defined for %s, got %s", pattern.LegacySize, size)
	}
	return pattern.Legacy(), nil
}
