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
	"bytes"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
)

const cfgA = `
game_name: Alpha
game_id: 7
grid: { rows: 3, cols: 3 }
symbol_setting:
  symbols:
    - { id: lemon, value: 10, weight: 1, multiplier: 1 }
    - { id: seven, value: 50, weight: 1, multiplier: 2 }
`

const cfgB = `{"game_name":"beta","game_id":8,"grid":{"rows":4,"cols":4},
"symbol_setting":{"symbols":[{"id":"lemon","value":10,"weight":1,"multiplier":1}]},
"pattern_setting":{"catalog":"dynamic"}}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"alpha.yaml": {Data: []byte(cfgA)},
		"beta.json":  {Data: []byte(cfgB)},
		"notes.txt":  {Data: []byte("ignored")},
	}
}

func TestRegistryRegisterAndLoad(t *testing.T) {
	reg, err := NewRegistry(testFS())
	if err != nil {
		t.Fatalf("new registry err: %v", err)
	}
	if got := reg.ConfigFiles(); len(got) != 2 || got[0] != "alpha.yaml" || got[1] != "beta.json" {
		t.Fatalf("unexpected config files: %v", got)
	}
	err = reg.Register(
		Entry{GID: 8, Name: "beta", ConfigName: "beta.json"},
		Entry{GID: 7, Name: " Alpha ", ConfigName: "alpha.yaml"},
	)
	if err != nil {
		t.Fatalf("register err: %v", err)
	}
	ids := reg.IDs()
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 8 {
		t.Fatalf("ids should be sorted, got %v", ids)
	}
	if _, ok := reg.GetByName("ALPHA"); !ok {
		t.Fatalf("name lookup should ignore case")
	}
	gs, err := reg.GameSettingByID(7)
	if err != nil {
		t.Fatalf("load alpha err: %v", err)
	}
	if gs.Grid != (spec.GridSize{Rows: 3, Cols: 3}) || gs.SymbolsMultiplier != 1 {
		t.Fatalf("unexpected setting: %+v", gs)
	}
	gs, err = reg.GameSettingByName("beta")
	if err != nil {
		t.Fatalf("load beta err: %v", err)
	}
	if gs.Grid.Rows != 4 {
		t.Fatalf("unexpected beta grid %v", gs.Grid)
	}
	if _, err := reg.GameSettingByID(99); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg, _ := NewRegistry(testFS())
	err := reg.Register(
		Entry{GID: 1, Name: "a", ConfigName: "alpha.yaml"},
		Entry{GID: 1, Name: "b", ConfigName: "beta.json"},
	)
	if !errors.Is(err, ErrDupID) {
		t.Fatalf("expected duplicate id, got %v", err)
	}
	if len(reg.IDs()) != 0 {
		t.Fatalf("failed register must not write partially")
	}
	if err := reg.Register(Entry{GID: 1, Name: "a", ConfigName: "alpha.yaml"}); err != nil {
		t.Fatalf("register err: %v", err)
	}
	if err := reg.Register(Entry{GID: 2, Name: "A", ConfigName: "beta.json"}); !errors.Is(err, ErrDupName) {
		t.Fatalf("expected duplicate name, got %v", err)
	}
	if err := reg.Register(Entry{GID: 3, Name: "c", ConfigName: "missing.yaml"}); err == nil {
		t.Fatalf("expected missing config error")
	}
	reg.Freeze()
	if err := reg.Register(Entry{GID: 4, Name: "d", ConfigName: "beta.json"}); err == nil {
		t.Fatalf("expected error after freeze")
	}
}

func TestRegistryRejectsNestedFS(t *testing.T) {
	fsys := fstest.MapFS{"sub/game.yaml": {Data: []byte(cfgA)}}
	if _, err := NewRegistry(fsys); err == nil {
		t.Fatalf("expected error for nested config directory")
	}
	if _, err := NewRegistry(); err == nil {
		t.Fatalf("expected error for no fs")
	}
	if _, err := NewRegistry(testFS(), fstest.MapFS{"alpha.yaml": {Data: []byte(cfgA)}}); err == nil {
		t.Fatalf("expected error for duplicate config across fs")
	}
}

func newCache(t *testing.T, ps spec.PatternSetting) *Cache {
	t.Helper()
	c, err := NewCache(4, ps, spec.DefaultSymbols())
	if err != nil {
		t.Fatalf("new cache err: %v", err)
	}
	return c
}

func TestCacheReuse(t *testing.T) {
	c := newCache(t, spec.PatternSetting{})
	size := spec.GridSize{Rows: 3, Cols: 3}
	a, err := c.Get(size)
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	b, _ := c.Get(size)
	if len(a) != 17 || &a[0] != &b[0] {
		t.Fatalf("second get should return the cached catalog")
	}
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Entries != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestCacheResizeInvalidates(t *testing.T) {
	c := newCache(t, spec.PatternSetting{})
	small := spec.GridSize{Rows: 3, Cols: 3}
	big := spec.GridSize{Rows: 4, Cols: 4}
	p3, err := c.Get(small)
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	if !c.Invalidate(small) {
		t.Fatalf("expected 3x3 to be removed")
	}
	if c.Contains(small) {
		t.Fatalf("3x3 catalog should be gone")
	}
	p4, err := c.Get(big)
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	count := func(ps []pattern.Pattern) map[pattern.Type]int {
		m := map[pattern.Type]int{}
		for _, p := range ps {
			m[p.Type]++
		}
		return m
	}
	c3, c4 := count(p3), count(p4)
	for _, typ := range pattern.Types {
		if c4[typ] <= c3[typ] {
			t.Fatalf("type %s: 4x4 has %d, 3x3 has %d", typ, c4[typ], c3[typ])
		}
	}
	if c.Invalidate(small) {
		t.Fatalf("second invalidate should report nothing removed")
	}
	if st := c.Stats(); st.Invalidations != 1 || st.Entries != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("purge should empty the cache")
	}
}

func TestCacheLegacy(t *testing.T) {
	c := newCache(t, spec.PatternSetting{Catalog: spec.CatalogLegacy})
	ps, err := c.Get(pattern.LegacySize)
	if err != nil || len(ps) != 8 {
		t.Fatalf("expected 8 legacy patterns, got %d %v", len(ps), err)
	}
	if _, err := c.Get(spec.GridSize{Rows: 4, Cols: 4}); !errors.Is(err, spec.ErrInvalidGridSize) {
		t.Fatalf("expected invalid grid size for legacy 4x4, got %v", err)
	}
}

func TestCacheInvalidSize(t *testing.T) {
	c := newCache(t, spec.PatternSetting{})
	if _, err := c.Get(spec.GridSize{Rows: 0, Cols: 3}); !errors.Is(err, spec.ErrInvalidGridSize) {
		t.Fatalf("expected invalid grid size, got %v", err)
	}
	over := spec.GridSize{Rows: spec.MaxGridDim + 1, Cols: 3}
	if _, err := c.Get(over); !errors.Is(err, spec.ErrInvalidGridSize) {
		t.Fatalf("expected invalid grid size for %s, got %v", over, err)
	}
	if c.Len() != 0 {
		t.Fatalf("failed generation must not be cached")
	}
}

func TestCachePreview(t *testing.T) {
	c := newCache(t, spec.PatternSetting{})
	small := spec.GridSize{Rows: 3, Cols: 3}
	cached, err := c.Get(small)
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	before := c.Stats()

	got, err := c.Preview(small)
	if err != nil || &got[0] != &cached[0] {
		t.Fatalf("preview of a cached size should share the catalog, err=%v", err)
	}
	big := spec.GridSize{Rows: 6, Cols: 6}
	ps, err := c.Preview(big)
	if err != nil || len(ps) == 0 {
		t.Fatalf("preview 6x6: %d patterns, err=%v", len(ps), err)
	}
	if c.Contains(big) || c.Len() != 1 {
		t.Fatalf("preview must not insert into the cache")
	}
	if st := c.Stats(); st != before {
		t.Fatalf("preview must not touch stats: %+v -> %+v", before, st)
	}

	legacy := newCache(t, spec.PatternSetting{Catalog: spec.CatalogLegacy})
	if _, err := legacy.Preview(spec.GridSize{Rows: 4, Cols: 4}); !errors.Is(err, spec.ErrInvalidGridSize) {
		t.Fatalf("legacy preview 4x4 should fail, got %v", err)
	}
}

func TestCacheConcurrentGet(t *testing.T) {
	c := newCache(t, spec.PatternSetting{})
	size := spec.GridSize{Rows: 5, Cols: 5}
	var wg sync.WaitGroup
	res := make([]*CatalogEntry, 16)
	for i := range res {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := c.Entry(size)
			if err != nil {
				t.Errorf("entry err: %v", err)
				return
			}
			res[i] = e
		}(i)
	}
	wg.Wait()
	for _, e := range res {
		if e != res[0] {
			t.Fatalf("all goroutines should share one entry")
		}
	}
	if st := c.Stats(); st.Misses != 1 {
		t.Fatalf("expected exactly one generation, got %d misses", st.Misses)
	}
}

func TestExportImport(t *testing.T) {
	size := spec.GridSize{Rows: 4, Cols: 5}
	ps, err := pattern.Generate(size)
	if err != nil {
		t.Fatalf("generate err=%v", err)
	}

	var buf bytes.Buffer
	if err := Export(&buf, "wide", size, ps); err != nil {
		t.Fatalf("export err=%v", err)
	}
	hdr, got, err := Import(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import err=%v", err)
	}
	if hdr.Game != "wide" || hdr.Size != size || hdr.Count != len(ps) {
		t.Fatalf("unexpected header: %+v", hdr)
	}
	if hdr.Summary.Total != len(ps) {
		t.Fatalf("summary total=%d want %d", hdr.Summary.Total, len(ps))
	}
	if len(got) != len(ps) {
		t.Fatalf("patterns=%d want %d", len(got), len(ps))
	}
	for i := range ps {
		if got[i].Key() != ps[i].Key() || got[i].Type != ps[i].Type || got[i].Name != ps[i].Name {
			t.Fatalf("pattern %d mismatch: %+v vs %+v", i, got[i], ps[i])
		}
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	if _, _, err := Import(bytes.NewReader([]byte("not zstd"))); err == nil {
		t.Fatalf("expected error for garbage input")
	}

	size := spec.GridSize{Rows: 3, Cols: 3}
	ps, _ := pattern.Generate(size)
	var buf bytes.Buffer
	if err := Export(&buf, "", size, ps[:2]); err != nil {
		t.Fatalf("export err=%v", err)
	}
	// 竄改 header 的筆數
	var tampered bytes.Buffer
	zw, _ := zstd.NewWriter(&tampered)
	_ = writeFrame(zw, ExportHeader{Version: exportVersion, Size: size, Count: 5})
	_ = writeFrame(zw, ps[0])
	_ = zw.Close()
	if _, _, err := Import(&tampered); err == nil {
		t.Fatalf("expected truncated error")
	}
}
