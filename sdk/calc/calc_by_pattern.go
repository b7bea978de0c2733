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

// Package calc 負責盤面比對與派彩。
//
// FindMatches 是純函式版本；PatternCalculator 則在建立時把 catalog 攤平成一維索引，
// 適合同一尺寸下大量重複呼叫（模擬、伺服器）。兩者結果完全相同。
package calc

import (
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
)

// SymbolTable 圖標表，*spec.SymbolSetting 即滿足此介面。
type SymbolTable interface {
	Lookup(id string) (spec.SymbolDef, bool)
	Has(id string) bool
}

// Match 一筆成立的 pattern。
//
// Positions 與 Pattern.Positions 相同（共用底層陣列，唯讀），且這些格子都是 Symbol。
type Match struct {
	Pattern   pattern.Pattern `json:"pattern"`
	Symbol    string          `json:"symbol"`
	Positions []grid.Pos      `json:"positions"`
	Payout    float64         `json:"payout"`
}

// MatchPayout 單筆派彩 = 基礎分 x pattern 倍率 x 圖標倍率
func MatchPayout(def spec.SymbolDef, p pattern.Pattern) float64 {
	return def.Value * p.BaseMultiplier * def.Multiplier
}

// FindMatches 依 catalog 順序比對盤面。
//
// 每個 pattern 以第一格的圖標為基準，所有格子都相同才算成立，沒有部分給分。
// 盤面尺寸與 size 不符或含未知圖標時回傳 grid.ErrInvalidGrid；空 catalog 回傳空結果。
func FindMatches(g grid.Grid, size spec.GridSize, catalog []pattern.Pattern, table SymbolTable) ([]Match, error) {
	if table == nil {
		return nil, errs.NewFatal("symbol table is nil")
	}
	if err := g.Validate(size, table); err != nil {
		return nil, err
	}
	var out []Match
	for _, p := range catalog {
		if len(p.Positions) == 0 {
			continue
		}
		first := p.Positions[0]
		if !size.Contains(first.Row, first.Col) {
			return nil, grid.ErrInvalidGrid.Withf("pattern %s is outside %s", p.Name, size)
		}
		sym := g[first.Row][first.Col]
		hit := true
		for _, q := range p.Positions[1:] {
			if !size.Contains(q.Row, q.Col) {
				return nil, grid.ErrInvalidGrid.Withf("pattern %s is outside %s", p.Name, size)
			}
			if g[q.Row][q.Col] != sym {
				hit = false
				break
			}
		}
		if !hit {
			continue
		}
		def, _ := table.Lookup(sym)
		out = append(out, Match{
			Pattern:   p,
			Symbol:    sym,
			Positions: p.Positions,
			Payout:    MatchPayout(def, p),
		})
	}
	return out, nil
}

// PatternCalculator 固定尺寸與 catalog 的比對器。
//
// 建立時檢查 catalog 邊界並攤平座標，Calc 時只做一維索引比較。
// 本身唯讀，可在多個 goroutine 間共用。
type PatternCalculator struct {
	Size    spec.GridSize
	Catalog []pattern.Pattern
	table   SymbolTable

	flat  []int // 所有 pattern 攤平後的一維索引 (r*cols+c)
	index []int // 第 i 個 pattern 在 flat 中的起點，長度為 len(Catalog)+1
}

// NewPatternCalculator 建立比對器；catalog 中任何超出 size 的座標皆視為設定錯誤。
func NewPatternCalculator(size spec.GridSize, catalog []pattern.Pattern, table SymbolTable) (*PatternCalculator, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errs.NewFatal("symbol table is nil")
	}
	pc := &PatternCalculator{
		Size:    size,
		Catalog: catalog,
		table:   table,
		index:   make([]int, 0, len(catalog)+1),
	}
	for _, p := range catalog {
		pc.index = append(pc.index, len(pc.flat))
		for _, q := range p.Positions {
			if !size.Contains(q.Row, q.Col) {
				return nil, errs.Fatalf("pattern %s has position (%d,%d) outside %s", p.Name, q.Row, q.Col, size)
			}
			pc.flat = append(pc.flat, q.Row*size.Cols+q.Col)
		}
	}
	pc.index = append(pc.index, len(pc.flat))
	return pc, nil
}

// Calc 比對盤面，結果與 FindMatches 相同。
func (pc *PatternCalculator) Calc(g grid.Grid) ([]Match, error) {
	if err := g.Validate(pc.Size, pc.table); err != nil {
		return nil, err
	}
	cells := make([]string, 0, pc.Size.Cells())
	for _, row := range g {
		cells = append(cells, row...)
	}
	var out []Match
	for i, p := range pc.Catalog {
		idx := pc.flat[pc.index[i]:pc.index[i+1]]
		if len(idx) == 0 {
			continue
		}
		sym := cells[idx[0]]
		hit := true
		for _, k := range idx[1:] {
			if cells[k] != sym {
				hit = false
				break
			}
		}
		if !hit {
			continue
		}
		def, _ := pc.table.Lookup(sym)
		out = append(out, Match{Pattern: p, Symbol: sym, Positions: p.Positions, Payout: MatchPayout(def, p)})
	}
	return out, nil
}
