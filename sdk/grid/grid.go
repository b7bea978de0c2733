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

// Package grid 定義盤面模型。
//
// Grid 為 rows 列、每列 cols 個圖標 ID 的二維陣列；每次 spin 重新生成，
// 只有 luck 強制會在比對前覆寫格子，比對之後不再修改。
package grid

import (
	"strings"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/spec"
)

// Empty 建構中的空格哨兵值，不屬於任何圖標，永遠不會成立比對。
const Empty = ""

// ErrInvalidGrid 盤面資料不完整：列長度與 cols 不符、尺寸不符或含未知圖標。
var ErrInvalidGrid = errs.NewWarn("invalid grid")

// Vocabulary 圖標詞彙表，*spec.SymbolSetting 即滿足此介面。
type Vocabulary interface {
	Has(id string) bool
}

// Pos 盤面座標 (row, col)，皆從 0 開始。
type Pos struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Grid 盤面
type Grid [][]string

// New 建立指定尺寸、全部為 Empty 的盤面。
func New(size spec.GridSize) Grid {
	g := make(Grid, size.Rows)
	cells := make([]string, size.Cells())
	for r := range g {
		g[r] = cells[r*size.Cols : (r+1)*size.Cols : (r+1)*size.Cols]
	}
	return g
}

// FromRows 以外部資料建立盤面（深拷貝，不共用底層陣列）。
func FromRows(rows [][]string) Grid {
	g := make(Grid, len(rows))
	for r, row := range rows {
		g[r] = append([]string(nil), row...)
	}
	return g
}

// Filled 建立每格都是同一圖標的盤面。
func Filled(size spec.GridSize, symbol string) Grid {
	g := New(size)
	for r := range g {
		for c := range g[r] {
			g[r][c] = symbol
		}
	}
	return g
}

func (g Grid) Rows() int {
	return len(g)
}

// Cols 以第一列長度為準；空盤面回傳 0。
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// At 讀取格子；超出範圍回傳 Empty。
func (g Grid) At(p Pos) string {
	if p.Row < 0 || p.Row >= len(g) || p.Col < 0 || p.Col >= len(g[p.Row]) {
		return Empty
	}
	return g[p.Row][p.Col]
}

// Set 寫入格子，超出範圍時不做事並回傳 false。
func (g Grid) Set(p Pos, symbol string) bool {
	if p.Row < 0 || p.Row >= len(g) || p.Col < 0 || p.Col >= len(g[p.Row]) {
		return false
	}
	g[p.Row][p.Col] = symbol
	return true
}

// Clone 深拷貝
func (g Grid) Clone() Grid {
	return FromRows(g)
}

// Count 計算圖標出現次數
func (g Grid) Count(symbol string) int {
	n := 0
	for _, row := range g {
		for _, s := range row {
			if s == symbol {
				n++
			}
		}
	}
	return n
}

// Validate 檢查盤面是否符合宣告尺寸，且每格都是詞彙表中的圖標。
//
// 比對前由呼叫端保證盤面正確；這裡只檢查不修正。vocab 為 nil 時略過圖標檢查。
func (g Grid) Validate(size spec.GridSize, vocab Vocabulary) error {
	if len(g) != size.Rows {
		return ErrInvalidGrid.Withf("rows=%d, want %d", len(g), size.Rows)
	}
	for r, row := range g {
		if len(row) != size.Cols {
			return ErrInvalidGrid.Withf("row %d has %d cells, want %d", r, len(row), size.Cols)
		}
		if vocab == nil {
			continue
		}
		for c, s := range row {
			if s == Empty {
				return ErrInvalidGrid.Withf("cell (%d,%d) is empty", r, c)
			}
			if !vocab.Has(s) {
				return ErrInvalidGrid.Withf("cell (%d,%d) has unknown symbol %q", r, c, s)
			}
		}
	}
	return nil
}

// String 以多行文字輸出盤面，方便除錯與 CLI 顯示。
func (g Grid) String() string {
	var sb strings.Builder
	for r, row := range g {
		if r > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(row, " "))
	}
	return sb.String()
}
