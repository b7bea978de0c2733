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

// Package ops 盤面後處理操作。
package ops

import (
	"math"
	"slices"

	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/sdk/grid"
)

// SymbolPicker 依權重抽圖標，*gen.SymbolPicker 即滿足此介面。
type SymbolPicker interface {
	PickSymbol(c *core.Core) string
}

// Forced luck 強制的結果；Cells 依列優先排序。
type Forced struct {
	Symbol string     `json:"symbol,omitempty"`
	Cells  []grid.Pos `json:"cells,omitempty"`
}

// Empty 是否沒有強制任何格子
func (f Forced) Empty() bool {
	return len(f.Cells) == 0
}

// ForceLuck 依 luck 把盤面上 floor(luck) 格改成同一個圖標。
//
// 格子以 Fisher-Yates 不重複均勻選出（上限為格子總數），圖標只抽一次。
// luck <= 0、NaN 或不足 1 時盤面不變並回傳空結果。
func ForceLuck(c *core.Core, g grid.Grid, luck float64, pick SymbolPicker) Forced {
	if math.IsNaN(luck) || luck < 1 {
		return Forced{}
	}
	rows, cols := g.Rows(), g.Cols()
	cells := rows * cols
	if cells == 0 {
		return Forced{}
	}
	n := cells
	if luck < float64(cells) {
		n = int(math.Floor(luck))
	}

	idx := c.SampleIndices(cells, n)
	sym := pick.PickSymbol(c)

	slices.Sort(idx)
	ps := make([]grid.Pos, len(idx))
	for i, k := range idx {
		ps[i] = grid.Pos{Row: k / cols, Col: k % cols}
	}
	Fill(g, ps, sym)
	return Forced{Symbol: sym, Cells: ps}
}
