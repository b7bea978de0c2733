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

package pattern

import (
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/spec"
)

// LegacySize legacy catalog 唯一支援的尺寸
var LegacySize = spec.GridSize{Rows: 3, Cols: 3}

// Legacy 固定的 3x3 八線 catalog：三列、三行倍率 1.0，兩條對角線倍率 1.5。
//
// 每次呼叫回傳新的 slice，呼叫端可自由持有。
func Legacy() []Pattern {
	row := func(name string, r int) Pattern {
		return legacyPattern(name, Line, 1.0, grid.Pos{Row: r, Col: 0}, grid.Pos{Row: r, Col: 1}, grid.Pos{Row: r, Col: 2})
	}
	col := func(name string, c int) Pattern {
		return legacyPattern(name, Line, 1.0, grid.Pos{Row: 0, Col: c}, grid.Pos{Row: 1, Col: c}, grid.Pos{Row: 2, Col: c})
	}
	return []Pattern{
		row("Top Row", 0),
		row("Middle Row", 1),
		row("Bottom Row", 2),
		col("Left Column", 0),
		col("Middle Column", 1),
		col("Right Column", 2),
		legacyPattern("Main Diagonal", Diagonal, 1.5, grid.Pos{Row: 0, Col: 0}, grid.Pos{Row: 1, Col: 1}, grid.Pos{Row: 2, Col: 2}),
		legacyPattern("Anti-Diagonal", Diagonal, 1.5, grid.Pos{Row: 0, Col: 2}, grid.Pos{Row: 1, Col: 1}, grid.Pos{Row: 2, Col: 0}),
	}
}

func legacyPattern(name string, t Type, mult float64, pos ...grid.Pos) Pattern {
	return Pattern{
		Name:           name,
		Positions:      pos,
		BaseMultiplier: mult,
		Difficulty:     len(pos),
		Type:           t,
		Rarity:         Rarity(len(pos), LegacySize.Cols),
	}
}
