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
	"fmt"
	"math"

	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/spec"
)

// ErrInvalidGridSize 與 spec.ErrInvalidGridSize 為同一個哨兵
var ErrInvalidGridSize = spec.ErrInvalidGridSize

// MinLength 線段與對角線的最短成立長度
const MinLength = 3

// ============================================================
// ** 幾何模板 **
// ============================================================

// 模板座標為相對錨點的偏移；大小固定，不隨 size 縮放。
var (
	// L：2x2 方框去掉一角，四個方向
	lShapes = [][]grid.Pos{
		{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}},
		{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}},
		{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 0}},
		{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 1, Col: 1}},
	}
	// T：3 格橫（直）槓 + 2 格柄，槓分別在上、右、下、左
	tShapes = [][]grid.Pos{
		{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 1}, {Row: 2, Col: 1}},
		{{Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}, {Row: 1, Col: 1}, {Row: 1, Col: 0}},
		{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 1, Col: 1}, {Row: 0, Col: 1}},
		{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}},
	}
	// 十字
	crossShape = []grid.Pos{
		{Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 1},
	}
)

// Generator 依 PatternSetting 生成 catalog。本身無狀態，可共用。
type Generator struct {
	setting spec.PatternSetting
}

var defaultGenerator = NewGenerator(spec.DefaultPatternSetting())

// NewGenerator 以設定建立生成器，未填欄位套用預設值。
func NewGenerator(ps spec.PatternSetting) *Generator {
	_ = ps.Init()
	return &Generator{setting: ps}
}

// Generate 以預設倍率生成 catalog。
func Generate(size spec.GridSize) ([]Pattern, error) {
	return defaultGenerator.Generate(size)
}

// Setting 回傳生成器使用的設定（副本）
func (g *Generator) Setting() spec.PatternSetting {
	return g.setting
}

// Generate 列舉 size 下所有 pattern 並去重。
//
// 輸出順序固定：水平線、垂直線、主對角、反對角、L、T、十字；
// 去重時保留先出現者，因此同一個 size 每次呼叫的結果完全一致。
func (g *Generator) Generate(size spec.GridSize) ([]Pattern, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	ps := make([]Pattern, 0, estimate(size))
	ps = g.appendLines(ps, size)
	ps = g.appendDiagonals(ps, size)
	ps = g.appendGeometric(ps, size)
	return Dedup(ps), nil
}

// Multiplier typeBase(type) x growth^(len-3)
func (g *Generator) Multiplier(length int, t Type) float64 {
	base := g.setting.LineBase
	switch t {
	case Diagonal:
		base = g.setting.DiagonalBase
	case Geometric:
		base = g.setting.GeometricBase
	}
	return base * math.Pow(g.setting.Growth, float64(length-MinLength))
}

// Rarity 2^(3 x len / dim)，dim 為該類型的限制維度；只供分析使用，不影響派彩。
func Rarity(length, dim int) float64 {
	if dim <= 0 {
		return 0
	}
	return math.Pow(2, 3*float64(length)/float64(dim))
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func (g *Generator) newPattern(name string, pos []grid.Pos, t Type, dim int) Pattern {
	return Pattern{
		Name:           name,
		Positions:      pos,
		BaseMultiplier: g.Multiplier(len(pos), t),
		Difficulty:     len(pos),
		Type:           t,
		Rarity:         Rarity(len(pos), dim),
	}
}

func (g *Generator) appendLines(ps []Pattern, size spec.GridSize) []Pattern {
	// 水平：限制維度為 cols
	for r := 0; r < size.Rows; r++ {
		for l := MinLength; l <= size.Cols; l++ {
			for s := 0; s+l <= size.Cols; s++ {
				pos := make([]grid.Pos, l)
				for i := range pos {
					pos[i] = grid.Pos{Row: r, Col: s + i}
				}
				ps = append(ps, g.newPattern(fmt.Sprintf("H-%d-%d-%d", r, s, l), pos, Line, size.Cols))
			}
		}
	}
	// 垂直：限制維度為 rows
	for c := 0; c < size.Cols; c++ {
		for l := MinLength; l <= size.Rows; l++ {
			for s := 0; s+l <= size.Rows; s++ {
				pos := make([]grid.Pos, l)
				for i := range pos {
					pos[i] = grid.Pos{Row: s + i, Col: c}
				}
				ps = append(ps, g.newPattern(fmt.Sprintf("V-%d-%d-%d", c, s, l), pos, Line, size.Rows))
			}
		}
	}
	return ps
}

func (g *Generator) appendDiagonals(ps []Pattern, size spec.GridSize) []Pattern {
	dim := size.MinDim()
	// 主對角 (r+i, c+i)
	for r := 0; r <= size.Rows-MinLength; r++ {
		for c := 0; c <= size.Cols-MinLength; c++ {
			maxLen := min(size.Rows-r, size.Cols-c)
			for l := MinLength; l <= maxLen; l++ {
				pos := make([]grid.Pos, l)
				for i := range pos {
					pos[i] = grid.Pos{Row: r + i, Col: c + i}
				}
				ps = append(ps, g.newPattern(fmt.Sprintf("D-%d-%d-%d", r, c, l), pos, Diagonal, dim))
			}
		}
	}
	// 反對角 (r+i, c-i)，起點需在第 MinLength-1 行之後
	for r := 0; r <= size.Rows-MinLength; r++ {
		for c := MinLength - 1; c < size.Cols; c++ {
			maxLen := min(size.Rows-r, c+1)
			for l := MinLength; l <= maxLen; l++ {
				pos := make([]grid.Pos, l)
				for i := range pos {
					pos[i] = grid.Pos{Row: r + i, Col: c - i}
				}
				ps = append(ps, g.newPattern(fmt.Sprintf("AD-%d-%d-%d", r, c, l), pos, Diagonal, dim))
			}
		}
	}
	return ps
}

// appendGeometric 對 size = 2..min(rows,cols)-1 的每個錨點套用模板。
//
// 模板大小固定，size 只決定錨點範圍；超出盤面的實例直接捨棄，
// 因此過窄的盤面（例如 2x8）不會有任何幾何形狀。
func (g *Generator) appendGeometric(ps []Pattern, size spec.GridSize) []Pattern {
	dim := size.MinDim()
	for sz := 2; sz <= dim-1; sz++ {
		for r := 0; r <= size.Rows-sz-1; r++ {
			for c := 0; c <= size.Cols-sz-1; c++ {
				for i, shape := range lShapes {
					if pos, ok := place(shape, r, c, size); ok {
						ps = append(ps, g.newPattern(fmt.Sprintf("L-%d-%d-%d-%d", sz, i, r, c), pos, Geometric, dim))
					}
				}
				for i, shape := range tShapes {
					if pos, ok := place(shape, r, c, size); ok {
						ps = append(ps, g.newPattern(fmt.Sprintf("T-%d-%d-%d-%d", sz, i, r, c), pos, Geometric, dim))
					}
				}
				if pos, ok := place(crossShape, r, c, size); ok {
					ps = append(ps, g.newPattern(fmt.Sprintf("X-%d-%d-%d", sz, r, c), pos, Geometric, dim))
				}
			}
		}
	}
	return ps
}

// place 把模板平移到錨點 (r,c)，任一格超出盤面即回傳 false。
func place(shape []grid.Pos, r, c int, size spec.GridSize) ([]grid.Pos, bool) {
	pos := make([]grid.Pos, len(shape))
	for i, off := range shape {
		p := grid.Pos{Row: r + off.Row, Col: c + off.Col}
		if !size.Contains(p.Row, p.Col) {
			return nil, false
		}
		pos[i] = p
	}
	return pos, true
}

// estimate 粗估 catalog 大小，只用於預先配置容量。
func estimate(size spec.GridSize) int {
	n := size.Rows*size.Cols*(size.Rows+size.Cols)/2 + 9*size.Cells()
	return max(n, 8)
}
