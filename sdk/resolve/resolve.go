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

// Package resolve 將原始比對結果整理成不重複計分的集合。
//
// 唯一的策略分兩段：
//  1. Containment：同圖標且座標集合被另一筆包含（含相等）者移除
//  2. Overlap：依優先度由高到低貪婪收下，與已收下的格子有任何重疊者捨棄
//
// 輸出永遠是輸入的子集，且任兩筆不共用格子；
// 相同輸入必得相同輸出（同分時依輸入順序，也就是 catalog 順序）。
package resolve

import (
	"cmp"
	"slices"

	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/sdk/pattern"
)

// typeBonus 幾何形狀優先於對角線，對角線優先於直線
var typeBonus = map[pattern.Type]float64{
	pattern.Geometric: 50,
	pattern.Diagonal:  25,
	pattern.Line:      0,
}

// Priority 格數x100 + 類型加權 + 倍率x10
func Priority(m calc.Match) float64 {
	return float64(len(m.Positions))*100 + typeBonus[m.Pattern.Type] + m.Pattern.BaseMultiplier*10
}

// Resolve 先做 Containment 再做 Overlap。
func Resolve(matches []calc.Match) []calc.Match {
	return Overlap(Containment(matches))
}

// Containment 移除被同圖標、已保留的另一筆完全包含的比對。
//
// 座標集合相等時保留較早出現者。輸出維持輸入順序。
func Containment(matches []calc.Match) []calc.Match {
	if len(matches) < 2 {
		return slices.Clone(matches)
	}
	sets := make([]map[grid.Pos]struct{}, len(matches))
	for i, m := range matches {
		sets[i] = toSet(m.Positions)
	}
	removed := make([]bool, len(matches))
	for i, a := range matches {
		for j, b := range matches {
			if i == j || removed[j] || a.Symbol != b.Symbol {
				continue
			}
			if !subset(sets[i], sets[j]) {
				continue
			}
			// 集合相等時只移除後出現的那一筆
			if len(sets[i]) == len(sets[j]) && i < j {
				continue
			}
			removed[i] = true
			break
		}
	}
	out := make([]calc.Match, 0, len(matches))
	for i, m := range matches {
		if !removed[i] {
			out = append(out, m)
		}
	}
	return out
}

// Overlap 依 Priority 由高到低貪婪收下比對，任何格子只屬於一筆。
//
// 排序為穩定排序，同分時保留輸入順序。輸出依收下順序排列。
func Overlap(matches []calc.Match) []calc.Match {
	order := make([]int, len(matches))
	prio := make([]float64, len(matches))
	for i, m := range matches {
		order[i] = i
		prio[i] = Priority(m)
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(prio[b], prio[a])
	})

	used := make(map[grid.Pos]struct{})
	out := make([]calc.Match, 0, len(matches))
	for _, i := range order {
		m := matches[i]
		if overlaps(used, m.Positions) {
			continue
		}
		for _, p := range m.Positions {
			used[p] = struct{}{}
		}
		out = append(out, m)
	}
	return out
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func toSet(ps []grid.Pos) map[grid.Pos]struct{} {
	s := make(map[grid.Pos]struct{}, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// subset a ⊆ b
func subset(a, b map[grid.Pos]struct{}) bool {
	if len(a) > len(b) {
		return false
	}
	for p := range a {
		if _, ok := b[p]; !ok {
			return false
		}
	}
	return true
}

func overlaps(used map[grid.Pos]struct{}, ps []grid.Pos) bool {
	for _, p := range ps {
		if _, ok := used[p]; ok {
			return true
		}
	}
	return false
}
