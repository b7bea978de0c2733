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

// Package pattern 負責 pattern catalog：依盤面尺寸列舉所有可計分的形狀。
//
// 形狀分三類：
//   - line：水平與垂直的連續線段，長度 3 到整列（行）
//   - diagonal：主對角與反對角，長度 3 到該起點能容納的最長對角線
//   - geometric：固定模板的 L（3 格）、T（5 格）與十字（5 格）
//
// Catalog 只跟 spec.GridSize 有關，生成後唯讀，可安全地在多個 goroutine 間共用，
// 由 catalog.Cache 依尺寸快取。
package pattern

import (
	"slices"
	"strconv"
	"strings"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/grid"
)

// Type pattern 類型
type Type uint8

const (
	Line Type = iota
	Diagonal
	Geometric
)

var typeNames = [...]string{
	Line:      "line",
	Diagonal:  "diagonal",
	Geometric: "geometric",
}

// NumTypes 類型數量，可作為以 Type 為索引的陣列長度
const NumTypes = 3

// Types 依固定順序列出所有類型
var Types = []Type{Line, Diagonal, Geometric}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// MarshalText 讓 JSON / YAML 以字串輸出類型
func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, errs.Warnf("unknown pattern type %d", t)
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText 解析 "line" / "diagonal" / "geometric"
func (t *Type) UnmarshalText(b []byte) error {
	for i, n := range typeNames {
		if n == string(b) {
			*t = Type(i)
			return nil
		}
	}
	return errs.Warnf("unknown pattern type %q", string(b))
}

// Pattern catalog 中的一筆形狀，生成後不可修改。
//
// Positions 為絕對座標；Difficulty 恆等於格數。
type Pattern struct {
	Name           string     `json:"name"            yaml:"name"`
	Positions      []grid.Pos `json:"positions"       yaml:"positions,flow"`
	BaseMultiplier float64    `json:"base_multiplier" yaml:"base_multiplier"`
	Difficulty     int        `json:"difficulty"      yaml:"difficulty"`
	Type           Type       `json:"type"            yaml:"type"`
	Rarity         float64    `json:"rarity"          yaml:"rarity"`
}

// Len 格數
func (p Pattern) Len() int {
	return len(p.Positions)
}

// Key 與順序無關的座標集合鍵，用於去重。
func (p Pattern) Key() string {
	return PositionsKey(p.Positions)
}

// PositionsKey 將座標排序後串成 "r,c|r,c|..."。
func PositionsKey(ps []grid.Pos) string {
	sorted := slices.Clone(ps)
	slices.SortFunc(sorted, func(a, b grid.Pos) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	var sb strings.Builder
	sb.Grow(len(sorted) * 4)
	for i, q := range sorted {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.Itoa(q.Row))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(q.Col))
	}
	return sb.String()
}

// Dedup 移除座標集合重複的 pattern，保留先出現者；回傳新 slice。
func Dedup(ps []Pattern) []Pattern {
	seen := make(map[string]struct{}, len(ps))
	out := make([]Pattern, 0, len(ps))
	for _, p := range ps {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
