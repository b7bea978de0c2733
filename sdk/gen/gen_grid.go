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

// Package gen 依圖標權重生成隨機盤面。
package gen

import (
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/sdk/sampler"
	"github.com/zintix-labs/patternlab/spec"
)

// SymbolPicker 依設定權重抽出圖標 ID。
//
// 生成盤面與 luck 強制共用同一張抽樣表，建立後唯讀。
type SymbolPicker struct {
	ids    []string
	picker sampler.Picker
}

// NewSymbolPicker 由圖標設定建立抽樣表
func NewSymbolPicker(ss *spec.SymbolSetting) (*SymbolPicker, error) {
	if ss == nil {
		return nil, errs.NewFatal("symbol setting is nil")
	}
	if err := ss.Init(); err != nil {
		return nil, err
	}
	p, err := sampler.NewWeighted(ss.Weights())
	if err != nil {
		return nil, errs.Wrap(err, "build symbol sampler")
	}
	return &SymbolPicker{ids: ss.IDs(), picker: p}, nil
}

// PickSymbol 抽一個圖標
func (sp *SymbolPicker) PickSymbol(c *core.Core) string {
	return sp.ids[sp.picker.Pick(c)]
}

// IDs 抽樣表中的圖標（依設定順序）
func (sp *SymbolPicker) IDs() []string {
	return sp.ids
}

// GridGenerator 盤面生成器，每個 Machine 各持有一個。
type GridGenerator struct {
	core    *core.Core
	Size    spec.GridSize
	Symbols *SymbolPicker
}

// NewGridGenerator 建立盤面生成器
func NewGridGenerator(c *core.Core, size spec.GridSize, ss *spec.SymbolSetting) (*GridGenerator, error) {
	if c == nil {
		return nil, errs.NewFatal("core is nil")
	}
	if err := size.Validate(); err != nil {
		return nil, err
	}
	sp, err := NewSymbolPicker(ss)
	if err != nil {
		return nil, err
	}
	return &GridGenerator{core: c, Size: size, Symbols: sp}, nil
}

// Gen 生成新盤面。每次都是新的底層陣列，呼叫端可以保留結果。
func (gg *GridGenerator) Gen() grid.Grid {
	g := grid.New(gg.Size)
	gg.Fill(g)
	return g
}

// Fill 依列優先順序覆寫整個盤面，尺寸以 g 為準（效果可能讓單局盤面大於 gg.Size）。
func (gg *GridGenerator) Fill(g grid.Grid) {
	for r := range g {
		row := g[r]
		for c := range row {
			row[c] = gg.Symbols.PickSymbol(gg.core)
		}
	}
}

// Resize 切換盤面尺寸（grid_rows / grid_cols 效果）。
func (gg *GridGenerator) Resize(size spec.GridSize) error {
	if err := size.Validate(); err != nil {
		return err
	}
	gg.Size = size
	return nil
}
