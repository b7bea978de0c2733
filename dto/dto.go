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

package dto

import (
	"github.com/zintix-labs/patternlab/corefmt"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/buf"
	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/effect"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/spec"
)

// SpinResult 對外輸出的 spin 結果
type SpinResult struct {
	ID        string           `json:"id"`               // spin 唯一識別碼
	GameName  string           `json:"game"`             // 遊戲名稱
	GameID    spec.GID         `json:"gid"`              // 遊戲編號
	Spin      int              `json:"spin"`             // 機台上的第幾局
	Size      spec.GridSize    `json:"size"`             // 本局盤面尺寸
	Grid      [][]string       `json:"grid"`             // 最終盤面（luck 強制後）
	Forced    *ForcedDTO       `json:"forced,omitempty"` // luck 強制的格子
	Matches   []MatchDTO       `json:"matches"`          // 實際計分的 pattern
	RawCount  int              `json:"raw_count"`        // 處理重疊前的成立數
	Sequence  string           `json:"sequence,omitempty"`
	Modifiers effect.Modifiers `json:"modifiers"`
	Payout    float64          `json:"payout"` // 倍率前
	Total     float64          `json:"total"`  // 倍率後
	State     SpinState        `json:"spin_state"`
}

type ForcedDTO struct {
	Symbol string     `json:"symbol"`
	Cells  []grid.Pos `json:"cells"`
}

// MatchDTO 單筆計分（座標即 pattern 的格子）
type MatchDTO struct {
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Symbol         string     `json:"symbol"`
	Positions      []grid.Pos `json:"positions"`
	BaseMultiplier float64    `json:"base_multiplier"`
	Payout         float64    `json:"payout"`
}

type SpinState struct {
	StartCoreSnapB64U string `json:"start_b64u,omitempty"` // sim 模式下不回傳
	AfterCoreSnapB64U string `json:"after_b64u,omitempty"`
}

// NewSpinResultDTO 轉成對外結構。盤面與座標一律深拷貝，之後修改 sr 不影響 DTO。
func NewSpinResultDTO(sr *buf.SpinResult) (SpinResult, error) {
	if sr == nil {
		return SpinResult{}, errs.NewWarn("spin result is nil")
	}
	dto := SpinResult{
		ID:        sr.ID.String(),
		GameName:  sr.GameName,
		GameID:    sr.GameID,
		Spin:      sr.Spin,
		Size:      sr.Size,
		Grid:      sr.Grid.Clone(),
		RawCount:  len(sr.Raw),
		Sequence:  string(sr.Sequence),
		Modifiers: sr.Modifiers,
		Payout:    sr.Payout,
		Total:     sr.Total,
		State: SpinState{
			StartCoreSnapB64U: encodeSnap(sr.StartCoreSnap),
			AfterCoreSnapB64U: encodeSnap(sr.AfterCoreSnap),
		},
	}
	if sr.IsForced() {
		dto.Forced = &ForcedDTO{
			Symbol: sr.Forced.Symbol,
			Cells:  append([]grid.Pos(nil), sr.Forced.Cells...),
		}
	}
	dto.Matches = make([]MatchDTO, len(sr.Resolved))
	for i, m := range sr.Resolved {
		dto.Matches[i] = newMatchDTO(m)
	}
	return dto, nil
}

func newMatchDTO(m calc.Match) MatchDTO {
	return MatchDTO{
		Name:           m.Pattern.Name,
		Type:           m.Pattern.Type.String(),
		Symbol:         m.Symbol,
		Positions:      append([]grid.Pos(nil), m.Positions...),
		BaseMultiplier: m.Pattern.BaseMultiplier,
		Payout:         m.Payout,
	}
}

func encodeSnap(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return corefmt.EncodeBase64URL(b)
}
