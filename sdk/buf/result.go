// Package buf 單次 spin 的完整結果。
package buf

import (
	"github.com/google/uuid"
	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/effect"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/sdk/ops"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
)

// SpinResult 一次 spin 的結果，由 Machine 產生後即不再修改。
//
// Raw 為比對器的原始輸出，Resolved 為處理重疊後實際計分的子集；
// Payout 是 Resolved 的派彩加總，Total 再乘上本局的倍率。
type SpinResult struct {
	ID        uuid.UUID
	GameName  string
	GameID    spec.GID
	Spin      int // 機台上的第幾局（從 1 開始）
	Size      spec.GridSize
	Grid      grid.Grid
	Forced    ops.Forced
	Raw       []calc.Match
	Resolved  []calc.Match
	Sequence  calc.Sequence
	Modifiers effect.Modifiers
	Payout    float64
	Total     float64

	StartCoreSnap []byte // 本局開始前的 RNG 狀態（模擬模式下不記錄）
	AfterCoreSnap []byte // 本局結束後的 RNG 狀態
}

// Hit 本局是否有任何計分
func (sr *SpinResult) Hit() bool {
	return len(sr.Resolved) > 0
}

// IsForced 本局是否有 luck 強制
func (sr *SpinResult) IsForced() bool {
	return !sr.Forced.Empty()
}

// WinsByType 依 pattern 類型統計計分筆數
func (sr *SpinResult) WinsByType() [pattern.NumTypes]int {
	var out [pattern.NumTypes]int
	for _, m := range sr.Resolved {
		if int(m.Pattern.Type) < len(out) {
			out[m.Pattern.Type]++
		}
	}
	return out
}

// PayoutByType 依 pattern 類型統計派彩（已乘上本局倍率）
func (sr *SpinResult) PayoutByType() [pattern.NumTypes]float64 {
	var out [pattern.NumTypes]float64
	mult := sr.Modifiers.SymbolsMultiplier * sr.Modifiers.PatternsMultiplier
	for _, m := range sr.Resolved {
		if int(m.Pattern.Type) < len(out) {
			out[m.Pattern.Type] += m.Payout * mult
		}
	}
	return out
}
