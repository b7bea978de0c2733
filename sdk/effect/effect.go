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

// Package effect 把設定檔中的效果描述折算成單次 spin 的修正值。
//
// 效果在資料定義時就帶有種類（Kind）與觸發條件（Condition），
// 引擎不解析任何顯示文字。
package effect

import (
	"math"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/spec"
)

// Kind 效果種類
type Kind string

const (
	KindLuck               Kind = "luck"
	KindSymbolsMultiplier  Kind = "symbols_multiplier"
	KindPatternsMultiplier Kind = "patterns_multiplier"
	KindGridRows           Kind = "grid_rows"
	KindGridCols           Kind = "grid_cols"
)

// Condition 觸發條件
type Condition string

const (
	Always       Condition = "always"
	EveryNthSpin Condition = "every_nth_spin"
	Chance       Condition = "chance"
)

// Effect 單一效果描述
type Effect struct {
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Amount    float64   `json:"amount"`
	Condition Condition `json:"condition"`
	Every     int       `json:"every,omitempty"`
	Chance    float64   `json:"chance,omitempty"`
}

// FromSettings 由設定建立效果列表，未填條件視為 always。
func FromSettings(ss []spec.EffectSetting) ([]Effect, error) {
	out := make([]Effect, 0, len(ss))
	for _, s := range ss {
		e := Effect{
			Name:      s.Name,
			Kind:      Kind(s.Kind),
			Amount:    s.Amount,
			Condition: Condition(s.Condition),
			Every:     s.Every,
			Chance:    s.Chance,
		}
		if e.Condition == "" {
			e.Condition = Always
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Validate 檢查種類與條件參數
func (e Effect) Validate() error {
	switch e.Kind {
	case KindLuck, KindSymbolsMultiplier, KindPatternsMultiplier, KindGridRows, KindGridCols:
	default:
		return errs.Fatalf("effect %s: unknown kind %q", e.Name, e.Kind)
	}
	switch e.Condition {
	case Always:
	case EveryNthSpin:
		if e.Every < 1 {
			return errs.Fatalf("effect %s: every must be >= 1, got %d", e.Name, e.Every)
		}
	case Chance:
		if e.Chance < 0 || e.Chance > 1 || math.IsNaN(e.Chance) {
			return errs.Fatalf("effect %s: chance must be in [0,1], got %v", e.Name, e.Chance)
		}
	default:
		return errs.Fatalf("effect %s: unknown condition %q", e.Name, e.Condition)
	}
	if (e.Kind == KindGridRows || e.Kind == KindGridCols) && !(math.Abs(e.Amount) <= spec.MaxGridDim) {
		return errs.Fatalf("effect %s: grid delta must be within ±%d, got %v", e.Name, spec.MaxGridDim, e.Amount)
	}
	if (e.Kind == KindSymbolsMultiplier || e.Kind == KindPatternsMultiplier) && e.Amount <= 0 {
		return errs.Fatalf("effect %s: multiplier must be positive, got %v", e.Name, e.Amount)
	}
	return nil
}

// State 評估觸發條件所需的狀態。
//
// Spin 為本次 spin 的序號（從 1 開始）；Core 只在 chance 條件時取亂數，為 nil 時 chance 一律不觸發。
type State struct {
	Spin int
	Core *core.Core
}

// Active 判斷效果在本次 spin 是否生效
func (e Effect) Active(st State) bool {
	switch e.Condition {
	case Always, "":
		return true
	case EveryNthSpin:
		return e.Every > 0 && st.Spin > 0 && st.Spin%e.Every == 0
	case Chance:
		if st.Core == nil {
			return false
		}
		return st.Core.Float64() < e.Chance
	default:
		return false
	}
}

// Modifiers 單次 spin 的修正值。Rows / Cols 為盤面尺寸增量。
type Modifiers struct {
	Luck               float64  `json:"luck"`
	SymbolsMultiplier  float64  `json:"symbols_multiplier"`
	PatternsMultiplier float64  `json:"patterns_multiplier"`
	Rows               int      `json:"rows"`
	Cols               int      `json:"cols"`
	Active             []string `json:"active,omitempty"`
}

// Base 由遊戲設定的起始值建立修正值
func Base(gs *spec.GameSetting) Modifiers {
	return Modifiers{
		Luck:               gs.Luck,
		SymbolsMultiplier:  gs.SymbolsMultiplier,
		PatternsMultiplier: gs.PatternsMultiplier,
	}
}

// Apply 依序評估 effects，倍率相乘，luck 與盤面增量相加。
//
// 條件評估的順序即 effects 的順序，chance 條件會依序消耗亂數。
func Apply(effects []Effect, base Modifiers, st State) Modifiers {
	m := base
	m.Active = nil
	for _, e := range effects {
		if !e.Active(st) {
			continue
		}
		switch e.Kind {
		case KindLuck:
			m.Luck += e.Amount
		case KindSymbolsMultiplier:
			m.SymbolsMultiplier *= e.Amount
		case KindPatternsMultiplier:
			m.PatternsMultiplier *= e.Amount
		case KindGridRows:
			m.Rows = gridDelta(float64(m.Rows) + e.Amount)
		case KindGridCols:
			m.Cols = gridDelta(float64(m.Cols) + e.Amount)
		default:
			continue
		}
		m.Active = append(m.Active, e.Name)
	}
	return m
}

// gridDelta 累加後的盤面增量夾在 ±MaxGridDim，再大的增量 Resize 也會夾回上限。
func gridDelta(d float64) int {
	return int(math.Round(math.Max(-spec.MaxGridDim, math.Min(spec.MaxGridDim, d))))
}

// GridSize 套用盤面增量，任一維度夾在 [1, spec.MaxGridDim]。
func (m Modifiers) GridSize(base spec.GridSize) spec.GridSize {
	return base.Resize(m.Rows, m.Cols)
}

// Multipliers 轉為派彩倍率
func (m Modifiers) Multipliers() calc.Multipliers {
	return calc.Multipliers{Symbols: m.SymbolsMultiplier, Patterns: m.PatternsMultiplier}
}
