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

package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/spec"
)

func TestFromSettings(t *testing.T) {
	es, err := FromSettings([]spec.EffectSetting{
		{Name: "horseshoe", Kind: "luck", Amount: 2},
		{Name: "bell", Kind: "symbols_multiplier", Amount: 1.5, Condition: "every_nth_spin", Every: 3},
	})
	require.NoError(t, err)
	require.Len(t, es, 2)
	assert.Equal(t, Always, es[0].Condition)
	assert.Equal(t, KindSymbolsMultiplier, es[1].Kind)
}

func TestFromSettingsRejectsInvalid(t *testing.T) {
	cases := []spec.EffectSetting{
		{Name: "a", Kind: "jackpot", Amount: 1},
		{Name: "b", Kind: "luck", Amount: 1, Condition: "sometimes"},
		{Name: "c", Kind: "luck", Amount: 1, Condition: "every_nth_spin"},
		{Name: "d", Kind: "luck", Amount: 1, Condition: "chance", Chance: 1.5},
		{Name: "e", Kind: "patterns_multiplier", Amount: 0},
	}
	for _, c := range cases {
		_, err := FromSettings([]spec.EffectSetting{c})
		assert.Error(t, err, c.Name)
	}
}

func TestApplyCombination(t *testing.T) {
	effects := []Effect{
		{Name: "luck1", Kind: KindLuck, Amount: 2, Condition: Always},
		{Name: "luck2", Kind: KindLuck, Amount: 1.5, Condition: Always},
		{Name: "sym1", Kind: KindSymbolsMultiplier, Amount: 2, Condition: Always},
		{Name: "sym2", Kind: KindSymbolsMultiplier, Amount: 1.5, Condition: Always},
		{Name: "pat", Kind: KindPatternsMultiplier, Amount: 1.25, Condition: Always},
		{Name: "rows", Kind: KindGridRows, Amount: 1, Condition: Always},
		{Name: "cols", Kind: KindGridCols, Amount: 2, Condition: Always},
	}
	base := Modifiers{Luck: 1, SymbolsMultiplier: 1, PatternsMultiplier: 2}
	m := Apply(effects, base, State{Spin: 1})

	assert.InDelta(t, 4.5, m.Luck, 1e-9)
	assert.InDelta(t, 3.0, m.SymbolsMultiplier, 1e-9)
	assert.InDelta(t, 2.5, m.PatternsMultiplier, 1e-9)
	assert.Equal(t, 1, m.Rows)
	assert.Equal(t, 2, m.Cols)
	assert.Len(t, m.Active, 7)
	assert.Equal(t, spec.GridSize{Rows: 4, Cols: 5}, m.GridSize(spec.GridSize{Rows: 3, Cols: 3}))

	mul := m.Multipliers()
	assert.InDelta(t, 3.0, mul.Symbols, 1e-9)
	assert.InDelta(t, 2.5, mul.Patterns, 1e-9)
}

func TestGridSizeClamp(t *testing.T) {
	m := Apply([]Effect{{Name: "shrink", Kind: KindGridRows, Amount: -10, Condition: Always}},
		Modifiers{SymbolsMultiplier: 1, PatternsMultiplier: 1}, State{})
	assert.Equal(t, spec.GridSize{Rows: 1, Cols: 3}, m.GridSize(spec.GridSize{Rows: 3, Cols: 3}))
}

func TestGridSizeUpperBound(t *testing.T) {
	grow := []Effect{
		{Name: "rows", Kind: KindGridRows, Amount: 1e9, Condition: Always},
		{Name: "cols", Kind: KindGridCols, Amount: 20, Condition: Always},
		{Name: "cols2", Kind: KindGridCols, Amount: 20, Condition: Always},
	}
	m := Apply(grow, Modifiers{SymbolsMultiplier: 1, PatternsMultiplier: 1}, State{})
	assert.Equal(t, spec.MaxGridDim, m.Rows)
	assert.Equal(t, spec.MaxGridDim, m.Cols)
	size := m.GridSize(spec.GridSize{Rows: 3, Cols: 3})
	assert.Equal(t, spec.GridSize{Rows: spec.MaxGridDim, Cols: spec.MaxGridDim}, size)
	assert.NoError(t, size.Validate())

	_, err := FromSettings([]spec.EffectSetting{{Name: "huge", Kind: "grid_rows", Amount: 1e9}})
	assert.Error(t, err)
	_, err = FromSettings([]spec.EffectSetting{{Name: "ok", Kind: "grid_cols", Amount: -spec.MaxGridDim}})
	assert.NoError(t, err)
}

func TestEveryNthSpin(t *testing.T) {
	e := Effect{Name: "n", Kind: KindLuck, Amount: 1, Condition: EveryNthSpin, Every: 3}
	var fired []int
	for spin := 1; spin <= 9; spin++ {
		if e.Active(State{Spin: spin}) {
			fired = append(fired, spin)
		}
	}
	assert.Equal(t, []int{3, 6, 9}, fired)
	assert.False(t, e.Active(State{Spin: 0}))
}

func TestChance(t *testing.T) {
	c := core.New(core.Default().New(1))
	e := Effect{Name: "c", Kind: KindLuck, Amount: 1, Condition: Chance, Chance: 0.25}
	hit := 0
	const rounds = 40000
	for i := range rounds {
		if e.Active(State{Spin: i + 1, Core: c}) {
			hit++
		}
	}
	assert.InDelta(t, 0.25, float64(hit)/rounds, 0.01)

	assert.False(t, e.Active(State{Spin: 1}), "chance without core never fires")
	never := Effect{Name: "z", Kind: KindLuck, Amount: 1, Condition: Chance, Chance: 0}
	always := Effect{Name: "o", Kind: KindLuck, Amount: 1, Condition: Chance, Chance: 1}
	for range 100 {
		assert.False(t, never.Active(State{Core: c}))
		assert.True(t, always.Active(State{Core: c}))
	}
}

func TestApplyDoesNotMutateBase(t *testing.T) {
	base := Modifiers{Luck: 1, SymbolsMultiplier: 1, PatternsMultiplier: 1, Active: []string{"stale"}}
	m := Apply([]Effect{{Name: "l", Kind: KindLuck, Amount: 2, Condition: Always}}, base, State{})
	assert.Equal(t, []string{"l"}, m.Active)
	assert.Equal(t, []string{"stale"}, base.Active)
	assert.InDelta(t, 1.0, base.Luck, 1e-9)
}
