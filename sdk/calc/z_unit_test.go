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

package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
)

var size3 = spec.GridSize{Rows: 3, Cols: 3}

// noRunGrid 4x4 盤面：任一列、行、對角線上相鄰格都不同，因此沒有任何 pattern 成立
func noRunGrid() grid.Grid {
	syms := []string{"lemon", "cherry", "clover", "bell", "diamond"}
	g := grid.New(spec.GridSize{Rows: 4, Cols: 4})
	for r := range 4 {
		for c := range 4 {
			g[r][c] = syms[(r+2*c)%5]
		}
	}
	return g
}

func randomGrid(c *core.Core, size spec.GridSize, ids []string) grid.Grid {
	g := grid.New(size)
	for r := range g {
		for col := range g[r] {
			g[r][col] = ids[c.IntN(len(ids))]
		}
	}
	return g
}

func TestFindMatchesAllSameLegacy(t *testing.T) {
	table := spec.DefaultSymbols()
	g := grid.Filled(size3, "lemon")
	ms, err := FindMatches(g, size3, pattern.Legacy(), table)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ms) != 8 {
		t.Fatalf("expected 8 raw matches, got %d", len(ms))
	}
	// 6 條線 x 10 x 1.0 + 2 條對角 x 10 x 1.5
	if got := SumPayout(ms); math.Abs(got-90) > 1e-9 {
		t.Fatalf("expected raw payout 90, got %v", got)
	}
	for _, m := range ms {
		if m.Symbol != "lemon" {
			t.Fatalf("unexpected symbol %s", m.Symbol)
		}
	}
}

func TestFindMatchesNoRuns(t *testing.T) {
	size := spec.GridSize{Rows: 4, Cols: 4}
	catalog, err := pattern.Generate(size)
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	ms, err := FindMatches(noRunGrid(), size, catalog, spec.DefaultSymbols())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ms) != 0 {
		t.Fatalf("expected no matches, got %d (first %s)", len(ms), ms[0].Pattern.Name)
	}
	if TotalPayout(ms, DefaultMultipliers()) != 0 {
		t.Fatalf("expected zero payout")
	}
}

func TestFindMatchesSoundness(t *testing.T) {
	table := spec.DefaultSymbols()
	c := core.New(core.Default().New(1))
	// 只用兩種圖標，讓比對大量成立
	ids := []string{"seven", "bell"}
	for _, size := range []spec.GridSize{{Rows: 3, Cols: 3}, {Rows: 4, Cols: 5}, {Rows: 6, Cols: 6}} {
		catalog, err := pattern.Generate(size)
		if err != nil {
			t.Fatalf("generate err: %v", err)
		}
		for range 50 {
			g := randomGrid(c, size, ids)
			ms, err := FindMatches(g, size, catalog, table)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			for _, m := range ms {
				if len(m.Positions) != len(m.Pattern.Positions) {
					t.Fatalf("match positions differ from pattern %s", m.Pattern.Name)
				}
				for i, p := range m.Positions {
					if p != m.Pattern.Positions[i] {
						t.Fatalf("match positions differ from pattern %s", m.Pattern.Name)
					}
					if g[p.Row][p.Col] != m.Symbol {
						t.Fatalf("cell %v is %s, match symbol %s", p, g[p.Row][p.Col], m.Symbol)
					}
				}
				def, _ := table.Lookup(m.Symbol)
				want := def.Value * m.Pattern.BaseMultiplier * def.Multiplier
				if math.Abs(m.Payout-want) > 1e-9 {
					t.Fatalf("payout %v, want %v", m.Payout, want)
				}
			}
		}
	}
}

func TestCalculatorEqualsFindMatches(t *testing.T) {
	table := spec.DefaultSymbols()
	size := spec.GridSize{Rows: 5, Cols: 5}
	catalog, _ := pattern.Generate(size)
	pc, err := NewPatternCalculator(size, catalog, table)
	if err != nil {
		t.Fatalf("calculator err: %v", err)
	}
	c := core.New(core.Default().New(9))
	for range 100 {
		g := randomGrid(c, size, []string{"lemon", "seven", "bell"})
		a, err1 := FindMatches(g, size, catalog, table)
		b, err2 := pc.Calc(g)
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected err: %v %v", err1, err2)
		}
		if len(a) != len(b) {
			t.Fatalf("len mismatch %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i].Pattern.Name != b[i].Pattern.Name || a[i].Symbol != b[i].Symbol || a[i].Payout != b[i].Payout {
				t.Fatalf("match %d differs", i)
			}
		}
	}
}

func TestCalculatorRejectsOutOfBoundsCatalog(t *testing.T) {
	catalog, _ := pattern.Generate(spec.GridSize{Rows: 4, Cols: 4})
	if _, err := NewPatternCalculator(size3, catalog, spec.DefaultSymbols()); err == nil {
		t.Fatalf("expected error for catalog larger than grid")
	}
	if _, err := NewPatternCalculator(spec.GridSize{}, nil, spec.DefaultSymbols()); !errors.Is(err, spec.ErrInvalidGridSize) {
		t.Fatalf("expected invalid grid size, got %v", err)
	}
}

func TestFindMatchesInvalidGrid(t *testing.T) {
	table := spec.DefaultSymbols()
	cases := []grid.Grid{
		grid.FromRows([][]string{{"lemon", "lemon", "lemon"}, {"lemon", "lemon"}, {"lemon", "lemon", "lemon"}}),
		grid.FromRows([][]string{{"lemon", "lemon", "lemon"}, {"lemon", "banana", "lemon"}, {"lemon", "lemon", "lemon"}}),
		grid.FromRows([][]string{{"lemon", "lemon", "lemon"}}),
	}
	for i, g := range cases {
		_, err := FindMatches(g, size3, pattern.Legacy(), table)
		if !errors.Is(err, grid.ErrInvalidGrid) {
			t.Fatalf("case %d: expected ErrInvalidGrid, got %v", i, err)
		}
	}
	if _, err := FindMatches(grid.Filled(size3, "lemon"), size3, pattern.Legacy(), nil); err == nil {
		t.Fatalf("expected error for nil table")
	}
}

func TestEmptyCatalog(t *testing.T) {
	size := spec.GridSize{Rows: 2, Cols: 2}
	catalog, err := pattern.Generate(size)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ms, err := FindMatches(grid.Filled(size, "seven"), size, catalog, spec.DefaultSymbols())
	if err != nil || len(ms) != 0 {
		t.Fatalf("expected no matches and no error, got %d %v", len(ms), err)
	}
}

func TestTotalPayoutMultipliers(t *testing.T) {
	ms := []Match{{Payout: 15}, {Payout: 2.5}}
	base := TotalPayout(ms, DefaultMultipliers())
	if base != 17.5 {
		t.Fatalf("expected 17.5, got %v", base)
	}
	doubled := TotalPayout(ms, Multipliers{Symbols: 2, Patterns: 1})
	if doubled != 2*base {
		t.Fatalf("doubling symbols multiplier should double payout: %v vs %v", doubled, base)
	}
	if got := TotalPayout(ms, Multipliers{Symbols: 1.5, Patterns: 3}); math.Abs(got-17.5*4.5) > 1e-9 {
		t.Fatalf("unexpected payout %v", got)
	}
	// 不取整
	if got := TotalPayout([]Match{{Payout: 0.3}}, Multipliers{Symbols: 1, Patterns: 1.1}); got == math.Floor(got) {
		t.Fatalf("payout should not be rounded: %v", got)
	}
	if TotalPayout(nil, DefaultMultipliers()) != 0 {
		t.Fatalf("expected zero for no matches")
	}
}

func TestDetectSequence(t *testing.T) {
	ss := spec.SequenceSetting{Enabled: true}
	if err := ss.Init(spec.DefaultSymbols()); err != nil {
		t.Fatalf("init err: %v", err)
	}
	g := grid.Filled(size3, "lemon")
	if got := DetectSequence(g, ss); got != SequenceNone {
		t.Fatalf("expected none, got %q", got)
	}
	for i := range 3 {
		g[0][i] = "seven"
	}
	if got := DetectSequence(g, ss); got != Sequence666 {
		t.Fatalf("expected 666, got %q", got)
	}
	for i := range 3 {
		g[1][i] = "seven"
	}
	if got := DetectSequence(g, ss); got != Sequence999 {
		t.Fatalf("expected 999, got %q", got)
	}
	if got := DetectSequence(g, spec.SequenceSetting{}); got != SequenceNone {
		t.Fatalf("disabled setting should detect nothing, got %q", got)
	}
}
