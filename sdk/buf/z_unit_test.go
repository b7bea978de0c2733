package buf

import (
	"math"
	"testing"

	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/effect"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/sdk/ops"
	"github.com/zintix-labs/patternlab/sdk/pattern"
)

func match(t pattern.Type, payout float64) calc.Match {
	return calc.Match{Pattern: pattern.Pattern{Type: t}, Payout: payout}
}

func TestSpinResultByType(t *testing.T) {
	sr := &SpinResult{
		Resolved: []calc.Match{
			match(pattern.Line, 10),
			match(pattern.Line, 12),
			match(pattern.Geometric, 15),
		},
		Modifiers: effect.Modifiers{SymbolsMultiplier: 2, PatternsMultiplier: 1.5},
	}
	if !sr.Hit() {
		t.Fatalf("expected hit")
	}
	wins := sr.WinsByType()
	if wins[pattern.Line] != 2 || wins[pattern.Diagonal] != 0 || wins[pattern.Geometric] != 1 {
		t.Fatalf("unexpected wins %v", wins)
	}
	pay := sr.PayoutByType()
	if math.Abs(pay[pattern.Line]-66) > 1e-9 || math.Abs(pay[pattern.Geometric]-45) > 1e-9 {
		t.Fatalf("unexpected payouts %v", pay)
	}
}

func TestSpinResultEmpty(t *testing.T) {
	sr := &SpinResult{}
	if sr.Hit() || sr.IsForced() {
		t.Fatalf("empty result should not hit or be forced")
	}
	sr.Forced = ops.Forced{Symbol: "seven", Cells: []grid.Pos{{Row: 0, Col: 0}}}
	if !sr.IsForced() {
		t.Fatalf("expected forced")
	}
}
