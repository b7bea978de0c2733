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

package sampler

import (
	"math"
	"testing"

	"github.com/zintix-labs/patternlab/sdk/core"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// checkDistribution 驗證抽樣結果的分佈是否符合預期權重
func checkDistribution(t *testing.T, name string, weights []int, samples []int, tolerance float64) {
	t.Helper()
	totalW := 0
	for _, w := range weights {
		totalW += w
	}
	if totalW == 0 {
		return
	}

	counts := make(map[int]int)
	for _, idx := range samples {
		counts[idx]++
	}

	totalSamples := len(samples)
	for i, w := range weights {
		if w == 0 {
			if counts[i] > 0 {
				t.Errorf("[%s] expected 0 samples for index %d (weight 0), got %d", name, i, counts[i])
			}
			continue
		}
		expectedProb := float64(w) / float64(totalW)
		actualProb := float64(counts[i]) / float64(totalSamples)
		diff := math.Abs(expectedProb - actualProb)

		if diff > tolerance {
			t.Errorf("[%s] index %d: expected prob %.3f, got %.3f (diff %.3f > tol %.3f)",
				name, i, expectedProb, actualProb, diff, tolerance)
		}
	}
}

func draw(c *core.Core, p Picker, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = p.Pick(c)
	}
	return out
}

// -----------------------------------------------------------------------------
// Tests for Alias Table
// -----------------------------------------------------------------------------

// TestAliasTable_Distribution 驗證 Alias Table 的抽樣分佈
func TestAliasTable_Distribution(t *testing.T) {
	c := core.New(core.Default().New(17))
	weights := []int{10, 20, 0, 70}
	at := BuildAliasTable(weights)
	checkDistribution(t, "AliasTable", weights, draw(c, at, 100000), 0.01)
}

// TestAliasTable_Empty 空表回傳 -1
func TestAliasTable_Empty(t *testing.T) {
	c := core.New(core.Default().New(1))
	if got := BuildAliasTable(nil).Pick(c); got != -1 {
		t.Fatalf("expected -1 from empty table, got %d", got)
	}
}

// TestAliasTable_Panics 全零權重、負權重、總權重溢位應觸發 panic
func TestAliasTable_Panics(t *testing.T) {
	assertPanic(t, func() {
		BuildAliasTable([]int{0, 0, 0})
	}, "All zero weights")

	assertPanic(t, func() {
		BuildAliasTable([]int{10, -1})
	}, "Negative weight")

	assertPanic(t, func() {
		BuildAliasTable([]int{math.MaxInt, 1})
	}, "Total overflow")
}

// -----------------------------------------------------------------------------
// Tests for Look-Up Table (LUT)
// -----------------------------------------------------------------------------

// TestLUT_Distribution 驗證 LUT 的抽樣分佈
func TestLUT_Distribution(t *testing.T) {
	c := core.New(core.Default().New(23))
	weights := []int{1, 2, 7}
	lut := BuildLUT(weights)
	if len(lut) != 10 {
		t.Fatalf("expected lut length 10, got %d", len(lut))
	}
	checkDistribution(t, "LUT", weights, draw(c, lut, 20000), 0.015)
}

// TestLUT_Panics 超過容量上限、負權重、全零權重應觸發 panic
func TestLUT_Panics(t *testing.T) {
	assertPanic(t, func() {
		BuildLUT([]int{int(maxLUTCap) + 1})
	}, "Exceed MaxLUTCapacity")

	assertPanic(t, func() {
		BuildLUT([]int{10, -10})
	}, "Negative weight")

	assertPanic(t, func() {
		BuildLUT([]int{0, 0})
	}, "All zero weights")
}

// -----------------------------------------------------------------------------
// Tests for float weights
// -----------------------------------------------------------------------------

func TestScaleWeights(t *testing.T) {
	got, err := ScaleWeights([]float64{1.3, 1.0, 0.8, 0.5, 0.001}, DefaultPrecision)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []int{130, 100, 80, 50, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scaled weights = %v, want %v", got, want)
		}
	}

	bad := [][]float64{nil, {-1, 2}, {0, 0}, {math.NaN()}, {math.Inf(1)}}
	for _, ws := range bad {
		if _, err := ScaleWeights(ws, DefaultPrecision); err == nil {
			t.Fatalf("expected error for %v", ws)
		}
	}
	if _, err := ScaleWeights([]float64{1}, 0); err == nil {
		t.Fatalf("expected error for zero precision")
	}
}

// TestNewWeighted_Distribution 浮點權重的抽樣比例應與設定一致
func TestNewWeighted_Distribution(t *testing.T) {
	c := core.New(core.Default().New(5))
	fw := []float64{1.3, 1.3, 1.0, 1.0, 0.8, 0.8, 0.5}
	p, err := NewWeighted(fw)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := p.(LUT); !ok {
		t.Fatalf("expected LUT for small total, got %T", p)
	}
	iw, _ := ScaleWeights(fw, DefaultPrecision)
	checkDistribution(t, "Weighted", iw, draw(c, p, 100000), 0.01)
}

func TestNewWeighted_LargeUsesAlias(t *testing.T) {
	p, err := NewWeighted([]float64{1000, 500, 250})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := p.(*AliasTable); !ok {
		t.Fatalf("expected alias table for large total, got %T", p)
	}
}
