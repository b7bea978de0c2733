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

package core

import (
	"math"
	"slices"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestCorePickAndShuffle(t *testing.T) {
	c := New(Default().New(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}

	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	if len(src) != 4 {
		t.Fatalf("unexpected length after shuffle")
	}
	want := []int{1, 2, 3, 4}
	got := slices.Clone(src)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		t.Fatalf("shuffle changed elements: %v", src)
	}
}

func TestSampleIndicesUniqueAndClamped(t *testing.T) {
	c := New(Default().New(3))
	got := c.SampleIndices(9, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 indices, got %d", len(got))
	}
	seen := map[int]bool{}
	for _, v := range got {
		if v < 0 || v >= 9 {
			t.Fatalf("index out of range: %d", v)
		}
		if seen[v] {
			t.Fatalf("duplicate index %d in %v", v, got)
		}
		seen[v] = true
	}
	// k 大於 n 時夾到 n，且必為完整排列
	all := c.SampleIndices(4, 10)
	slices.Sort(all)
	if !slices.Equal(all, []int{0, 1, 2, 3}) {
		t.Fatalf("expected full permutation, got %v", all)
	}
	if c.SampleIndices(4, 0) != nil || c.SampleIndices(0, 3) != nil {
		t.Fatalf("expected nil for empty sample")
	}
}

func TestSampleIndicesUniform(t *testing.T) {
	// 每個索引被選中的機率應為 k/n
	c := New(Default().New(5))
	const n, k, rounds = 6, 2, 60000
	hits := make([]int, n)
	for range rounds {
		for _, v := range c.SampleIndices(n, k) {
			hits[v]++
		}
	}
	want := float64(rounds) * k / n
	for i, h := range hits {
		if math.Abs(float64(h)-want)/want > 0.03 {
			t.Fatalf("index %d hit %d times, want about %.0f", i, h, want)
		}
	}
}

func TestPCG32SnapshotRestore(t *testing.T) {
	f, err := FactoryOf(KindPCG32)
	if err != nil {
		t.Fatalf("factory err: %v", err)
	}
	r := f.New(42)
	_ = r.Uint64()
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot err: %v", err)
	}
	want := []uint64{r.Uint64(), r.Uint64(), r.Uint64()}

	r2 := f.New(1)
	if err := r2.Restore(snap); err != nil {
		t.Fatalf("restore err: %v", err)
	}
	for i, w := range want {
		if got := r2.Uint64(); got != w {
			t.Fatalf("restored stream mismatch at %d", i)
		}
	}
	if err := r2.Restore([]byte{1, 2}); err == nil {
		t.Fatalf("expected error for short snapshot")
	}
}

func TestPCG64SnapshotRestore(t *testing.T) {
	r := Default().New(8)
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot err: %v", err)
	}
	a := r.Uint64()
	if err := r.Restore(snap); err != nil {
		t.Fatalf("restore err: %v", err)
	}
	if b := r.Uint64(); a != b {
		t.Fatalf("expected same value after restore")
	}
}

func TestFactoryOf(t *testing.T) {
	if _, err := FactoryOf("mt19937"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	f, err := FactoryOf("")
	if err != nil {
		t.Fatalf("default factory err: %v", err)
	}
	if _, ok := f.(*DefaultPRNG); !ok {
		t.Fatalf("expected default pcg64 factory, got %T", f)
	}
}

func TestPCG32Bounded(t *testing.T) {
	p := newPCG32WithSeed(7)
	for _, n := range []int{1, 3, 7, 1 << 20, 1<<33 + 5} {
		for i := 0; i < 500; i++ {
			if v := p.IntN(n); v < 0 || v >= n {
				t.Fatalf("IntN(%d) = %d out of range", n, v)
			}
		}
	}
	if p.IntN(0) != -1 || p.UintN(0) != 0 {
		t.Fatalf("zero bound should return sentinel")
	}
	bad := make([]byte, 16)
	if err := p.Restore(bad); err == nil {
		t.Fatalf("expected error for even increment")
	}
}
