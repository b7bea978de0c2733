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

// Package core 提供整個引擎共用的亂數核心。
//
// 盤面生成、luck 強制選格、圖標抽樣都只透過 *Core 取亂數，
// 因此同一個 seed 與同一份設定必定得到相同的 spin 序列（模擬、回放、測試都依賴這點）。
package core

import (
	"strings"

	"github.com/zintix-labs/patternlab/errs"
)

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// bounded 取樣（UintN / IntN）與 Float64 的精度交給各 PRNG 自己實作，
// 32-bit 輸出的 PCG32 與 64-bit 輸出的 PCG64 各自走最適合的路徑。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：同一實作、同一版本下 New(seed) 必須是決定性的。
// 機台與模擬 worker 的子 seed 都由一個 base seed 派生，因此不提供不帶 seed 的建構方式。
type PRNGFactory interface {
	New(int64) PRNG
}

const (
	KindPCG64 = "pcg64"
	KindPCG32 = "pcg32"
)

// DefaultPRNG 預設工廠（PCG64）
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// PCG32Factory 32-bit 輸出的 PCG 工廠，適合 32-bit 平台。
type PCG32Factory struct{}

func (PCG32Factory) New(seed int64) PRNG {
	return newPCG32WithSeed(seed)
}

// FactoryOf 依名稱選擇工廠，空字串為預設 PCG64。
func FactoryOf(kind string) (PRNGFactory, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindPCG64:
		return Default(), nil
	case KindPCG32:
		return PCG32Factory{}, nil
	default:
		return nil, errs.Warnf("unknown prng kind: %q", kind)
	}
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// ShuffleInts 以 Fisher-Yates 就地重排，所有排列機率相等。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}

	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// SampleIndices 從 [0,n) 中不重複地均勻選出 k 個索引。
//
// 以 Fisher-Yates 的前 k 步完成（partial shuffle），k 超出範圍時會被夾在 [0,n]。
// 回傳順序即為抽出順序。
func (c *Core) SampleIndices(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	k = min(k, n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + c.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k:k]
}
