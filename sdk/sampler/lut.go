package sampler

import (
	"fmt"
	"math"

	"github.com/zintix-labs/patternlab/sdk/core"
)

const maxLUTCap uint64 = 10_000_000 // 約 80MB (int slice)

// LUT 查找表加權抽樣：索引 i 在表中重複 weights[i] 次，抽樣只需一次 IntN。
//
// 例：權重 [3,5,0] 展開為 [0,0,0,1,1,1,1,1]。
// 記憶體與權重總和成正比，總和超過 100_000 建議改用 AliasTable。
type LUT []int

// BuildLUT 根據非負整數權重建立查找表，負權重、全零或超過容量上限會 panic。
func BuildLUT[T Integers](src []T) LUT {
	if len(src) == 0 {
		return LUT{}
	}

	acc := uint64(0)
	for _, v := range src {
		if v < 0 {
			panic("lut: negative value encountered")
		}
		uv := uint64(v)
		if acc > math.MaxUint64-uv {
			panic("lut: total weight overflow uint64 range")
		}
		acc += uv
	}
	if acc == 0 {
		panic("lut: all weights are zero")
	}
	if acc > maxLUTCap {
		panic(fmt.Sprintf("lut: total weight %d exceeds limit %d, use alias table instead", acc, maxLUTCap))
	}

	lut := make(LUT, 0, int(acc))
	for i, v := range src {
		for j := T(0); j < v; j++ {
			lut = append(lut, i)
		}
	}
	return lut
}

// Pick 從 LUT 中隨機取一個索引，空表回傳 -1。
func (l LUT) Pick(c *core.Core) int {
	return c.Pick(l)
}
