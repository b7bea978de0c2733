package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/patternlab/sdk/core"
)

// AliasTable 整數版 Vose Alias Method。
//
// 每個槽位只放「自己」與「別名」兩個候選，抽樣固定兩次 IntN：
// 先選槽位 idx，再以 IntN(Total) < Prob[idx] 決定取自己或別名。
// Prob 是權重乘上 Size 的整數值，全程不經過浮點比較。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 根據非負整數權重建立 AliasTable。
//
// 權重可為零，但不可全為零或為負；w*n 溢位也會 panic（屬於程式錯誤，設定檔輸入請先走 ScaleWeights）。
func BuildAliasTable(weights []int) *AliasTable {
	n := len(weights)
	if n == 0 {
		return &AliasTable{Prob: []int{}, Aliases: []int{}}
	}

	total := 0
	for _, w := range weights {
		if w < 0 {
			panic("AliasTable: negative weight encountered")
		}
		if total > math.MaxInt-w {
			panic("AliasTable: total weight overflow int range")
		}
		total += w
	}
	if total == 0 {
		panic("AliasTable: all weights are zero")
	}
	if !isSafeMultiply(total, n) {
		panic("AliasTable: weights are too large, causing overflow")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		prob[i] = w * n
		if prob[i] < total {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	// sum(prob) == total*n 在每一步都成立
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		prob[l] = prob[l] + prob[s] - total
		if prob[l] < total {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的槽位必為滿格
	for _, i := range large {
		prob[i] = total
	}
	for _, i := range small {
		prob[i] = total
	}

	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: total}
}

func isSafeMultiply(a, b int) bool {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi == 0 && lo <= math.MaxInt64
}

// Pick 抽出一個索引，空表回傳 -1。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
