// Package sampler 提供加權抽樣工具，供盤面生成與 luck 強制選圖標使用。
//
//   - AliasTable：O(1) 抽樣、空間與權重總和無關，權重總和大時使用。
//   - LUT：展開成查找表，只做一次 IntN，權重總和小時使用。
//   - ScaleWeights：把設定檔中的浮點權重（例如 1.3、0.8）轉成整數權重。
package sampler

import "github.com/zintix-labs/patternlab/sdk/core"

// Integers 定義所有底層實現為整數型別的集合
type Integers interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Floaters 定義所有底層實現為浮點數型別的集合
type Floaters interface {
	~float32 | ~float64
}

// Picker 由 Core 取亂數並回傳索引；空表回傳 -1。
type Picker interface {
	Pick(c *core.Core) int
}
