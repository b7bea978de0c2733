package sampler

import (
	"math"

	"github.com/zintix-labs/patternlab/errs"
)

// DefaultPrecision 浮點權重轉整數時的放大倍數（保留小數點後兩位）。
const DefaultPrecision = 100

// lutThreshold 權重總和在此以下使用 LUT，以上使用 AliasTable。
const lutThreshold = 100_000

// ScaleWeights 把浮點權重乘上 precision 後四捨五入成整數。
//
// 負數、NaN、Inf 或全部為零都回傳 Warn 錯誤；
// 非零權重經過四捨五入後不會變成 0（至少保留 1），避免小權重圖標被靜默移除。
func ScaleWeights[F Floaters](ws []F, precision int) ([]int, error) {
	if len(ws) == 0 {
		return nil, errs.NewWarn("empty weights")
	}
	if precision < 1 {
		return nil, errs.Warnf("precision must be positive, got %d", precision)
	}
	out := make([]int, len(ws))
	total := 0
	for i, w := range ws {
		f := float64(w)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return nil, errs.Warnf("invalid weight at %d: %v", i, f)
		}
		v := int(math.Round(f * float64(precision)))
		if v == 0 && f > 0 {
			v = 1
		}
		out[i] = v
		total += v
	}
	if total == 0 {
		return nil, errs.NewWarn("all weights are zero")
	}
	return out, nil
}

// NewWeighted 依浮點權重建立 Picker，依總和自動選擇 LUT 或 AliasTable。
func NewWeighted[F Floaters](ws []F) (Picker, error) {
	iw, err := ScaleWeights(ws, DefaultPrecision)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, v := range iw {
		total += v
	}
	if total <= lutThreshold {
		return BuildLUT(iw), nil
	}
	return BuildAliasTable(iw), nil
}
