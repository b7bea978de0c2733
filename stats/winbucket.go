package stats

import "sort"

// PayoutBuckets
//
// 用來快速定位單局派彩 -> DistRecord 位置
//
// 請勿修改預設值
//   - 派彩區間: [0,0], (0,10), [10,20), [20,50), [50,100), [100,200), [200,500), [500,1000), [1000,+inf)
type PayoutBuckets struct {
	upper  []float64 // (0,...) 之後每個區間的上界
	labels []string
}

// Buckets 預設的派彩區間
var Buckets = &PayoutBuckets{
	upper:  []float64{10, 20, 50, 100, 200, 500, 1000},
	labels: []string{"[0,0]", "(0,10)", "[10,20)", "[20,50)", "[50,100)", "[100,200)", "[200,500)", "[500,1000)", "[1000,+inf)"},
}

func (b *PayoutBuckets) Labels() []string {
	return b.labels
}

func (b *PayoutBuckets) Len() int {
	return len(b.labels)
}

// Index 回傳 payout 所屬區間；0、負數與 NaN 一律落在 [0,0]。
func (b *PayoutBuckets) Index(payout float64) int {
	if !(payout > 0) {
		return 0
	}
	i := sort.Search(len(b.upper), func(i int) bool { return b.upper[i] > payout })
	return 1 + i
}
