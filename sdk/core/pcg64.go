package core

import (
	r2 "math/rand/v2"

	"github.com/zintix-labs/patternlab/errs"
)

// PCG64 以標準庫 math/rand/v2 的 PCG（128-bit 狀態、64-bit 輸出）為來源，
// 無偏的 bounded 取樣與 53-bit Float64 直接交給 rand.Rand。
type PCG64 struct {
	src *r2.PCG
	r   *r2.Rand
}

// newPCG64WithSeed int64 seed 經 splitmix64 展開成 PCG 的兩個 64-bit seed，
// 相鄰的 seed 也會得到互不相關的序列。
func newPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	src := r2.NewPCG(splitmix64(x), splitmix64(x^0xda942042e4dd58b5))
	return &PCG64{src: src, r: r2.New(src)}
}

func (p *PCG64) Uint64() uint64 { return p.src.Uint64() }

func (p *PCG64) Float64() float64 { return p.r.Float64() }

// UintN max == 0 回傳 0
func (p *PCG64) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(p.r.Uint64N(uint64(max)))
}

// IntN max <= 0 回傳 -1
func (p *PCG64) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(p.r.Uint64N(uint64(max)))
}

func (p *PCG64) Snapshot() ([]byte, error) { return p.src.MarshalBinary() }

func (p *PCG64) Restore(data []byte) error {
	if err := p.src.UnmarshalBinary(data); err != nil {
		return errs.Wrap(err, "pcg64 restore failed")
	}
	return nil
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
