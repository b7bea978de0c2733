package core

import (
	"encoding/binary"
	"math/bits"

	"github.com/zintix-labs/patternlab/errs"
)

const pcg32Mult = 6364136223846793005

// PCG32 64-bit 狀態、32-bit 輸出的 PCG XSH-RR，給 32-bit 平台或需要較小快照的場合。
//
// 快照為 state || inc 共 16 bytes（big endian）。
type PCG32 struct {
	state uint64
	inc   uint64
}

// newPCG32WithSeed 固定使用 stream 1，依 PCG 參考實作的流程初始化。
func newPCG32WithSeed(seed int64) *PCG32 {
	p := &PCG32{inc: 1<<1 | 1}
	p.next()
	p.state += uint64(seed)
	p.next()
	return p
}

func (p *PCG32) next() uint32 {
	old := p.state
	p.state = old*pcg32Mult + p.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	return bits.RotateLeft32(xorshifted, -int(old>>59))
}

func (p *PCG32) Uint64() uint64 {
	return uint64(p.next())<<32 | uint64(p.next())
}

// Float64 32-bit 精度
func (p *PCG32) Float64() float64 {
	return float64(p.next()) / (1 << 32)
}

// UintN max == 0 回傳 0
func (p *PCG32) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(p.bounded(uint64(max)))
}

// IntN max <= 0 回傳 -1
func (p *PCG32) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(p.bounded(uint64(max)))
}

// bounded [0,n) 無偏取樣（Lemire 乘法 + 拒絕），n 在 32-bit 內時每次只消耗一個輸出。
func (p *PCG32) bounded(n uint64) uint64 {
	if n < 1<<32 {
		m := uint64(p.next()) * n
		if uint32(m) < uint32(n) {
			thresh := uint32(-uint32(n)) % uint32(n)
			for uint32(m) < thresh {
				m = uint64(p.next()) * n
			}
		}
		return m >> 32
	}
	hi, lo := bits.Mul64(p.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(p.Uint64(), n)
		}
	}
	return hi
}

func (p *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 16)
	b = binary.BigEndian.AppendUint64(b, p.state)
	return binary.BigEndian.AppendUint64(b, p.inc), nil
}

func (p *PCG32) Restore(data []byte) error {
	if len(data) != 16 {
		return errs.Warnf("pcg32 restore: want 16 bytes, got %d", len(data))
	}
	inc := binary.BigEndian.Uint64(data[8:])
	if inc&1 == 0 {
		return errs.NewWarn("pcg32 restore: increment must be odd")
	}
	p.state, p.inc = binary.BigEndian.Uint64(data[:8]), inc
	return nil
}
