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

package patternlab

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/patternlab/catalog"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/buf"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/spec"
)

// brokenCap 最多保留的退役紀錄；滿了代表連續故障，池會自行關閉交由上層處理。
const brokenCap = 100

// MachinePool 管理同一款遊戲的機台。
//
// 健康的機台放在 pool channel 中借出 / 歸還；spin 發生 panic 或 Fatal 錯誤的機台狀態不可信，
// 會被退役並立即補上一台新機，退役當下的 RNG 快照留在 broken 紀錄中，可用 SpinFrom 重現問題局。
type MachinePool struct {
	gameName  string
	gameId    spec.GID
	gs        *spec.GameSetting
	cache     *catalog.Cache // 池內所有機台共用
	cf        core.PRNGFactory
	seedMaker *seedMaker
	size      int

	pool      chan *Machine
	done      chan struct{} // 關閉後不再借出 / 歸還 / 補機
	closeOnce sync.Once

	brokenMu sync.Mutex
	broken   []BrokenMachine

	inflight atomic.Int32
	rebuild  atomic.Int32
	panics   atomic.Int32
	fatals   atomic.Int32

	closeReason atomic.Value // string
	closeSnap   atomic.Pointer[poolCloseSnap]
}

// BrokenMachine 一台被退役機台的紀錄
type BrokenMachine struct {
	GameID spec.GID  `json:"gid"`
	Spins  int       `json:"spins"`  // 退役前已完成的局數
	Reason string    `json:"reason"` // panic / fatal 的訊息
	Snap   []byte    `json:"-"`      // 退役當下的 RNG 快照
	At     time.Time `json:"at"`
}

type poolCloseSnap struct {
	inflight, avail, broken int
}

// newMachinePool 預先建立 n 台（至少 1 台）機台，seed 由 seedMaker 依序展開。
func newMachinePool(n int, gs *spec.GameSetting, cache *catalog.Cache, cf core.PRNGFactory, seed int64) (*MachinePool, error) {
	n = max(1, n)
	p := &MachinePool{
		gameName:  gs.GameName,
		gameId:    gs.GameID,
		gs:        gs,
		cache:     cache,
		cf:        cf,
		seedMaker: newSeedMaker(seed),
		size:      n,
		pool:      make(chan *Machine, n),
		done:      make(chan struct{}),
	}
	p.closeReason.Store("")
	for i := 0; i < n; i++ {
		m, err := p.build()
		if err != nil {
			return nil, err
		}
		p.pool <- m
	}
	return p, nil
}

func (p *MachinePool) build() (*Machine, error) {
	return newMachineWithSeed(p.gs, p.cache, p.cf, p.seedMaker.next(), false)
}

// Spin 借一台機台執行下一局
func (p *MachinePool) Spin(ctx context.Context) (*buf.SpinResult, error) {
	return p.with(ctx, func(m *Machine) (*buf.SpinResult, error) {
		return m.Spin(ctx)
	})
}

// SpinFrom 借一台機台回放一局（機台自身的 RNG 流水不受影響）
func (p *MachinePool) SpinFrom(ctx context.Context, start []byte, spin int) (*buf.SpinResult, error) {
	return p.with(ctx, func(m *Machine) (*buf.SpinResult, error) {
		return m.SpinFrom(ctx, start, spin)
	})
}

// with 借出機台執行 fn；panic 轉為 Fatal 錯誤，結束後依結果歸還或退役。
func (p *MachinePool) with(ctx context.Context, fn func(m *Machine) (*buf.SpinResult, error)) (sr *buf.SpinResult, err error) {
	m, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			sr, err = nil, errs.NewFatal(fmt.Sprintf("machine %s panic: %v", p.gameName, r))
			err = p.retire(m, err)
			return
		}
		if errs.IsFatal(err) {
			p.fatals.Add(1)
			err = p.retire(m, err)
			return
		}
		// request / validation 類錯誤不影響機台狀態
		p.release(m)
	}()

	sr, err = fn(m)
	if err != nil {
		sr = nil
	}
	return sr, err
}

func (p *MachinePool) acquire(ctx context.Context) (*Machine, error) {
	select {
	case <-p.done:
		return nil, errs.NewFatal("machine pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return nil, canceled(ctx.Err())
	case m := <-p.pool:
		if m == nil {
			return nil, errs.NewFatal("machine pool got nil machine")
		}
		p.inflight.Add(1)
		return m, nil
	}
}

// release 歸還健康的機台；池已關閉時直接丟棄。
func (p *MachinePool) release(m *Machine) {
	p.inflight.Add(-1)
	select {
	case <-p.done:
	case p.pool <- m:
	}
}

// retire 記錄壞機台並補上新機，回傳要交給呼叫端的錯誤。
func (p *MachinePool) retire(m *Machine, cause error) error {
	p.inflight.Add(-1)
	if p.Closed() {
		return cause
	}

	rec := BrokenMachine{GameID: p.gameId, Spins: m.Spins(), Reason: cause.Error(), At: time.Now()}
	if snap, err := m.SnapshotCore(); err == nil {
		rec.Snap = snap
	}
	p.brokenMu.Lock()
	full := len(p.broken) >= brokenCap
	if !full {
		p.broken = append(p.broken, rec)
	}
	p.brokenMu.Unlock()
	if full {
		p.closeWithReason("overwhelmed_by_failures")
		return cause
	}

	nm, err := p.build()
	p.rebuild.Add(1)
	if err != nil {
		p.closeWithReason("rebuild_failed")
		return errs.NewFatal(fmt.Sprintf("machine %s can not build", p.gameName))
	}
	select {
	case <-p.done:
	case p.pool <- nm:
	}
	return cause
}

// Broken 退役紀錄的複本
func (p *MachinePool) Broken() []BrokenMachine {
	p.brokenMu.Lock()
	defer p.brokenMu.Unlock()
	return append([]BrokenMachine(nil), p.broken...)
}

// DrainBroken 取出並清空退役紀錄
func (p *MachinePool) DrainBroken() []BrokenMachine {
	p.brokenMu.Lock()
	defer p.brokenMu.Unlock()
	out := p.broken
	p.broken = nil
	return out
}

// Close 進入關閉狀態，之後的 Spin 直接回 Fatal。
func (p *MachinePool) Close() {
	p.closeWithReason("closed")
}

func (p *MachinePool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 只有第一次呼叫會生效；關閉瞬間的 inflight / available / broken 會留下快照。
func (p *MachinePool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.brokenMu.Lock()
		nb := len(p.broken)
		p.brokenMu.Unlock()
		p.closeSnap.Store(&poolCloseSnap{
			inflight: int(p.inflight.Load()),
			avail:    len(p.pool),
			broken:   nb,
		})
		close(p.done)
	})
}

func (p *MachinePool) ClosedReason() string {
	s, _ := p.closeReason.Load().(string)
	return s
}

func (p *MachinePool) GameName() string { return p.gameName }

// Available 當下可借出的機台數，高併發下為近似值。
func (p *MachinePool) Available() int { return len(p.pool) }

func (p *MachinePool) Inflight() int { return int(p.inflight.Load()) }

// MachinePoolMetrics 拉取式觀測快照，server 的 Prometheus collector 在每次 scrape 時讀取。
//
// Close* 欄位只在關閉時寫入一次，尚未關閉時為 -1。
type MachinePoolMetrics struct {
	GameName string   `json:"game_name"`
	GameID   spec.GID `json:"game_id"`

	PoolSize      int    `json:"pool_size"`
	Available     int    `json:"available"`
	Inflight      int    `json:"inflight"`
	BrokenBacklog int    `json:"broken_backlog"` // 尚未被 DrainBroken 取走的退役紀錄
	Rebuild       int    `json:"rebuild"`
	Panics        int    `json:"panics"`
	Fatals        int    `json:"fatals"`
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`

	CloseInflight int `json:"close_inflight"`
	CloseAvail    int `json:"close_avail"`
	CloseBroken   int `json:"close_broken"`
}

func (p *MachinePool) Metrics() MachinePoolMetrics {
	p.brokenMu.Lock()
	nb := len(p.broken)
	p.brokenMu.Unlock()
	m := MachinePoolMetrics{
		GameName:      p.gameName,
		GameID:        p.gameId,
		PoolSize:      p.size,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: nb,
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: -1,
		CloseAvail:    -1,
		CloseBroken:   -1,
	}
	if s := p.closeSnap.Load(); s != nil {
		m.CloseInflight, m.CloseAvail, m.CloseBroken = s.inflight, s.avail, s.broken
	}
	return m
}
