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
	"crypto/rand"
	"math"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/zintix-labs/patternlab/catalog"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/buf"
	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/sdk/effect"
	"github.com/zintix-labs/patternlab/sdk/gen"
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/sdk/ops"
	"github.com/zintix-labs/patternlab/sdk/resolve"
	"github.com/zintix-labs/patternlab/spec"
)

// Machine 封裝一台「可對外提供 Spin」的機台。
//
// Machine 持有 RNG（Core）、盤面生成器、目前的基礎盤面尺寸與效果列表；
// pattern catalog 則來自同一款遊戲共用的 catalog.Cache，尺寸不變時不會重新生成。
//
// 並發語意：
//   - 同一台 Machine 的 Spin 以 mutex 序列化，一次 spin 完全在呼叫端 goroutine 上同步完成。
//   - 若要併發模擬，由更高層建立多台 Machine 分散到不同 worker（見 Simulator / MachinePool）。
//
// 每次 Spin 都回傳新的 *buf.SpinResult，呼叫端可以直接保留。
type Machine struct {
	gameName string            // 遊戲名稱（來自 GameSetting.GameName，主要用於觀測/日誌）
	gameId   spec.GID          // 遊戲 ID
	gs       *spec.GameSetting // 已初始化的設定（唯讀）
	core     *core.Core        // RNG 核心
	gen      *gen.GridGenerator
	cache    *catalog.Cache // 同款遊戲共用
	effects  []effect.Effect
	base     effect.Modifiers // 設定檔的起始 luck / 倍率
	size     spec.GridSize    // 基礎盤面尺寸（效果的增量套在這之上）
	spins    int              // 已完成的 spin 數
	mu       sync.Mutex
	initseed int64 // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
	isSim    bool  // 模擬模式不產生 spin id 與 RNG 快照
}

// newMachine 以「隨機 seed」建立 Machine。
//
// 這裡使用 crypto/rand 產生 seed，在對外服務情境避免可預測 RNG，同時把 seed 記錄在 initseed 以便追溯。
func newMachine(gs *spec.GameSetting, cache *catalog.Cache, cf core.PRNGFactory, isSim bool) (*Machine, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, cache, cf, seed, isSim)
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// 同一份 GameSetting + 同一個 seed 會得到一致的 spin 序列。
// cache 為 nil 時建立機台私有的 catalog 快取。
func newMachineWithSeed(gs *spec.GameSetting, cache *catalog.Cache, cf core.PRNGFactory, seed int64, isSim bool) (*Machine, error) {
	if gs == nil {
		return nil, errs.NewFatal("game setting is nil")
	}
	if cf == nil {
		return nil, errs.NewFatal("prng factory is nil")
	}
	effects, err := effect.FromSettings(gs.Effects)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache, err = catalog.NewCache(catalog.DefaultCacheSize, gs.PatternSetting, &gs.SymbolSetting)
		if err != nil {
			return nil, err
		}
	}
	c := core.New(cf.New(seed))
	g, err := gen.NewGridGenerator(c, gs.Grid, &gs.SymbolSetting)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		gameName: gs.GameName,
		gameId:   gs.GameID,
		gs:       gs,
		core:     c,
		gen:      g,
		cache:    cache,
		effects:  effects,
		base:     effect.Base(gs),
		size:     gs.Grid,
		initseed: seed,
		isSim:    isSim,
	}
	return m, nil
}

// Spin 執行下一局。
//
// 流程：評估效果 -> 取得（或生成）該尺寸的 catalog -> 生成盤面 -> luck 強制 ->
// 比對 -> 處理重疊 -> 特殊序列 -> 計算總派彩。
// 發生錯誤時機台的局數不會前進。
func (m *Machine) Spin(ctx context.Context) (*buf.SpinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	var startsnap []byte
	if !m.isSim {
		s, err := m.core.Snapshot()
		if err != nil {
			return nil, errs.NewFatal("before snapshot error " + err.Error())
		}
		startsnap = s
	}

	sr, err := m.spin(m.spins + 1)
	if err != nil {
		return nil, err
	}
	m.spins++

	if !m.isSim {
		aftersnap, err := m.core.Snapshot()
		if err != nil {
			return nil, errs.NewFatal("after snapshot error " + err.Error())
		}
		sr.StartCoreSnap = startsnap
		sr.AfterCoreSnap = aftersnap
	}
	return sr, nil
}

// SpinFrom 從指定的 RNG 起始快照重現一局（回放 / 續玩）。
//
// spin 為該局的局號（決定 every_nth_spin 效果），<= 0 時視為 1。
// 機台本身的 RNG 狀態與局數在結束後會還原，不受影響。
func (m *Machine) SpinFrom(ctx context.Context, start []byte, spin int) (*buf.SpinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}
	if len(start) == 0 {
		return nil, errs.NewWarn("start snapshot is required")
	}
	if spin <= 0 {
		spin = 1
	}

	rem, err := m.core.Snapshot()
	if err != nil {
		return nil, errs.NewFatal("before snapshot error " + err.Error())
	}
	if err := m.core.Restore(start); err != nil {
		// 還原失敗時機台狀態可能已被部分覆寫，先嘗試退回
		if e := m.core.Restore(rem); e != nil {
			return nil, errs.NewFatal("fall back err " + e.Error())
		}
		return nil, errs.NewWarn("restore core err " + err.Error())
	}

	sr, spinErr := m.spin(spin)
	var aftersnap []byte
	if spinErr == nil {
		aftersnap, spinErr = m.core.Snapshot()
	}

	if err := m.core.Restore(rem); err != nil {
		return nil, errs.NewFatal("restore core back err " + err.Error())
	}
	if spinErr != nil {
		return nil, spinErr
	}
	sr.StartCoreSnap = append([]byte(nil), start...)
	sr.AfterCoreSnap = aftersnap
	return sr, nil
}

// spin 執行一局的核心流程，不處理鎖與快照。
func (m *Machine) spin(n int) (*buf.SpinResult, error) {
	mods := effect.Apply(m.effects, m.base, effect.State{Spin: n, Core: m.core})
	size := mods.GridSize(m.size)

	entry, err := m.cache.Entry(size)
	if err != nil {
		return nil, err
	}

	g := grid.New(size)
	m.gen.Fill(g)
	forced := ops.ForceLuck(m.core, g, mods.Luck, m.gen.Symbols)

	raw, err := entry.Calc.Calc(g)
	if err != nil {
		// 盤面由機台自己生成，比對失敗代表引擎狀態不可信
		e := errs.NewFatal("calc generated grid failed")
		e.Cause = err
		return nil, e
	}
	resolved := resolve.Resolve(raw)

	sr := &buf.SpinResult{
		GameName:  m.gameName,
		GameID:    m.gameId,
		Spin:      n,
		Size:      size,
		Grid:      g,
		Forced:    forced,
		Raw:       raw,
		Resolved:  resolved,
		Sequence:  calc.DetectSequence(g, m.gs.SequenceSetting),
		Modifiers: mods,
		Payout:    calc.SumPayout(resolved),
		Total:     calc.TotalPayout(resolved, mods.Multipliers()),
	}
	if !m.isSim {
		sr.ID = uuid.New()
	}
	return sr, nil
}

// Resize 切換基礎盤面尺寸（之後每局的效果增量都套在新尺寸上）。
//
// 新尺寸的 catalog 會先建好；舊尺寸的 catalog 自快取中移除。
func (m *Machine) Resize(size spec.GridSize) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := size.Validate(); err != nil {
		return err
	}
	if size == m.size {
		return nil
	}
	if _, err := m.cache.Entry(size); err != nil {
		return err
	}
	if err := m.gen.Resize(size); err != nil {
		return err
	}
	old := m.size
	m.size = size
	m.cache.Invalidate(old)
	return nil
}

// SnapshotCore 取得 Core 狀態
func (m *Machine) SnapshotCore() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態（局數不變）
func (m *Machine) RestoreCore(src []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.core.Restore(src)
}

func (m *Machine) GameName() string {
	return m.gameName
}

func (m *Machine) GameID() spec.GID {
	return m.gameId
}

// Size 目前的基礎盤面尺寸
func (m *Machine) Size() spec.GridSize {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Spins 已完成的局數
func (m *Machine) Spins() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spins
}

func (m *Machine) InitSeed() int64 {
	return m.initseed
}

func (m *Machine) Cache() *catalog.Cache {
	return m.cache
}

// Setting 機台使用的遊戲設定（唯讀，請勿修改）
func (m *Machine) Setting() *spec.GameSetting {
	return m.gs
}

// canceled 包裝 context 的取消 / 逾時，保留 cause 供上層以 errors.Is 判斷。
func canceled(cause error) error {
	e := errs.NewWarn("spin canceled/timeout")
	e.Cause = cause
	return e
}

// cryptoSeed 以 crypto/rand 產生非負 seed
func cryptoSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}
