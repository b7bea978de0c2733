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

// Package patternlab 提供 pattern 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把下列地基組裝在一起，並提供建立 Machine / Simulator / Runtime 的入口：
//  1. Registry：遊戲目錄，定義有哪些遊戲、各自對應的設定檔名稱（ConfigName）。
//  2. PRNGFactory：亂數核心工廠，保證可重現與可審計。
//  3. 每款遊戲一份 catalog.Cache：同款遊戲的所有機台共用已生成的 pattern catalog。
//
// Lab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//
// 典型使用情境：
//
//	lab, _ := patternlab.NewAuto(core.Default(), patternlab.Configs(demo_configs.FS))
//	m, _ := lab.NewMachine(1, false)
//	sr, _ := m.Spin(ctx)
package patternlab

import (
	"bytes"
	"io/fs"
	"strings"
	"sync"

	"github.com/zintix-labs/patternlab/catalog"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把 configs 直接編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊階段：建立 registry、檢查重複與缺漏。
//   - 執行階段：Freeze 之後依據遊戲 ID 產生 Machine，並在 Machine 上執行 Spin。
//
// Registry 的 ID 唯一性只保證在同一個 Lab instance 內。
type Lab struct {
	reg       *catalog.Registry
	cf        core.PRNGFactory
	cacheSize int

	mu     sync.Mutex
	caches map[spec.GID]*catalog.Cache
	sum    []catalog.Summary
}

// New 建立一個 Lab instance（註冊階段）。
//
// cf 不能為 nil；cfgs 至少一個。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	reg, err := catalog.NewRegistry(cfgs...)
	if err != nil {
		return nil, err
	}
	lab := &Lab{
		reg:       reg,
		cf:        cf,
		cacheSize: catalog.DefaultCacheSize,
		caches:    make(map[spec.GID]*catalog.Cache),
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance：註冊所有設定檔後 Freeze。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

// SetCacheSize 設定每款遊戲的 catalog 快取容量，只影響之後才建立的快取。
func (l *Lab) SetCacheSize(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 {
		n = catalog.DefaultCacheSize
	}
	l.cacheSize = n
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.reg.Register(ents...)
}

// RegisterAll
//
// 掃描所有設定檔（.yaml/.yml/.json），解析成 *spec.GameSetting 後，
// 以設定檔內宣告的 GameID/GameName 產生 catalog.Entry 一次性註冊。
//
//  1. Fail-fast：任何一個檔案讀取/解析失敗都會立刻回傳 error。
//  2. 原子性：全部檔案都成功解析後才呼叫 Register，不會出現只註冊一半的狀態。
//  3. 穩定性：依檔名排序處理。
func (l *Lab) RegisterAll() error {
	files := l.reg.ConfigFiles()
	entries := make([]catalog.Entry, 0, len(files))
	for _, name := range files {
		raw, err := l.reg.ReadConfig(name)
		if err != nil {
			return err
		}
		gs, err := catalog.ParseFile(name, raw)
		if err != nil {
			return errs.WrapWithExtra(err, "parse gamesetting failed", name)
		}
		gname := strings.TrimSpace(gs.GameName)
		if gname == "" {
			return errs.Fatalf("game name required: %s", name)
		}
		entries = append(entries, catalog.Entry{
			GID:        gs.GameID,
			Name:       gname,
			ConfigName: name,
		})
	}
	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return l.reg.Register(entries...)
}

func (l *Lab) Freeze() {
	l.reg.Freeze()
}

func (l *Lab) EntryByID(id spec.GID) (catalog.Entry, bool) {
	return l.reg.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.reg.GetByName(name)
}

func (l *Lab) IDs() []spec.GID {
	return l.reg.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.reg.All()
}

// GameSetting 取得已註冊遊戲的設定（每次都是新的實例）
func (l *Lab) GameSetting(id spec.GID) (*spec.GameSetting, error) {
	return l.reg.GameSettingByID(id)
}

// Summary 依 GID 排序的遊戲摘要，第一次呼叫後快取。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.reg.IsFrozen() {
		return nil, errs.NewFatal("registry is not frozen yet")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.reg.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := l.reg.GameSettingByID(id)
		if err != nil {
			return nil, errs.Wrap(err, "parse game setting failed")
		}
		cs = append(cs, catalog.Summary{
			GID:     id,
			Name:    gs.GameName,
			Grid:    gs.Grid,
			Catalog: gs.PatternSetting.Catalog,
			Symbols: gs.SymbolSetting.IDs(),
			Effects: len(gs.Effects),
		})
	}
	l.sum = cs
	return l.sum, nil
}

// Cache 取得（必要時建立）該遊戲共用的 catalog 快取。
func (l *Lab) Cache(id spec.GID) (*catalog.Cache, error) {
	gs, err := l.setting(id)
	if err != nil {
		return nil, err
	}
	return l.cacheFor(gs)
}

// CacheStats 各遊戲快取的統計（只包含已建立的快取）
func (l *Lab) CacheStats() map[spec.GID]catalog.CacheStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[spec.GID]catalog.CacheStats, len(l.caches))
	for id, c := range l.caches {
		out[id] = c.Stats()
	}
	return out
}

// NewMachine 依據 Registry 內的遊戲 ID 建立一台 Machine（seed 由 crypto/rand 產生）。
//
// isSim 為 true 時不產生 spin id 與 RNG 快照，用於大量模擬。
func (l *Lab) NewMachine(id spec.GID, isSim bool) (*Machine, error) {
	gs, err := l.setting(id)
	if err != nil {
		return nil, err
	}
	cache, err := l.cacheFor(gs)
	if err != nil {
		return nil, err
	}
	return newMachine(gs, cache, l.cf, isSim)
}

// NewMachineWithSeed 與 NewMachine 相同，但由呼叫端指定初始 seed。
//
// seed 只是「出生入口」。若要在任意時間點完整重現，請使用 Snapshot/Restore 或 SpinFrom。
func (l *Lab) NewMachineWithSeed(id spec.GID, seed int64, isSim bool) (*Machine, error) {
	gs, err := l.setting(id)
	if err != nil {
		return nil, err
	}
	cache, err := l.cacheFor(gs)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, cache, l.cf, seed, isSim)
}

// NewMachineByJSON 以外部設定（通常是調整中的草稿）建立機台。
//
// 設定的 GameID 與 GameName 必須對應到同一個已註冊的遊戲；此機台使用私有的 catalog 快取。
func (l *Lab) NewMachineByJSON(raw []byte, seed int64) (*Machine, error) {
	cfg, err := l.parseCustom(raw, spec.GetGameSettingByJSON)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, nil, l.cf, seed, true)
}

func (l *Lab) NewMachineByYAML(raw []byte, seed int64) (*Machine, error) {
	cfg, err := l.parseCustom(raw, spec.GetGameSettingByYAML)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, nil, l.cf, seed, true)
}

func (l *Lab) NewSimulator(id spec.GID) (*Simulator, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return l.NewSimulatorWithSeed(id, seed)
}

func (l *Lab) NewSimulatorWithSeed(id spec.GID, seed int64) (*Simulator, error) {
	gs, err := l.setting(id)
	if err != nil {
		return nil, err
	}
	cache, err := l.cacheFor(gs)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, cache, l.cf, seed)
}

func (l *Lab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	cfg, err := l.parseCustom(raw, spec.GetGameSettingByJSON)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, nil, l.cf, seed)
}

func (l *Lab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	cfg, err := l.parseCustom(raw, spec.GetGameSettingByYAML)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, nil, l.cf, seed)
}

// BuildRuntime 進入執行階段：Freeze 後為每款遊戲建立一個機台池。
func (l *Lab) BuildRuntime(poolSize int) (*Runtime, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return l.BuildRuntimeWithSeed(poolSize, seed)
}

// BuildRuntimeWithSeed 與 BuildRuntime 相同，但各遊戲機台池的 seed 由 seed 推導，整個服務可重現。
func (l *Lab) BuildRuntimeWithSeed(poolSize int, seed int64) (*Runtime, error) {
	l.Freeze()
	sm := newSeedMaker(seed)

	ids := l.reg.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no games registered")
	}

	rt := &Runtime{
		lab:      l,
		pools:    make(map[spec.GID]*MachinePool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	for _, id := range ids {
		gs, err := l.reg.GameSettingByID(id)
		if err != nil {
			return nil, err
		}
		cache, err := l.cacheFor(gs)
		if err != nil {
			return nil, err
		}
		mp, err := newMachinePool(rt.poolSize, gs, cache, l.cf, sm.next())
		if err != nil {
			return nil, err
		}
		rt.pools[id] = mp
	}
	return rt, nil
}

// NewDevSimulator
//
// 只提供給 Dev 模式使用：單機台、可重現，並驗證同 seed 的模擬機台與服務機台起點一致。
func (l *Lab) NewDevSimulator(gid spec.GID, seed int64) (*DevSimulator, error) {
	sim, err := l.NewSimulatorWithSeed(gid, seed)
	if err != nil {
		return nil, err
	}
	m, err := l.NewMachineWithSeed(gid, seed, false)
	if err != nil {
		return nil, err
	}
	simBe, err := sim.mBuf[0].SnapshotCore()
	if err != nil {
		return nil, err
	}
	mBe, err := m.SnapshotCore()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(simBe, mBe) {
		return nil, errs.NewFatal("seeds are not equal")
	}
	return &DevSimulator{sim: sim, m: m}, nil
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (l *Lab) setting(id spec.GID) (*spec.GameSetting, error) {
	if !l.reg.IsFrozen() {
		return nil, errs.NewFatal("registry is not frozen yet")
	}
	return l.reg.GameSettingByID(id)
}

func (l *Lab) cacheFor(gs *spec.GameSetting) (*catalog.Cache, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.caches[gs.GameID]; ok {
		return c, nil
	}
	c, err := catalog.NewCache(l.cacheSize, gs.PatternSetting, &gs.SymbolSetting)
	if err != nil {
		return nil, err
	}
	l.caches[gs.GameID] = c
	return c, nil
}

func (l *Lab) parseCustom(raw []byte, parse func([]byte) (*spec.GameSetting, error)) (*spec.GameSetting, error) {
	if !l.reg.IsFrozen() {
		return nil, errs.NewFatal("registry is not frozen yet")
	}
	cfg, err := parse(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Lab) validCfg(cfg *spec.GameSetting) error {
	ent, ok := l.reg.GetByID(cfg.GameID)
	if !ok {
		return errs.NewWarn("gid not exist")
	}
	ent2, ok := l.reg.GetByName(cfg.GameName)
	if !ok {
		return errs.NewWarn("game name not exist")
	}
	if ent.GID != ent2.GID {
		return errs.NewWarn("game id is not matched game name")
	}
	return nil
}
