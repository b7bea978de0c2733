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
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/patternlab/catalog"
	"github.com/zintix-labs/patternlab/dto"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/buf"
	"github.com/zintix-labs/patternlab/spec"
	"github.com/zintix-labs/patternlab/stats"
)

// Runtime 對外服務的執行期：每款遊戲一個 MachinePool。
type Runtime struct {
	// build-time 來源（只讀引用）
	lab *Lab

	// data-plane：每個遊戲一個 pool
	pools map[spec.GID]*MachinePool
	ids   []spec.GID // 固定順序，用於觀測/列舉

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int // 每個遊戲的池大小
}

// Spin 依請求執行一局並轉成 DTO：
//   - 帶 seed：以該 seed 建立一台新機台執行第一局（可重現）。
//   - 帶 start_state：由池內機台回放。
//   - 其他：由池內機台執行下一局。
func (rt *Runtime) Spin(ctx context.Context, req *dto.SpinRequest) (dto.SpinResult, error) {
	if err := rt.check(ctx); err != nil {
		return dto.SpinResult{}, err
	}
	if req == nil {
		return dto.SpinResult{}, errs.NewWarn("nil spin request")
	}
	gid, err := rt.Resolve(req.GameName, req.GameId)
	if err != nil {
		return dto.SpinResult{}, err
	}
	start, err := req.Parse()
	if err != nil {
		return dto.SpinResult{}, err
	}

	var sr *buf.SpinResult
	switch {
	case req.Seed != nil:
		m, err := rt.lab.NewMachineWithSeed(gid, *req.Seed, false)
		if err != nil {
			return dto.SpinResult{}, err
		}
		sr, err = m.Spin(ctx)
		if err != nil {
			return dto.SpinResult{}, err
		}
	case start != nil:
		sr, err = rt.pools[gid].SpinFrom(ctx, start, req.Spin)
		if err != nil {
			return dto.SpinResult{}, err
		}
	default:
		sr, err = rt.pools[gid].Spin(ctx)
		if err != nil {
			return dto.SpinResult{}, err
		}
	}
	return dto.NewSpinResultDTO(sr)
}

// Sim 有上限的模擬（/v1/sim），每次請求使用獨立的 Simulator。
func (rt *Runtime) Sim(ctx context.Context, req *dto.SimRequest) (*stats.StatReport, time.Duration, error) {
	if err := rt.check(ctx); err != nil {
		return nil, 0, err
	}
	if req == nil {
		return nil, 0, errs.NewWarn("nil sim request")
	}
	gid, err := rt.Resolve(req.GameName, req.GameId)
	if err != nil {
		return nil, 0, err
	}
	var sim *Simulator
	if req.Seed != nil {
		sim, err = rt.lab.NewSimulatorWithSeed(gid, *req.Seed)
	} else {
		sim, err = rt.lab.NewSimulator(gid)
	}
	if err != nil {
		return nil, 0, err
	}
	if req.Workers <= 1 {
		return sim.Sim(ctx, req.Rounds, false)
	}
	// rounds 為總局數，平均分給 workers
	per := max(1, req.Rounds/req.Workers)
	return sim.SimMP(ctx, per, req.Workers, false)
}

// Resolve 以名稱或 ID 找出遊戲；兩者都給時必須指向同一款遊戲。
func (rt *Runtime) Resolve(name string, id spec.GID) (spec.GID, error) {
	if name != "" {
		e, ok := rt.lab.EntryByName(name)
		if !ok {
			return 0, errs.Warnf("game %q not found", name)
		}
		if id != 0 && id != e.GID {
			return 0, errs.NewWarn("game id is not matched game name")
		}
		return e.GID, nil
	}
	if _, ok := rt.pools[id]; !ok {
		return 0, errs.Warnf("game id %d not found", id)
	}
	return id, nil
}

// Games 已註冊遊戲摘要
func (rt *Runtime) Games() ([]catalog.Summary, error) {
	return rt.lab.Summary()
}

func (rt *Runtime) Lab() *Lab {
	return rt.lab
}

// Pool 取得遊戲的機台池
func (rt *Runtime) Pool(id spec.GID) (*MachinePool, bool) {
	mp, ok := rt.pools[id]
	return mp, ok
}

// Metrics 依 GID 排序的所有機台池快照
func (rt *Runtime) Metrics() []MachinePoolMetrics {
	out := make([]MachinePoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		out = append(out, rt.pools[id].Metrics())
	}
	return out
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and all pools, recording the reason (written once).
func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, mp := range rt.pools {
			mp.closeWithReason(reason)
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (rt *Runtime) check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return canceled(ctx.Err())
	case <-rt.done:
		rt.closed.Store(true)
		return errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
		return nil
	}
}
