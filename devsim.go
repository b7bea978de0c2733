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

	"github.com/zintix-labs/patternlab/corefmt"
	"github.com/zintix-labs/patternlab/dto"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/stats"
)

const (
	maxDevSpins  = 5_000
	maxDevRounds = 3_000_000
)

// DevSimulator
//
// 只提供給Dev模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSimulator struct {
	sim *Simulator // 只開放Sim功能
	m   *Machine   // 同步seed
}

type DevSpinReport struct {
	Before      string           `json:"start_b64u"`
	After       string           `json:"after_b64u"`
	Round       int              `json:"round"`
	Hits        int              `json:"hits"`
	HitRate     float64          `json:"hit_rate"`
	TotalPayout float64          `json:"total_payout"`
	MeanPayout  float64          `json:"mean_payout"`
	Results     []dto.SpinResult `json:"results"`
}

func (d *DevSimulator) Spins(ctx context.Context, round int) (DevSpinReport, error) {
	// 限制檢查
	if round < 1 || round > maxDevSpins {
		return DevSpinReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}

	// spin
	ds := make([]dto.SpinResult, 0, round)
	hits, total := 0, 0.0
	for range round {
		sr, err := d.m.Spin(ctx)
		if err != nil {
			return DevSpinReport{}, errs.Wrap(err, "spin error")
		}
		if sr.Hit() {
			hits++
		}
		total += sr.Total
		out, err := dto.NewSpinResultDTO(sr)
		if err != nil {
			return DevSpinReport{}, err
		}
		ds = append(ds, out)
	}

	return DevSpinReport{
		Before:      ds[0].State.StartCoreSnapB64U,
		After:       ds[len(ds)-1].State.AfterCoreSnapB64U,
		Round:       len(ds),
		Hits:        hits,
		HitRate:     float64(hits) / float64(len(ds)),
		TotalPayout: total,
		MeanPayout:  total / float64(len(ds)),
		Results:     ds,
	}, nil
}

func (d *DevSimulator) RestoreSpins(ctx context.Context, be64 string, round int) (DevSpinReport, error) {
	// 限制檢查
	if round < 1 || round > maxDevSpins {
		return DevSpinReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	// 解析seed
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSpinReport{}, errs.NewWarn("decode seed failed: " + err.Error())
	}
	// restore
	if err := d.m.RestoreCore(be); err != nil {
		return DevSpinReport{}, errs.NewWarn("machine restore failed")
	}
	return d.Spins(ctx, round)
}

type DevSimReport struct {
	Before string            `json:"before"`
	After  string            `json:"after"`
	Stat   *stats.StatReport `json:"statistic"`
}

func (d *DevSimulator) Sim(ctx context.Context, round int) (DevSimReport, error) {
	if round < 1 || round > maxDevRounds {
		return DevSimReport{}, errs.NewWarn("round must be between 1 and 3,000,000")
	}
	// 先存 before 快照
	m := d.sim.mBuf[0]
	be, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}

	stat, _, err := d.sim.Sim(ctx, round, false)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "sim failed")
	}

	// 再存 after 快照
	af, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}

	return DevSimReport{
		Before: corefmt.EncodeBase64URL(be),
		After:  corefmt.EncodeBase64URL(af),
		Stat:   stat,
	}, nil
}

func (d *DevSimulator) RestoreSim(ctx context.Context, be64 string, round int) (DevSimReport, error) {
	// 反解析 string -> []byte
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.NewWarn("decode seed failed: " + err.Error())
	}

	// restore
	if err := d.sim.mBuf[0].RestoreCore(be); err != nil {
		return DevSimReport{}, errs.NewWarn("restore simulator failed")
	}

	return d.Sim(ctx, round)
}

// GameName 目前綁定的遊戲
func (d *DevSimulator) GameName() string {
	return d.m.GameName()
}
