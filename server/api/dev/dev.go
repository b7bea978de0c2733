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

// Package dev 開發者工具端點：可重現、可審計的逐局 spin 與單線模擬。
package dev

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/catalog"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/server/httperr"
	"github.com/zintix-labs/patternlab/server/netsvr"
	"github.com/zintix-labs/patternlab/spec"
)

const (
	maxBody    = 1 << 20
	devTimeout = 60 * time.Second
)

// devRequest 是 dev 端點的輸入 payload。
//
// 兼容性：同時保留 `rounds` 與 `round`；`gid` 與 `game` 兩者擇一即可，兩者都給時以 gid 為準。
//
// Seed / Snap：
//   - Seed（int64 string）用於 deterministic 起始；若為空字串則自動生成（crypto/rand）。
//   - Snap（base64url string）代表 core snapshot；若提供 Snap，則後端以 Snap Restore 為準。
type devRequest struct {
	GID    int64  `json:"gid"`
	Game   string `json:"game"`
	Rounds int    `json:"rounds"`
	Round  int    `json:"round"`
	Seed   string `json:"seed"`
	Snap   string `json:"snap"`
}

// round() 將 rounds/round 做兼容合併：優先 rounds，其次 round；若都未提供則回 0。
func (r devRequest) round() int {
	if r.Rounds > 0 {
		return r.Rounds
	}
	if r.Round > 0 {
		return r.Round
	}
	return 0
}

// Register 註冊 dev routes。
//
// Routes：
//   - GET  /dev/meta ：回傳遊戲摘要。
//   - POST /dev/spin ：執行 N 次 Spin 並回傳每回合結果（含 start/after 快照）。
//   - POST /dev/sim  ：執行 N 次 Sim 並回傳統計報表（不回傳逐回合 results）。
func Register(svr netsvr.NetRouter, lab *patternlab.Lab) {
	svr.Get("/dev/meta", devMeta(lab))
	svr.Post("/dev/spin", devSpin(lab))
	svr.Post("/dev/sim", devSim(lab))
}

func devMeta(lab *patternlab.Lab) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		writeJSON(w, sum)
	}
}

// devSpin 執行「可回放」的 Spin。
//
// 流程：decode -> resolve game -> resolve seed -> 建立 DevSimulator -> Spins() 或 RestoreSpins()。
func devSpin(lab *patternlab.Lab) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dev, req, err := prepare(lab, r)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), devTimeout)
		defer cancel()

		var report patternlab.DevSpinReport
		if snap := strings.TrimSpace(req.Snap); snap != "" {
			report, err = dev.RestoreSpins(ctx, snap, req.round())
		} else {
			report, err = dev.Spins(ctx, req.round())
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		writeJSON(w, report)
	}
}

// devSim 執行統計模擬，只回 DevSimReport（statistic）。
func devSim(lab *patternlab.Lab) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dev, req, err := prepare(lab, r)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), devTimeout)
		defer cancel()

		var report patternlab.DevSimReport
		if snap := strings.TrimSpace(req.Snap); snap != "" {
			report, err = dev.RestoreSim(ctx, snap, req.round())
		} else {
			report, err = dev.Sim(ctx, req.round())
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		writeJSON(w, report)
	}
}

func prepare(lab *patternlab.Lab, r *http.Request) (*patternlab.DevSimulator, *devRequest, error) {
	req := new(devRequest)
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(req); err != nil {
		return nil, nil, errs.NewWarn("invalid json: " + err.Error())
	}
	sum, err := resolveSummary(lab, req)
	if err != nil {
		return nil, nil, err
	}
	if req.round() < 1 {
		return nil, nil, errs.NewWarn("round is required")
	}
	seed, err := resolveSeed(req.Seed)
	if err != nil {
		return nil, nil, err
	}
	dev, err := lab.NewDevSimulator(sum.GID, seed)
	if err != nil {
		return nil, nil, err
	}
	return dev, req, nil
}

// resolveSummary 解析使用者指定的遊戲：
//   - 若 gid > 0：以 gid 精準匹配。
//   - 否則 game 先做不分大小寫的名稱匹配，再嘗試當作數字 gid。
func resolveSummary(lab *patternlab.Lab, req *devRequest) (catalog.Summary, error) {
	sums, err := lab.Summary()
	if err != nil {
		return catalog.Summary{}, err
	}
	if req.GID > 0 {
		gid := spec.GID(req.GID)
		for _, s := range sums {
			if s.GID == gid {
				return s, nil
			}
		}
		return catalog.Summary{}, errs.NewWarn("gid not found")
	}
	name := strings.TrimSpace(req.Game)
	if name != "" {
		for _, s := range sums {
			if strings.EqualFold(s.Name, name) {
				return s, nil
			}
		}
		if gid, err := strconv.ParseUint(name, 10, 64); err == nil {
			sg := spec.GID(gid)
			for _, s := range sums {
				if s.GID == sg {
					return s, nil
				}
			}
		}
		return catalog.Summary{}, errs.NewWarn("game not found")
	}
	return catalog.Summary{}, errs.NewWarn("game is required")
}

// resolveSeed 解析 seed（int64 string）；空字串自動生成。
func resolveSeed(seed string) (int64, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return randomSeed()
	}
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return 0, errs.NewWarn("seed must be int64")
	}
	return v, nil
}

// randomSeed 使用 crypto/rand 產生 [0, MaxInt64) 的種子。
func randomSeed() (int64, error) {
	rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.NewFatal("seed generate failed")
	}
	return rnd.Int64(), nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
