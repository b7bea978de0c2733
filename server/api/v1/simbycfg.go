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

package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/spec"
)

const maxCfgBody = 5 << 20 // 5MB

// SimByCfgRequest 以調整中的設定（JSON）模擬
type SimByCfgRequest struct {
	Rounds      int             `json:"rounds" validate:"required,min=1,max=1000000"`
	GameSetting json.RawMessage `json:"cfg"    validate:"required"`
	Seed        *int64          `json:"seed,omitempty"`
}

// SimByCfg POST /v1/simbycfg
//
// 設定的 game_id 與 game_name 必須對應到已註冊的遊戲；模擬使用私有的 catalog 快取，不影響線上機台池。
func (h *Handler) SimByCfg(w http.ResponseWriter, r *http.Request) {
	// 1. decode request
	req := new(SimByCfgRequest)
	r.Body = http.MaxBytesReader(w, r.Body, maxCfgBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		h.fail(w, "decode simbycfg request", errs.NewWarn("invalid json: "+err.Error()))
		return
	}

	// 2. valid rounds / cfg
	if err := spec.ValidateStructLv(req, errs.Warn, "invalid request"); err != nil {
		h.fail(w, "decode simbycfg request", err)
		return
	}
	seed := int64(0)
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		s, err := randomSeed()
		if err != nil {
			h.fail(w, "seed", err)
			return
		}
		seed = s
	}

	// 3. NewSimulator
	sim, err := h.rt.Lab().NewSimulatorByJSON(req.GameSetting, seed)
	if err != nil {
		// 設定來自呼叫端，解析 / 驗證失敗一律視為請求錯誤
		h.fail(w, "build simulator", errs.NewWithExtra(errs.Warn, "invalid cfg", err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), simTimeout)
	defer cancel()
	st, used, err := sim.Sim(ctx, req.Rounds, false)
	if err != nil {
		h.fail(w, "simbycfg", err)
		return
	}

	// 4. 回傳Json
	h.writeJSON(w, SimResponse{Stats: st, UsedTime: used.Milliseconds()})
}
