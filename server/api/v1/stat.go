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
	"encoding/json"
	"io"
	"net/http"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/recorder"
	"github.com/zintix-labs/patternlab/spec"
)

const maxStatPayouts = 1_000_000

// StatRequest 外部系統回報的逐局派彩
type StatRequest struct {
	GameName string    `json:"game"`
	GameId   spec.GID  `json:"gid"`
	Payouts  []float64 `json:"payouts" validate:"required,min=1,dive,gte=0"`
}

// Stat POST /v1/stat
//
// 以同一套統計（平均、標準差、信賴區間、派彩分佈）整理外部回報的結果，方便和模擬報表對照。
func (h *Handler) Stat(w http.ResponseWriter, r *http.Request) {
	req := new(StatRequest)
	dec := json.NewDecoder(io.LimitReader(r.Body, maxCfgBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		h.fail(w, "decode stat request", errs.NewWarn("invalid json: "+err.Error()))
		return
	}
	if err := spec.ValidateStructLv(req, errs.Warn, "invalid request"); err != nil {
		h.fail(w, "decode stat request", err)
		return
	}
	if len(req.Payouts) > maxStatPayouts {
		h.fail(w, "decode stat request", errs.NewWarn("too many payouts"))
		return
	}
	gid, err := h.rt.Resolve(req.GameName, req.GameId)
	if err != nil {
		h.fail(w, "stat", err)
		return
	}
	gs, err := h.rt.Lab().GameSetting(gid)
	if err != nil {
		h.fail(w, "stat", err)
		return
	}
	rec, err := recorder.NewSpinRecorder(gs.GameName, gs.GameID, gs.Grid)
	if err != nil {
		h.fail(w, "stat", err)
		return
	}
	for _, p := range req.Payouts {
		rec.RecordPayout(p)
	}
	st := rec.Done()
	st.Done()
	h.writeJSON(w, st)
}
