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
	"net/http"

	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/catalog"
	"github.com/zintix-labs/patternlab/corefmt"
)

// GamesResponse 已註冊遊戲與各自機台池的觀測快照
type GamesResponse struct {
	Games []catalog.Summary               `json:"games"`
	Pools []patternlab.MachinePoolMetrics `json:"pools"`
}

// Games GET /v1/games
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	sum, err := h.rt.Games()
	if err != nil {
		h.fail(w, "games", err)
		return
	}
	h.writeJSON(w, GamesResponse{Games: sum, Pools: h.rt.Metrics()})
}

// BrokenRecord 退役機台紀錄；start_b64u 可直接帶入 /v1/spin 回放。
type BrokenRecord struct {
	patternlab.BrokenMachine
	Game      string `json:"game"`
	StartB64U string `json:"start_b64u,omitempty"`
}

// Broken GET /v1/broken?drain=true
func (h *Handler) Broken(w http.ResponseWriter, r *http.Request) {
	drain := r.URL.Query().Get("drain") == "true"
	out := make([]BrokenRecord, 0)
	for _, pm := range h.rt.Metrics() {
		mp, ok := h.rt.Pool(pm.GameID)
		if !ok {
			continue
		}
		var recs []patternlab.BrokenMachine
		if drain {
			recs = mp.DrainBroken()
		} else {
			recs = mp.Broken()
		}
		for _, b := range recs {
			rec := BrokenRecord{BrokenMachine: b, Game: mp.GameName()}
			if len(b.Snap) > 0 {
				rec.StartB64U = corefmt.EncodeBase64URL(b.Snap)
			}
			out = append(out, rec)
		}
	}
	h.writeJSON(w, out)
}
