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
	"net/http"

	"github.com/zintix-labs/patternlab/dto"
	"github.com/zintix-labs/patternlab/stats"
)

// SimResponse 模擬結果
type SimResponse struct {
	Stats    *stats.StatReport `json:"stats"`
	UsedTime int64             `json:"used_ms"`
}

// Sim POST /v1/sim
//
// rounds 為總局數，workers > 1 時平均分給多台機台平行執行。
func (h *Handler) Sim(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodeSimRequest(q)
	if err != nil {
		h.fail(w, "decode sim request", err)
		return
	}
	ctx, cancel := context.WithTimeout(q.Context(), simTimeout)
	defer cancel()

	st, used, err := h.rt.Sim(ctx, req)
	if err != nil {
		h.fail(w, "sim", err)
		return
	}
	h.writeJSON(w, SimResponse{Stats: st, UsedTime: used.Milliseconds()})
}
