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
)

// Spin GET / POST /v1/spin
//
// 新局由機台池執行；帶 seed 以新機台執行第一局；帶 start_b64u 則回放該局。
func (h *Handler) Spin(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	req, err := dto.DecodeSpinRequest(q)
	if err != nil {
		h.fail(w, "decode spin request", err)
		return
	}
	// 請求解析完成，設置超時 context
	ctx, cancel := context.WithTimeout(q.Context(), spinTimeout)
	defer cancel()

	result, err := h.rt.Spin(ctx, req)
	if err != nil {
		h.fail(w, "spin", err)
		return
	}
	h.writeJSON(w, result)
}
