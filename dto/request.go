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

package dto

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/patternlab/corefmt"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/spec"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

type SpinRequest struct {
	UID        string      `json:"uid"`                                   // 唯一識別碼
	GameName   string      `json:"game"`                                  // 要玩的遊戲
	GameId     spec.GID    `json:"gid"`                                   // 遊戲編號（與 game 擇一即可）
	Seed       *int64      `json:"seed,omitempty"`                        // 可選：以指定 seed 的新機台執行
	Spin       int         `json:"spin,omitempty"       validate:"gte=0"` // 可選：回放時的局號（影響 every_nth_spin 效果）
	StartState *StartState `json:"start_state,omitempty"`                 // 可選：回放 / 續玩
}

// StartState 是由業務端帶入的「引擎可恢復狀態」（可選）。
//
//   - 新局：start_state 缺省即可；引擎自行推進 RNG 並在回應中回傳 start/after。
//   - 回放（Replay）：帶入當初記錄的 start_b64u 與 spin，即可重現該局結果。
//   - 續玩：把上一局回應的 after_b64u 當作下一局的 start_b64u。
//
// Request 只允許提供 Start；After 只會由引擎在 Response 回傳。
type StartState struct {
	StartCoreSnapB64U string `json:"start_b64u,omitempty"`
}

func (ss *StartState) HasPayload() bool {
	return ss != nil && ss.StartCoreSnapB64U != ""
}

// DecodeSpinRequest 會把 HTTP 請求解碼成 SpinRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（uid/game/gid/seed/spin/start_b64u）。
//   - POST：從 JSON body 反序列化，開啟 DisallowUnknownFields() 對未知欄位嚴格拒絕。
//
// 這裡只負責解碼與基本欄位檢查；遊戲是否存在由上層（Runtime）決定。
func DecodeSpinRequest(r *http.Request) (*SpinRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(SpinRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.GameName = q.Get("game")

		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.Warnf("invalid gid: %v", err)
			}
			req.GameId = spec.GID(u)
		}

		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.Warnf("invalid seed: %v", err)
			}
			req.Seed = &v
		}

		if s := q.Get("spin"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.Warnf("invalid spin: %v", err)
			}
			req.Spin = v
		}

		if s := q.Get("start_b64u"); s != "" {
			req.StartState = &StartState{StartCoreSnapB64U: s}
		}

	case http.MethodPost:
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}

	default:
		return nil, errs.NewWarn("method not allowed")
	}

	if err := validRequest(req); err != nil {
		return nil, err
	}
	if req.GameName == "" && req.GameId == 0 {
		return nil, errs.NewWarn("game or gid is required")
	}
	return req, nil
}

// Parse 取出回放用的 RNG 起始快照；新局回傳 nil。
func (sr *SpinRequest) Parse() ([]byte, error) {
	if !sr.StartState.HasPayload() {
		if sr.Spin != 0 {
			return nil, errs.NewWarn("spin is only allowed with start_state")
		}
		return nil, nil
	}
	if sr.Seed != nil {
		return nil, errs.NewWarn("seed and start_state are mutually exclusive")
	}
	snap, err := corefmt.DecodeBase64URL(sr.StartState.StartCoreSnapB64U)
	if err != nil {
		return nil, errs.NewWarn("core snap decode failed: " + err.Error())
	}
	return snap, nil
}

// SimRequest 有上限的模擬請求（/v1/sim）
type SimRequest struct {
	GameName string   `json:"game"`
	GameId   spec.GID `json:"gid"`
	Rounds   int      `json:"rounds"            validate:"required,min=1,max=1000000"`
	Workers  int      `json:"workers,omitempty" validate:"omitempty,min=1,max=64"`
	Seed     *int64   `json:"seed,omitempty"`
}

// DecodeSimRequest 只接受 POST JSON
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	req := new(SimRequest)
	if err := decodeJSON(r, req); err != nil {
		return nil, err
	}
	if err := validRequest(req); err != nil {
		return nil, err
	}
	if req.GameName == "" && req.GameId == 0 {
		return nil, errs.NewWarn("game or gid is required")
	}
	if req.Workers == 0 {
		req.Workers = 1
	}
	return req, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.NewWarn("invalid json: " + err.Error())
	}
	return nil
}

func validRequest(v any) error {
	return spec.ValidateStructLv(v, errs.Warn, "invalid request")
}
