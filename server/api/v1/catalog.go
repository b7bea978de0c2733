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
	"errors"
	"net/http"
	"strconv"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
)

// CatalogResponse GET /v1/catalog 的回應
type CatalogResponse struct {
	Size     spec.GridSize     `json:"size"`
	Game     string            `json:"game,omitempty"`
	Count    int               `json:"count"`
	Analysis pattern.Summary   `json:"analysis"`
	Patterns []pattern.Pattern `json:"patterns,omitempty"`
}

// Catalog GET /v1/catalog?rows=&cols=[&game=|&gid=][&patterns=false]
//
// 指定遊戲時使用該遊戲的設定（legacy 遊戲只接受 3x3），已快取的尺寸直接共用，
// 未快取的尺寸臨時生成且不放入快取；否則以預設設定生成。
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := dimParam(q.Get("rows"), "rows")
	if err != nil {
		h.fail(w, "catalog", err)
		return
	}
	cols, err := dimParam(q.Get("cols"), "cols")
	if err != nil {
		h.fail(w, "catalog", err)
		return
	}
	size := spec.GridSize{Rows: rows, Cols: cols}
	resp := CatalogResponse{Size: size}

	var ps []pattern.Pattern
	name := q.Get("game")
	var gid spec.GID
	if s := q.Get("gid"); s != "" {
		u, err := strconv.ParseUint(s, 10, 0)
		if err != nil {
			h.fail(w, "catalog", errs.Warnf("invalid gid: %v", err))
			return
		}
		gid = spec.GID(u)
	}
	if name != "" || gid != 0 {
		id, err := h.rt.Resolve(name, gid)
		if err != nil {
			h.fail(w, "catalog", err)
			return
		}
		cache, err := h.rt.Lab().Cache(id)
		if err != nil {
			h.fail(w, "catalog", err)
			return
		}
		ps, err = cache.Preview(size)
		if err != nil {
			h.fail(w, "catalog", asWarn(err))
			return
		}
		e, _ := h.rt.Lab().EntryByID(id)
		resp.Game = e.Name
	} else {
		ps, err = pattern.Generate(size)
		if err != nil {
			h.fail(w, "catalog", asWarn(err))
			return
		}
	}

	resp.Count = len(ps)
	resp.Analysis = pattern.Analyze(ps)
	if q.Get("patterns") != "false" {
		resp.Patterns = ps
	}
	h.writeJSON(w, resp)
}

func dimParam(s, name string) (int, error) {
	if s == "" {
		return 0, errs.Warnf("%s is required", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Warnf("%s must be integer", name)
	}
	if n < 1 || n > spec.MaxGridDim {
		return 0, errs.Warnf("%s must be between 1 and %d", name, spec.MaxGridDim)
	}
	return n, nil
}

// asWarn 由請求參數造成的盤面尺寸錯誤屬於呼叫端錯誤
func asWarn(err error) error {
	if errors.Is(err, spec.ErrInvalidGridSize) {
		return errs.NewWithExtra(errs.Warn, "invalid grid size", err.Error())
	}
	return err
}
