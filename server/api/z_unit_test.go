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

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/demo/demo_configs"
	"github.com/zintix-labs/patternlab/dto"
	"github.com/zintix-labs/patternlab/sdk/core"
	v1 "github.com/zintix-labs/patternlab/server/api/v1"
	"github.com/zintix-labs/patternlab/server/httperr"
	"github.com/zintix-labs/patternlab/server/logger"
	"github.com/zintix-labs/patternlab/server/netsvr"
	"github.com/zintix-labs/patternlab/server/netsvr/middleware"
	"github.com/zintix-labs/patternlab/server/svrcfg"
	"github.com/zintix-labs/patternlab/stats"
)

type testServer struct {
	*httptest.Server
	rt *patternlab.Runtime
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	lab, err := patternlab.NewAuto(core.Default(), patternlab.Configs(demo_configs.FS))
	require.NoError(t, err)
	seed := int64(42)
	sCfg := &svrcfg.SvrCfg{
		Log:      logger.NewDefaultLogger(logger.ModeSilence),
		PoolSize: 2,
		Seed:     &seed,
		Lab:      lab,
	}
	svr := netsvr.NewChiServer(":0")
	rt, err := RegisterRoutes(svr, sCfg)
	require.NoError(t, err)
	ts := httptest.NewServer(svr.Handler())
	t.Cleanup(func() {
		ts.Close()
		rt.Close()
	})
	return &testServer{Server: ts, rt: rt}
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthzAndRequestID(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.HeaderRequestID, "abc-123")
	resp2, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "abc-123", resp2.Header.Get(middleware.HeaderRequestID))

	ts.rt.Close()
	resp3 := ts.get(t, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp3.StatusCode)
}

func TestGames(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.get(t, "/v1/games")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[v1.GamesResponse](t, resp)
	require.Len(t, out.Games, 3)
	assert.Equal(t, "gamblerino", out.Games[0].Name)
	require.Len(t, out.Pools, 3)
	assert.Equal(t, 2, out.Pools[0].PoolSize)

	resp = ts.get(t, "/v1/broken?drain=true")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]v1.BrokenRecord](t, resp))
}

func TestSpinAndReplay(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.get(t, "/v1/spin?game=gamblerino")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[dto.SpinResult](t, resp)
	assert.EqualValues(t, 1, first.GameID)
	assert.NotEmpty(t, first.ID)
	require.NotEmpty(t, first.State.StartCoreSnapB64U)
	assert.Len(t, first.Grid, 3)

	q := url.Values{}
	q.Set("gid", "1")
	q.Set("spin", strconv.Itoa(first.Spin))
	q.Set("start_b64u", first.State.StartCoreSnapB64U)
	resp = ts.get(t, "/v1/spin?"+q.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	replay := decode[dto.SpinResult](t, resp)
	assert.Equal(t, first.Grid, replay.Grid)
	assert.Equal(t, first.Total, replay.Total)
	assert.Equal(t, first.State.AfterCoreSnapB64U, replay.State.AfterCoreSnapB64U)

	seed := int64(9)
	a := decode[dto.SpinResult](t, ts.post(t, "/v1/spin", dto.SpinRequest{GameName: "wide", Seed: &seed}))
	b := decode[dto.SpinResult](t, ts.post(t, "/v1/spin", dto.SpinRequest{GameName: "wide", Seed: &seed}))
	assert.Equal(t, a.Grid, b.Grid)
	assert.Equal(t, 5, len(a.Grid[0]))
}

func TestSpinErrors(t *testing.T) {
	ts := newTestServer(t)
	cases := []string{
		"/v1/spin",
		"/v1/spin?game=nope",
		"/v1/spin?gid=abc",
		"/v1/spin?game=gamblerino&spin=3",
		"/v1/spin?game=gamblerino&start_b64u=***",
	}
	for _, path := range cases {
		resp := ts.get(t, path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		body := decode[httperr.Body](t, resp)
		assert.Equal(t, "warn", body.Level, path)
	}
}

func TestSim(t *testing.T) {
	ts := newTestServer(t)
	seed := int64(3)
	resp := ts.post(t, "/v1/sim", dto.SimRequest{GameName: "legacy", Rounds: 400, Workers: 2, Seed: &seed})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[v1.SimResponse](t, resp)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 400, out.Stats.Summary.Rounds)

	resp = ts.post(t, "/v1/sim", map[string]any{"game": "legacy", "rounds": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = ts.post(t, "/v1/sim", map[string]any{"game": "legacy", "rounds": 10, "bogus": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSimByCfg(t *testing.T) {
	ts := newTestServer(t)
	cfg := json.RawMessage(`{
		"game_name": "legacy",
		"game_id": 2,
		"grid": {"rows": 3, "cols": 3},
		"symbol_setting": {"symbols": [
			{"id": "lemon", "value": 10, "weight": 1, "multiplier": 1},
			{"id": "seven", "value": 50, "weight": 1, "multiplier": 2}
		]},
		"pattern_setting": {"catalog": "legacy"}
	}`)
	seed := int64(5)
	resp := ts.post(t, "/v1/simbycfg", v1.SimByCfgRequest{Rounds: 300, GameSetting: cfg, Seed: &seed})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[v1.SimResponse](t, resp)
	assert.Equal(t, 300, out.Stats.Summary.Rounds)
	// 兩種圖標、權重相同，3x3 盤面必定有連線的機率極高
	assert.Greater(t, out.Stats.Summary.Hits, 0)

	bad := json.RawMessage(`{"game_name": "legacy", "game_id": 1}`)
	resp = ts.post(t, "/v1/simbycfg", v1.SimByCfgRequest{Rounds: 10, GameSetting: bad})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	huge := json.RawMessage(`{
		"game_name": "gamblerino",
		"game_id": 1,
		"grid": {"rows": 100000, "cols": 100000},
		"symbol_setting": {"symbols": [{"id": "lemon", "value": 10, "weight": 1, "multiplier": 1}]}
	}`)
	resp = ts.post(t, "/v1/simbycfg", v1.SimByCfgRequest{Rounds: 10, GameSetting: huge})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/v1/catalog?rows=3&cols=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dyn := decode[v1.CatalogResponse](t, resp)
	assert.Equal(t, dyn.Count, len(dyn.Patterns))
	assert.Equal(t, 0, dyn.Analysis.Duplicates)
	assert.Greater(t, dyn.Analysis.Geometric, 0)

	resp = ts.get(t, "/v1/catalog?rows=3&cols=3&game=legacy")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	legacy := decode[v1.CatalogResponse](t, resp)
	assert.Equal(t, 8, legacy.Count)
	assert.Equal(t, "legacy", legacy.Game)

	resp = ts.get(t, "/v1/catalog?rows=6&cols=6&patterns=false")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	big := decode[v1.CatalogResponse](t, resp)
	assert.Empty(t, big.Patterns)
	assert.Greater(t, big.Count, dyn.Count)

	for _, path := range []string{
		"/v1/catalog?rows=3",
		"/v1/catalog?rows=0&cols=3",
		"/v1/catalog?rows=99&cols=3",
		"/v1/catalog?rows=4&cols=4&game=legacy",
		"/v1/catalog?rows=3&cols=3&game=nope",
	} {
		assert.Equal(t, http.StatusBadRequest, ts.get(t, path).StatusCode, path)
	}
}

func TestCatalogKeepsGameCache(t *testing.T) {
	ts := newTestServer(t)
	e, ok := ts.rt.Lab().EntryByName("gamblerino")
	require.True(t, ok)
	cache, err := ts.rt.Lab().Cache(e.GID)
	require.NoError(t, err)
	before := cache.Sizes()

	for n := 4; n <= 8; n++ {
		path := "/v1/catalog?game=gamblerino&patterns=false&rows=" + strconv.Itoa(n) + "&cols=" + strconv.Itoa(n)
		require.Equal(t, http.StatusOK, ts.get(t, path).StatusCode, path)
	}
	assert.Equal(t, before, cache.Sizes())
}

func TestStat(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.post(t, "/v1/stat", v1.StatRequest{GameId: 1, Payouts: []float64{0, 10, 20, 0}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[stats.StatReport](t, resp)
	assert.Equal(t, 4, st.Summary.Rounds)
	assert.Equal(t, 2, st.Summary.Hits)
	assert.InDelta(t, 7.5, st.Summary.MeanPayout, 1e-9)

	resp = ts.post(t, "/v1/stat", v1.StatRequest{GameId: 1, Payouts: []float64{-1}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDevSpinReplay(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.post(t, "/dev/spin", map[string]any{"game": "gamblerino", "rounds": 5, "seed": "7"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[patternlab.DevSpinReport](t, resp)
	require.Len(t, first.Results, 5)

	resp = ts.post(t, "/dev/spin", map[string]any{"gid": 1, "rounds": 5, "snap": first.Before})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again := decode[patternlab.DevSpinReport](t, resp)
	assert.Equal(t, first.After, again.After)
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Grid, again.Results[i].Grid)
	}

	resp = ts.post(t, "/dev/sim", map[string]any{"game": "legacy", "rounds": 200, "seed": "1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sim := decode[patternlab.DevSimReport](t, resp)
	assert.Equal(t, 200, sim.Stat.Summary.Rounds)

	assert.Equal(t, http.StatusBadRequest, ts.post(t, "/dev/spin", map[string]any{"game": "gamblerino"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, ts.post(t, "/dev/spin", map[string]any{"rounds": 1}).StatusCode)
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)
	ts.get(t, "/v1/spin?game=gamblerino")
	resp := ts.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "patternlab_http_requests_total")
	assert.Contains(t, body, `route="/v1/spin"`)
	assert.Contains(t, body, "patternlab_pool_available")
	assert.Contains(t, body, "patternlab_catalog_cache_hits_total")
}

func TestZstdCompression(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/v1/games", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "zstd")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "zstd", resp.Header.Get("Content-Encoding"))

	zr, err := zstd.NewReader(resp.Body)
	require.NoError(t, err)
	defer zr.Close()
	var out v1.GamesResponse
	require.NoError(t, json.NewDecoder(zr).Decode(&out))
	assert.Len(t, out.Games, 3)
	assert.True(t, strings.Contains(resp.Header.Get("Vary"), "Accept-Encoding"))
}
