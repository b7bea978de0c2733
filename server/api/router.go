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
	"log/slog"
	"net/http"

	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/server/api/dev"
	v1 "github.com/zintix-labs/patternlab/server/api/v1"
	"github.com/zintix-labs/patternlab/server/logger"
	"github.com/zintix-labs/patternlab/server/metrics"
	"github.com/zintix-labs/patternlab/server/netsvr"
	"github.com/zintix-labs/patternlab/server/netsvr/middleware"
	"github.com/zintix-labs/patternlab/server/svrcfg"
)

// RegisterRoutes 建立 Runtime（每款遊戲一個機台池）並註冊 middleware 與所有路由。
//
// 回傳的 Runtime 由呼叫端負責在 server 停止後 Close。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) (*patternlab.Runtime, error) {
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	rt, err := buildRuntime(sCfg)
	if err != nil {
		return nil, errs.Wrap(err, "build runtime error")
	}
	m := metrics.New()
	m.Registry().MustRegister(metrics.NewRuntimeCollector(rt))
	if ah, ok := sCfg.Log.Handler().(*logger.AsyncHandler); ok {
		m.WatchLogDrops(ah.Dropped)
	}

	registerMiddleware(svr, sCfg.Log, m) // 1. 註冊 middleware
	registerOps(svr, rt, m)              // 2. 健康檢查 / metrics
	dev.Register(svr, sCfg.Lab)          // 3. 開發者工具

	// 4. 註冊 v1 api
	if err := registerV1API(svr, sCfg.Log, rt); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func buildRuntime(sCfg *svrcfg.SvrCfg) (*patternlab.Runtime, error) {
	if sCfg.Seed != nil {
		return sCfg.Lab.BuildRuntimeWithSeed(sCfg.PoolSize, *sCfg.Seed)
	}
	return sCfg.Lab.BuildRuntime(sCfg.PoolSize)
}

func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger, m *metrics.Metrics) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(m.Middleware)
	svr.Use(middleware.Compression)
}

func registerOps(svr netsvr.NetRouter, rt *patternlab.Runtime, m *metrics.Metrics) {
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if rt.Closed() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"closed"}` + "\n"))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	svr.Get("/metrics", m.Handler())
}

func registerV1API(svr netsvr.NetRouter, log *slog.Logger, rt *patternlab.Runtime) error {
	h, err := v1.NewHandler(rt, log)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/games", h.Games)
		vOne.Get("/catalog", h.Catalog)
		vOne.Get("/broken", h.Broken)

		vOne.Get("/spin", h.Spin)
		vOne.Post("/spin", h.Spin)
		vOne.Post("/sim", h.Sim)
		vOne.Post("/simbycfg", h.SimByCfg)
		vOne.Post("/stat", h.Stat)
	})
	return nil
}
