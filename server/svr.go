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

// Package server 以 chi 組裝 patternlab 的 HTTP lab server。
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/server/api"
	"github.com/zintix-labs/patternlab/server/app"
	"github.com/zintix-labs/patternlab/server/logger"
	"github.com/zintix-labs/patternlab/server/netsvr"
	"github.com/zintix-labs/patternlab/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含必要依賴，例如 logger 與 Lab）。
//  2. 建立監聽 SvrCfg.Addr 的 HTTP server（netsvr）。
//  3. 建立 Runtime 並註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()，停止後關閉 Runtime 並 drain 非同步 log。
//
// Run 不綁定任何檔案路徑或環境變數策略；讀環境變數請用 svrcfg.LoadEnv。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run() 相同，但允許呼叫端注入自訂的 NetSvr（自訂 listener、TLS、timeout 等）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer closeLog(sCfg.Log)
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	// 註冊 Api
	rt, err := api.RegisterRoutes(svr, sCfg)
	if err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}
	defer rt.Close()

	// 運行
	a := app.NewWith(svr).WithLogger(sCfg.Log)
	sCfg.Log.Info("[patternlab] listening", slog.String("addr", sCfg.Addr), slog.Int("pool_size", sCfg.PoolSize))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[patternlab] stopped")
	return nil
}

func closeLog(log *slog.Logger) {
	if ah, ok := log.Handler().(*logger.AsyncHandler); ok {
		ah.Close()
	}
}
