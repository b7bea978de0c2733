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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/patternlab/demo"
	"github.com/zintix-labs/patternlab/server"
	"github.com/zintix-labs/patternlab/server/svrcfg"
)

// lab server 入口：載入 demo_configs，設定來源依序為 .env、PATTERNLAB_* 環境變數、flag。
// dev routes 一律開啟；正式部署請以 PATTERNLAB_LOG_MODE=prod 啟動並在前方加上存取控制。
func main() {
	sCfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := server.Run(sCfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flags struct {
	envFile string
	addr    string
	logMode string
	pool    int
}

func loadConfig() (*svrcfg.SvrCfg, error) {
	f := new(flags)
	flag.StringVar(&f.envFile, "env", ".env", "optional dotenv file")
	flag.StringVar(&f.addr, "addr", "", "listen address, overrides "+svrcfg.EnvAddr)
	flag.StringVar(&f.logMode, "log-mode", "", "log mode: dev|prod|silence, overrides "+svrcfg.EnvLogMode)
	flag.IntVar(&f.pool, "pool", 0, "machines per game, overrides "+svrcfg.EnvPoolSize)
	flag.Parse()

	// flag 以環境變數的形式覆寫，讓驗證規則只寫在 svrcfg.Env 一處
	set := func(key, val string) {
		if val != "" {
			_ = os.Setenv(key, val)
		}
	}
	set(svrcfg.EnvAddr, f.addr)
	set(svrcfg.EnvLogMode, f.logMode)
	if f.pool > 0 {
		set(svrcfg.EnvPoolSize, fmt.Sprint(f.pool))
	}
	return demo.NewServerConfig(f.envFile)
}
