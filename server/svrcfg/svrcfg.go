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

package svrcfg

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/server/logger"
	"github.com/zintix-labs/patternlab/spec"
)

// 環境變數名稱
const (
	EnvAddr      = "PATTERNLAB_ADDR"
	EnvLogMode   = "PATTERNLAB_LOG_MODE"
	EnvPoolSize  = "PATTERNLAB_POOL_SIZE"
	EnvCacheSize = "PATTERNLAB_CACHE_SIZE"
	EnvSeed      = "PATTERNLAB_SEED"
)

const (
	DefaultAddr      = ":5808"
	DefaultPoolSize  = 3
	DefaultCacheSize = 16
)

// SvrCfg server 組裝所需的全部依賴，由呼叫端明確注入。
type SvrCfg struct {
	Addr     string
	Log      *slog.Logger
	PoolSize int    // 每款遊戲的機台數
	Seed     *int64 // 可選：機台池的起始 seed（nil 則由 crypto/rand 產生）
	Lab      *patternlab.Lab
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if strings.TrimSpace(sc.Addr) == "" {
		sc.Addr = DefaultAddr
	}

	// 1 <= PoolSize <= 10
	// for 資源管理
	sc.PoolSize = max(1, sc.PoolSize)
	sc.PoolSize = min(10, sc.PoolSize)
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}

// Env 由環境變數讀入的 server 設定
type Env struct {
	Addr      string `validate:"required,contains=:"`
	LogMode   string `validate:"oneof=dev prod silence"`
	PoolSize  int    `validate:"min=1,max=10"`
	CacheSize int    `validate:"min=1,max=1024"`
	Seed      *int64
}

// LoadEnv 先載入可選的 .env（檔案不存在不算錯誤），再讀取 PATTERNLAB_* 環境變數並驗證。
//
// files 為空時讀取工作目錄下的 .env；已存在的環境變數不會被覆寫。
func LoadEnv(files ...string) (*Env, error) {
	_ = godotenv.Load(files...)

	env := &Env{
		Addr:      getEnv(EnvAddr, DefaultAddr),
		LogMode:   strings.ToLower(getEnv(EnvLogMode, "dev")),
		PoolSize:  DefaultPoolSize,
		CacheSize: DefaultCacheSize,
	}
	var err error
	if env.PoolSize, err = getInt(EnvPoolSize, DefaultPoolSize); err != nil {
		return nil, err
	}
	if env.CacheSize, err = getInt(EnvCacheSize, DefaultCacheSize); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(EnvSeed); ok && strings.TrimSpace(v) != "" {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, errs.NewWithExtra(errs.Fatal, "invalid env value", EnvSeed)
		}
		env.Seed = &seed
	}
	if err := spec.ValidateStructLv(env, errs.Fatal, "invalid server env"); err != nil {
		return nil, err
	}
	return env, nil
}

// Mode 轉成 logger 的模式
func (e *Env) Mode() logger.LogMode {
	m, _ := logger.ParseMode(e.LogMode)
	return m
}

// New 以 Env 組出 SvrCfg：設定 lab 的快取容量並建立對應模式的非同步 logger。
func New(env *Env, lab *patternlab.Lab) (*SvrCfg, error) {
	if env == nil {
		return nil, errs.NewFatal("env is required")
	}
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	lab.SetCacheSize(env.CacheSize)
	log, _ := logger.NewAsync(4096, env.Mode())
	sc := &SvrCfg{
		Addr:     env.Addr,
		Log:      log,
		PoolSize: env.PoolSize,
		Seed:     env.Seed,
		Lab:      lab,
	}
	return sc, sc.Valid()
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errs.NewWithExtra(errs.Fatal, "invalid env value", key)
	}
	return n, nil
}
