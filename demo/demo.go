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

// Package demo 以內建的 demo_configs 組出可直接使用的 Lab 與 server 設定。
package demo

import (
	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/demo/demo_configs"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/server/logger"
	"github.com/zintix-labs/patternlab/server/svrcfg"
)

// NewLab 載入 demo_configs 內所有遊戲並凍結註冊表。
func NewLab() (*patternlab.Lab, error) {
	lab, err := patternlab.NewAuto(core.Default(), patternlab.Configs(demo_configs.FS))
	if err != nil {
		return nil, errs.Wrap(err, "new demo lab failed")
	}
	return lab, nil
}

// NewServerConfig 讀取 PATTERNLAB_* 環境變數（含可選的 .env），以 demo lab 組出 server 設定。
func NewServerConfig(files ...string) (*svrcfg.SvrCfg, error) {
	env, err := svrcfg.LoadEnv(files...)
	if err != nil {
		return nil, err
	}
	lab, err := NewLab()
	if err != nil {
		return nil, err
	}
	return svrcfg.New(env, lab)
}

// NewSilentServerConfig 給測試與範例用：不輸出 log，機台池固定 seed。
func NewSilentServerConfig(poolSize int, seed int64) (*svrcfg.SvrCfg, error) {
	lab, err := NewLab()
	if err != nil {
		return nil, err
	}
	sc := &svrcfg.SvrCfg{
		Addr:     svrcfg.DefaultAddr,
		Log:      logger.NewDefaultLogger(logger.ModeSilence),
		PoolSize: poolSize,
		Seed:     &seed,
		Lab:      lab,
	}
	return sc, sc.Valid()
}
