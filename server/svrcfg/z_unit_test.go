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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/demo/demo_configs"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/core"
	"github.com/zintix-labs/patternlab/server/logger"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAddr, EnvLogMode, EnvPoolSize, EnvCacheSize, EnvSeed} {
		t.Setenv(k, "")
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	clearEnv(t)
	env, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, env.Addr)
	assert.Equal(t, "dev", env.LogMode)
	assert.Equal(t, DefaultPoolSize, env.PoolSize)
	assert.Equal(t, DefaultCacheSize, env.CacheSize)
	assert.Nil(t, env.Seed)
	assert.Equal(t, logger.ModeDev, env.Mode())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, "127.0.0.1:9000")
	t.Setenv(EnvLogMode, "Silence")
	t.Setenv(EnvPoolSize, "5")
	t.Setenv(EnvCacheSize, "64")
	t.Setenv(EnvSeed, " 77 ")

	env, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", env.Addr)
	assert.Equal(t, logger.ModeSilence, env.Mode())
	assert.Equal(t, 5, env.PoolSize)
	assert.Equal(t, 64, env.CacheSize)
	require.NotNil(t, env.Seed)
	assert.EqualValues(t, 77, *env.Seed)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(EnvPoolSize))
	t.Cleanup(func() { _ = os.Unsetenv(EnvPoolSize) })

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte(EnvPoolSize+"=7\n"), 0o600))
	env, err := LoadEnv(file)
	require.NoError(t, err)
	assert.Equal(t, 7, env.PoolSize)
}

func TestLoadEnvInvalid(t *testing.T) {
	cases := map[string]string{
		EnvPoolSize:  "abc",
		EnvCacheSize: "0",
		EnvSeed:      "1.5",
		EnvLogMode:   "loud",
		EnvAddr:      "localhost",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.True(t, errs.IsFatal(err))
		})
	}
}

func TestNewAndValid(t *testing.T) {
	lab, err := patternlab.NewAuto(core.Default(), patternlab.Configs(demo_configs.FS))
	require.NoError(t, err)

	seed := int64(1)
	env := &Env{Addr: ":0", LogMode: "silence", PoolSize: 2, CacheSize: 8, Seed: &seed}
	sc, err := New(env, lab)
	require.NoError(t, err)
	assert.Equal(t, ":0", sc.Addr)
	assert.Equal(t, 2, sc.PoolSize)
	assert.Same(t, lab, sc.Lab)
	assert.NotNil(t, sc.Log)

	_, err = New(nil, lab)
	assert.Error(t, err)
	_, err = New(env, nil)
	assert.Error(t, err)

	bare := &SvrCfg{PoolSize: 99, Lab: lab}
	require.NoError(t, bare.Valid())
	assert.Equal(t, 10, bare.PoolSize)
	assert.Equal(t, DefaultAddr, bare.Addr)
	assert.NotNil(t, bare.Log)

	assert.Error(t, (&SvrCfg{}).Valid())
}
