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

package demo

import (
	"path/filepath"
	"testing"

	"github.com/zintix-labs/patternlab/server/svrcfg"
)

func TestNewLab(t *testing.T) {
	lab, err := NewLab()
	if err != nil {
		t.Fatalf("NewLab err=%v", err)
	}
	sum, err := lab.Summary()
	if err != nil {
		t.Fatalf("Summary err=%v", err)
	}
	if len(sum) != 3 {
		t.Fatalf("games=%d want 3", len(sum))
	}
}

func TestNewServerConfig(t *testing.T) {
	t.Setenv(svrcfg.EnvLogMode, "silence")
	t.Setenv(svrcfg.EnvPoolSize, "2")
	sc, err := NewServerConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("NewServerConfig err=%v", err)
	}
	if sc.PoolSize != 2 || sc.Lab == nil {
		t.Fatalf("unexpected cfg: %+v", sc)
	}

	sc, err = NewSilentServerConfig(50, 7)
	if err != nil {
		t.Fatalf("NewSilentServerConfig err=%v", err)
	}
	if sc.PoolSize != 10 || *sc.Seed != 7 {
		t.Fatalf("pool=%d seed=%d", sc.PoolSize, *sc.Seed)
	}
}
