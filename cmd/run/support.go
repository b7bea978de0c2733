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
	"context"
	"crypto/rand"
	"flag"
	"math"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/zintix-labs/patternlab"
	"github.com/zintix-labs/patternlab/demo"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/perf"
	"github.com/zintix-labs/patternlab/spec"
	"github.com/zintix-labs/patternlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	game   string
	id     spec.GID
	cfg    string // 可選：自訂 GameSetting 檔（.yaml/.yml/.json）
	worker int
	rounds int
	seed   int64
	format string
	pprof  perf.Mode
}

type gidFlag struct{ p *spec.GID }

func (f gidFlag) String() string {
	if f.p == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*f.p), 10)
}

func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.GID(uint(u))
	return nil
}

func bindFlags(args []string) (*config, error) {
	cfg := new(config)
	var pprofMode string
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&cfg.game, "game", "", "target game name")
	fs.Var(gidFlag{&cfg.id}, "gid", "target game id")
	fs.StringVar(&cfg.cfg, "cfg", "", "custom game setting file (.yaml/.yml/.json)")
	fs.IntVar(&cfg.worker, "worker", 1, "number of workers")
	fs.IntVar(&cfg.rounds, "rounds", 1_000_000, "total spins")
	fs.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator (< 0: random)")
	fs.StringVar(&cfg.format, "out", "table", "report format: table|json|yaml")
	fs.StringVar(&pprofMode, "p", "", "pprof: '', cpu, heap, allocs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	mode, err := perf.ParseMode(pprofMode)
	if err != nil {
		return nil, err
	}
	cfg.pprof = mode
	if err := cfg.valid(); err != nil {
		return nil, err
	}
	if cfg.seed < 0 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return nil, errs.NewFatal("seed generate failed")
		}
		cfg.seed = seed.Int64()
	}
	return cfg, nil
}

func (cfg *config) valid() error {
	if cfg.worker < 1 {
		return errs.NewWarn("value err : worker must > 0")
	}
	if cfg.rounds < 1 {
		return errs.NewWarn("value err : rounds must > 0")
	}
	if cfg.worker > cfg.rounds {
		cfg.worker = cfg.rounds
	}
	if cfg.format != "table" && stats.RenderOf(cfg.format) == nil {
		return errs.Warnf("value err : unknown format %q", cfg.format)
	}
	if cfg.cfg == "" && cfg.game == "" && cfg.id == 0 {
		return errs.NewWarn("value err : one of -game, -gid or -cfg is required")
	}
	return nil
}

// newSimulator 依 -cfg / -gid / -game 的優先序建立模擬器。
func (cfg *config) newSimulator(lab *patternlab.Lab) (*patternlab.Simulator, error) {
	if cfg.cfg != "" {
		raw, err := os.ReadFile(cfg.cfg)
		if err != nil {
			return nil, errs.Wrap(err, "read cfg failed")
		}
		switch strings.ToLower(filepath.Ext(cfg.cfg)) {
		case ".json":
			return lab.NewSimulatorByJSON(raw, cfg.seed)
		case ".yaml", ".yml":
			return lab.NewSimulatorByYAML(raw, cfg.seed)
		default:
			return nil, errs.Warnf("unsupported cfg extension: %s", cfg.cfg)
		}
	}
	id := cfg.id
	if id == 0 {
		ent, ok := lab.EntryByName(cfg.game)
		if !ok {
			return nil, errs.Warnf("game not found: %s", cfg.game)
		}
		id = ent.GID
	}
	return lab.NewSimulatorWithSeed(id, cfg.seed)
}

func execute(cfg *config) error {
	lab, err := demo.NewLab()
	if err != nil {
		return err
	}
	s, err := cfg.newSimulator(lab)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table := cfg.format == "table"
	if table {
		green := "\033[1;32m"
		reset := "\033[0m"
		p := message.NewPrinter(language.English)
		p.Printf("%s[GAME:%s] [WORKERS:%d] [ROUNDS:%d] [SEED:%d]%s\n", green, s.GameName, cfg.worker, cfg.rounds/cfg.worker*cfg.worker, s.InitSeed(), reset)
	}

	if cfg.worker == 1 {
		st, used, err := s.Sim(ctx, cfg.rounds, table)
		if err != nil {
			return err
		}
		return report(cfg, st, used)
	}
	// SimMP 的 rounds 為每個 worker 的局數
	st, used, err := s.SimMP(ctx, cfg.rounds/cfg.worker, cfg.worker, table)
	if err != nil {
		return err
	}
	return report(cfg, st, used)
}

func report(cfg *config, st *stats.StatReport, used time.Duration) error {
	if cfg.format == "table" {
		st.StdOut(used)
		return nil
	}
	return st.WriteWith(os.Stdout, stats.RenderOf(cfg.format))
}
