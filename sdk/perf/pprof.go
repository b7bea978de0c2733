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

// Package perf 以 runtime/pprof 包住一段模擬，輸出 cpu / heap / allocs profile。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/patternlab/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Mode profile 種類
type Mode string

const (
	ModeNone   Mode = ""
	ModeCPU    Mode = "cpu"
	ModeHeap   Mode = "heap"
	ModeAllocs Mode = "allocs"
)

// ParseMode 解析 flag 字串；未知值回傳錯誤。
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeCPU, ModeHeap, ModeAllocs:
		return m, nil
	default:
		return ModeNone, errs.Warnf("unknown pprof mode: %q (want cpu, heap, allocs)", s)
	}
}

// Run 依 mode 執行 exe 並在 dir 寫出對應的 profile，回傳 exe 的錯誤優先。
//
// Usage like:
//
//	go run ./cmd/run -p cpu
//	go tool pprof build/profiling/cpu.pprof
func Run(exe func() error, mode Mode, dir string) error {
	if mode == ModeNone {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "create pprof dir failed")
	}
	switch mode {
	case ModeCPU:
		return cpu(exe, filepath.Join(dir, "cpu.pprof"))
	case ModeHeap:
		return after(exe, filepath.Join(dir, "heap.pprof"), func(f *os.File) error {
			// 盡量讓快照貼近最新狀態
			runtime.GC()
			return pprof.WriteHeapProfile(f)
		})
	case ModeAllocs:
		return after(exe, filepath.Join(dir, "allocs.pprof"), func(f *os.File) error {
			prof := pprof.Lookup("allocs")
			if prof == nil {
				return nil
			}
			return prof.WriteTo(f, 0)
		})
	default:
		return exe()
	}
}

// cpu profile 涵蓋整段 exe，也可以作為 pgo 的 default.pgo。
func cpu(exe func() error, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create cpu profile failed")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile failed")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// after 在 exe 結束後寫出一次快照。Heap 只含 in-use，allocs 為累積配置。
func after(exe func() error, path string, write func(*os.File) error) error {
	if err := exe(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create profile failed")
	}
	defer f.Close()
	if err := write(f); err != nil {
		return errs.Wrap(err, "write profile failed")
	}
	return nil
}
