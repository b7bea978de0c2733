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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/zintix-labs/patternlab/catalog"
	"github.com/zintix-labs/patternlab/demo"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// catalog 工具：
//
//	go run ./cmd/catalog -rows 4 -cols 5                    # 預設動態 catalog 的分析
//	go run ./cmd/catalog -rows 3 -cols 3 -game legacy -list # 指定遊戲的 catalog 並列出 pattern
//	go run ./cmd/catalog -rows 6 -cols 6 -export 6x6.zst    # 匯出 zstd frame 串流
//	go run ./cmd/catalog -import 6x6.zst -format yaml       # 讀回並分析
func main() {
	opt := new(options)
	flag.IntVar(&opt.rows, "rows", 3, "grid rows")
	flag.IntVar(&opt.cols, "cols", 3, "grid cols")
	flag.StringVar(&opt.game, "game", "", "use the pattern setting of a registered demo game")
	flag.BoolVar(&opt.list, "list", false, "print every pattern")
	flag.StringVar(&opt.export, "export", "", "write the catalog to a zstd file")
	flag.StringVar(&opt.imp, "import", "", "read a catalog exported by -export")
	flag.StringVar(&opt.format, "format", "table", "output format: table|json|yaml")
	flag.Parse()

	if err := run(opt, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	rows, cols int
	game       string
	list       bool
	export     string
	imp        string
	format     string
}

type result struct {
	Game     string            `json:"game,omitempty"     yaml:"game,omitempty"`
	Size     spec.GridSize     `json:"size"               yaml:"size"`
	Summary  pattern.Summary   `json:"summary"            yaml:"summary"`
	Patterns []pattern.Pattern `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

func run(opt *options, w io.Writer) error {
	res, ps, err := load(opt)
	if err != nil {
		return err
	}
	if opt.export != "" {
		if err := exportTo(opt.export, res, ps); err != nil {
			return err
		}
	}
	if opt.list {
		res.Patterns = ps
	}
	return render(w, opt.format, res)
}

func load(opt *options) (*result, []pattern.Pattern, error) {
	if opt.imp != "" {
		f, err := os.Open(opt.imp)
		if err != nil {
			return nil, nil, errs.Wrap(err, "open import file failed")
		}
		defer f.Close()
		hdr, ps, err := catalog.Import(f)
		if err != nil {
			return nil, nil, err
		}
		return &result{Game: hdr.Game, Size: hdr.Size, Summary: pattern.Analyze(ps)}, ps, nil
	}

	size := spec.GridSize{Rows: opt.rows, Cols: opt.cols}
	if err := size.Validate(); err != nil {
		return nil, nil, err
	}
	if opt.game == "" {
		ps, err := pattern.Generate(size)
		if err != nil {
			return nil, nil, err
		}
		return &result{Size: size, Summary: pattern.Analyze(ps)}, ps, nil
	}

	lab, err := demo.NewLab()
	if err != nil {
		return nil, nil, err
	}
	ent, ok := lab.EntryByName(opt.game)
	if !ok {
		return nil, nil, errs.Warnf("game not found: %s", opt.game)
	}
	cache, err := lab.Cache(ent.GID)
	if err != nil {
		return nil, nil, err
	}
	ps, err := cache.Get(size)
	if err != nil {
		return nil, nil, err
	}
	return &result{Game: ent.Name, Size: size, Summary: pattern.Analyze(ps)}, ps, nil
}

func exportTo(path string, res *result, ps []pattern.Pattern) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create export file failed")
	}
	if err := catalog.Export(f, res.Game, res.Size, ps); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func render(w io.Writer, format string, res *result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		renderTable(w, res)
		return nil
	default:
		return errs.Warnf("unknown format: %q", format)
	}
}

func renderTable(w io.Writer, res *result) {
	p := message.NewPrinter(language.English)
	s := res.Summary
	title := res.Size.String()
	if res.Game != "" {
		title = res.Game + " " + title
	}
	p.Fprintf(w, "== catalog %s ==\n", title)
	p.Fprintf(w, "%-16s %d\n", "total", s.Total)
	p.Fprintf(w, "%-16s %d\n", "lines", s.Lines)
	p.Fprintf(w, "%-16s %d\n", "diagonals", s.Diagonals)
	p.Fprintf(w, "%-16s %d\n", "geometric", s.Geometric)
	p.Fprintf(w, "%-16s %d\n", "duplicates", s.Duplicates)
	p.Fprintf(w, "%-16s %.3f ± %.3f\n", "multiplier", s.MultiplierMean, s.MultiplierStd)
	p.Fprintf(w, "%-16s %.4f ± %.4f\n", "rarity", s.RarityMean, s.RarityStd)
	p.Fprintf(w, "%-16s <1:%d  1-1.5:%d  1.5-2:%d  >=2:%d\n", "multiplier hist",
		s.MultiplierHist.Below, s.MultiplierHist.Low, s.MultiplierHist.Mid, s.MultiplierHist.High)

	diffs := make([]int, 0, len(s.ByDifficulty))
	for d := range s.ByDifficulty {
		diffs = append(diffs, d)
	}
	sort.Ints(diffs)
	for _, d := range diffs {
		p.Fprintf(w, "%-16s %d\n", fmt.Sprintf("difficulty %d", d), s.ByDifficulty[d])
	}
	for _, pt := range res.Patterns {
		p.Fprintf(w, "  %-24s %-9s x%.2f %v\n", pt.Name, pt.Type, pt.BaseMultiplier, pt.Positions)
	}
}
