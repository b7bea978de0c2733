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
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunTable(t *testing.T) {
	var out bytes.Buffer
	if err := run(&options{rows: 3, cols: 3, game: "legacy", list: true, format: "table"}, &out); err != nil {
		t.Fatalf("run err=%v", err)
	}
	s := out.String()
	if !strings.Contains(s, "legacy") {
		t.Fatalf("missing title: %s", s)
	}
	if !strings.Contains(s, "total") {
		t.Fatalf("missing total: %s", s)
	}
}

func TestRunExportImport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "4x5.zst")
	var first bytes.Buffer
	if err := run(&options{rows: 4, cols: 5, export: file, format: "json"}, &first); err != nil {
		t.Fatalf("export err=%v", err)
	}
	var want result
	if err := json.Unmarshal(first.Bytes(), &want); err != nil {
		t.Fatalf("decode err=%v", err)
	}

	var second bytes.Buffer
	if err := run(&options{imp: file, list: true, format: "json"}, &second); err != nil {
		t.Fatalf("import err=%v", err)
	}
	var got result
	if err := json.Unmarshal(second.Bytes(), &got); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if got.Size != want.Size || got.Summary.Total != want.Summary.Total {
		t.Fatalf("round trip mismatch: got %+v want %+v", got.Size, want.Size)
	}
	if len(got.Patterns) != want.Summary.Total {
		t.Fatalf("patterns=%d want %d", len(got.Patterns), want.Summary.Total)
	}
}

func TestRunErrors(t *testing.T) {
	cases := []*options{
		{rows: 0, cols: 3, format: "table"},
		{rows: 3, cols: 3, game: "nope", format: "table"},
		{rows: 4, cols: 4, game: "legacy", format: "table"},
		{rows: 3, cols: 3, format: "xml"},
		{imp: filepath.Join(t.TempDir(), "missing.zst"), format: "table"},
	}
	for i, opt := range cases {
		if err := run(opt, &bytes.Buffer{}); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
