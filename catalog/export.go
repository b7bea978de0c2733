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

package catalog

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/patternlab/corefmt"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
)

// 匯出檔格式：zstd(frame(header) || frame(pattern)...)，每個 frame 為 corefmt blob frame 包住的 JSON。
const (
	exportVersion  = 1
	maxExportFrame = 1 << 20
)

// ExportHeader 匯出檔的第一個 frame
type ExportHeader struct {
	Version int             `json:"version"`
	Game    string          `json:"game,omitempty"`
	Size    spec.GridSize   `json:"size"`
	Count   int             `json:"count"`
	Summary pattern.Summary `json:"summary"`
}

// Export 將 catalog 以 zstd 壓縮的 frame 串流寫入 w。
func Export(w io.Writer, game string, size spec.GridSize, ps []pattern.Pattern) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return errs.Wrap(err, "new zstd writer failed")
	}
	hdr := ExportHeader{
		Version: exportVersion,
		Game:    game,
		Size:    size,
		Count:   len(ps),
		Summary: pattern.Analyze(ps),
	}
	if err := writeFrame(zw, hdr); err != nil {
		_ = zw.Close()
		return err
	}
	for i := range ps {
		if err := writeFrame(zw, ps[i]); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "close zstd writer failed")
	}
	return nil
}

// Import 讀回 Export 的輸出，並檢查筆數與 header 一致。
func Import(r io.Reader) (ExportHeader, []pattern.Pattern, error) {
	var hdr ExportHeader
	zr, err := zstd.NewReader(r)
	if err != nil {
		return hdr, nil, errs.Wrap(err, "new zstd reader failed")
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	if err := readFrame(br, &hdr); err != nil {
		if err == io.EOF {
			return hdr, nil, errs.NewWarn("empty catalog export")
		}
		return hdr, nil, err
	}
	if hdr.Version != exportVersion {
		return hdr, nil, errs.Warnf("unsupported catalog export version: %d", hdr.Version)
	}
	if err := hdr.Size.Validate(); err != nil {
		return hdr, nil, err
	}

	ps := make([]pattern.Pattern, 0, hdr.Count)
	for {
		var p pattern.Pattern
		err := readFrame(br, &p)
		if err == io.EOF {
			break
		}
		if err != nil {
			return hdr, nil, err
		}
		ps = append(ps, p)
	}
	if len(ps) != hdr.Count {
		return hdr, nil, errs.Warnf("catalog export truncated: got %d patterns, want %d", len(ps), hdr.Count)
	}
	return hdr, ps, nil
}

func writeFrame(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errs.Wrap(err, "encode frame failed")
	}
	return corefmt.WriteBlobFrame(w, raw)
}

func readFrame(r *bufio.Reader, v any) error {
	raw, err := corefmt.ReadBlobFrame(r, maxExportFrame)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errs.Wrap(err, "decode frame failed")
	}
	return nil
}
