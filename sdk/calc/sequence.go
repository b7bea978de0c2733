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

package calc

import (
	"github.com/zintix-labs/patternlab/sdk/grid"
	"github.com/zintix-labs/patternlab/spec"
)

// Sequence 特殊序列
type Sequence string

const (
	SequenceNone Sequence = ""
	Sequence666  Sequence = "666"
	Sequence999  Sequence = "999"
)

// DetectSequence 依盤面上指定圖標的數量判定特殊序列，大門檻優先。
func DetectSequence(g grid.Grid, ss spec.SequenceSetting) Sequence {
	if !ss.Enabled || ss.Symbol == "" {
		return SequenceNone
	}
	n := g.Count(ss.Symbol)
	switch {
	case ss.Large > 0 && n >= ss.Large:
		return Sequence999
	case ss.Small > 0 && n >= ss.Small:
		return Sequence666
	default:
		return SequenceNone
	}
}
