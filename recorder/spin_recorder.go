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

package recorder

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/sdk/buf"
	"github.com/zintix-labs/patternlab/sdk/calc"
	"github.com/zintix-labs/patternlab/sdk/pattern"
	"github.com/zintix-labs/patternlab/spec"
	"github.com/zintix-labs/patternlab/stats"
)

// SpinRecorder 遊戲紀錄員
//
// SpinRecorder 負責紀錄 spin 結果，並透過 Done 輸出統計報表。
// 派彩加總以 decimal 累積，大量模擬下不會因浮點誤差漂移。
type SpinRecorder struct {
	GameName string
	GameId   spec.GID
	Grid     spec.GridSize
	Basic    *BasicRecord
	Types    *TypeRecord
	Dist     *DistRecord
	Events   *EventRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	Rounds      int
	Hits        int
	TotalPayout decimal.Decimal
	PayoutSqSum decimal.Decimal // 平方和
	MaxPayout   float64
}

// TypeRecord 依 pattern 類型的計分紀錄
type TypeRecord struct {
	Wins   [pattern.NumTypes]int
	Payout [pattern.NumTypes]decimal.Decimal
}

// DistRecord 派彩區間落點統計
type DistRecord struct {
	Bucket  *stats.PayoutBuckets
	Collect []int
}

// EventRecord luck、特殊序列與盤面尺寸紀錄
type EventRecord struct {
	Forced      int
	ForcedCells int
	RawMatches  int
	Resolved    int
	Sequence666 int
	Sequence999 int
	Sizes       map[spec.GridSize]int
}

func NewSpinRecorder(name string, id spec.GID, size spec.GridSize) (*SpinRecorder, error) {
	if name == "" {
		return nil, errs.NewFatal("recorder requires game name")
	}
	if err := size.Validate(); err != nil {
		return nil, err
	}
	s := &SpinRecorder{
		GameName: name,
		GameId:   id,
		Grid:     size,
		Basic:    &BasicRecord{},
		Types:    &TypeRecord{},
		Dist: &DistRecord{
			Bucket:  stats.Buckets,
			Collect: make([]int, stats.Buckets.Len()),
		},
		Events: &EventRecord{Sizes: make(map[spec.GridSize]int)},
	}
	return s, nil
}

// MergeSpinRecorder 合併多個紀錄員（通常來自 SimMP 的各個 worker）
func MergeSpinRecorder(r []*SpinRecorder) (*SpinRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge spin record err : empty recorders")
	}
	r0 := r[0]
	s, err := NewSpinRecorder(r0.GameName, r0.GameId, r0.Grid)
	if err != nil {
		return nil, err
	}
	for _, v := range r {
		if v.GameName != r0.GameName || v.GameId != r0.GameId {
			return nil, errs.NewFatal("merge spin record err : different game")
		}
		if v.Grid != r0.Grid {
			return nil, errs.NewFatal("merge spin record err : different base grid")
		}
		b := v.Basic
		s.Basic.Rounds += b.Rounds
		s.Basic.Hits += b.Hits
		s.Basic.TotalPayout = s.Basic.TotalPayout.Add(b.TotalPayout)
		s.Basic.PayoutSqSum = s.Basic.PayoutSqSum.Add(b.PayoutSqSum)
		s.Basic.MaxPayout = max(s.Basic.MaxPayout, b.MaxPayout)

		for i := range pattern.NumTypes {
			s.Types.Wins[i] += v.Types.Wins[i]
			s.Types.Payout[i] = s.Types.Payout[i].Add(v.Types.Payout[i])
		}
		for i := range v.Dist.Collect {
			s.Dist.Collect[i] += v.Dist.Collect[i]
		}

		e := v.Events
		s.Events.Forced += e.Forced
		s.Events.ForcedCells += e.ForcedCells
		s.Events.RawMatches += e.RawMatches
		s.Events.Resolved += e.Resolved
		s.Events.Sequence666 += e.Sequence666
		s.Events.Sequence999 += e.Sequence999
		for k, n := range e.Sizes {
			s.Events.Sizes[k] += n
		}
	}
	return s, nil
}

// Record 以單次 SpinResult 更新統計
func (s *SpinRecorder) Record(sr *buf.SpinResult) {
	s.recordBasic(sr)
	s.recordTypes(sr)
	s.recordDist(sr)
	s.recordEvents(sr)
}

func (s *SpinRecorder) Done() *stats.StatReport {
	types := make([]string, pattern.NumTypes)
	wins := make([]int, pattern.NumTypes)
	payout := make([]float64, pattern.NumTypes)
	for i, t := range pattern.Types {
		types[i] = t.String()
		wins[i] = s.Types.Wins[t]
		payout[i] = s.Types.Payout[t].InexactFloat64()
	}
	sizes := make(map[string]int, len(s.Events.Sizes))
	for k, n := range s.Events.Sizes {
		sizes[k.String()] = n
	}
	collect := make([]int, len(s.Dist.Collect))
	copy(collect, s.Dist.Collect)

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    s.GameName,
			GameId:      s.GameId,
			Grid:        s.Grid.String(),
			Rounds:      s.Basic.Rounds,
			TotalPayout: s.Basic.TotalPayout.InexactFloat64(),
			PayoutSqSum: s.Basic.PayoutSqSum.InexactFloat64(),
			MaxPayout:   s.Basic.MaxPayout,
			Hits:        s.Basic.Hits,
		},
		Types: &stats.TypeReport{
			Types:  types,
			Wins:   wins,
			Payout: payout,
		},
		Dist: &stats.DistReport{
			PayoutBucket: s.Dist.Bucket.Labels(),
			Collect:      collect,
		},
		Events: &stats.EventReport{
			Forced:          s.Events.Forced,
			ForcedCells:     s.Events.ForcedCells,
			RawMatches:      s.Events.RawMatches,
			ResolvedMatches: s.Events.Resolved,
			Sequence666:     s.Events.Sequence666,
			Sequence999:     s.Events.Sequence999,
			Sizes:           sizes,
		},
	}
	return report
}

// RecordPayout 只記錄一局的總派彩（例如外部系統回報的結果），payout > 0 視為命中。
//
// 類型與事件統計不受影響。
func (s *SpinRecorder) RecordPayout(payout float64) {
	s.recordPayout(payout, payout > 0)
	s.Dist.Collect[s.Dist.Bucket.Index(payout)]++
}

func (s *SpinRecorder) recordBasic(sr *buf.SpinResult) {
	s.recordPayout(sr.Total, sr.Hit())
}

func (s *SpinRecorder) recordPayout(total float64, hit bool) {
	b := s.Basic
	b.Rounds++
	if hit {
		b.Hits++
	}
	if total == 0 {
		return
	}
	d := decimal.NewFromFloat(total)
	b.TotalPayout = b.TotalPayout.Add(d)
	b.PayoutSqSum = b.PayoutSqSum.Add(d.Mul(d))
	b.MaxPayout = max(b.MaxPayout, total)
}

func (s *SpinRecorder) recordTypes(sr *buf.SpinResult) {
	if !sr.Hit() {
		return
	}
	wins := sr.WinsByType()
	pay := sr.PayoutByType()
	for i := range pattern.NumTypes {
		s.Types.Wins[i] += wins[i]
		if pay[i] != 0 {
			s.Types.Payout[i] = s.Types.Payout[i].Add(decimal.NewFromFloat(pay[i]))
		}
	}
}

func (s *SpinRecorder) recordDist(sr *buf.SpinResult) {
	s.Dist.Collect[s.Dist.Bucket.Index(sr.Total)]++
}

func (s *SpinRecorder) recordEvents(sr *buf.SpinResult) {
	e := s.Events
	if sr.IsForced() {
		e.Forced++
		e.ForcedCells += len(sr.Forced.Cells)
	}
	e.RawMatches += len(sr.Raw)
	e.Resolved += len(sr.Resolved)
	switch sr.Sequence {
	case calc.Sequence666:
		e.Sequence666++
	case calc.Sequence999:
		e.Sequence999++
	}
	e.Sizes[sr.Size]++
}
