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

package pattern

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary catalog 統計，用於調整倍率與檢查生成結果。
type Summary struct {
	Total          int            `json:"total"           yaml:"total"`
	Lines          int            `json:"lines"           yaml:"lines"`
	Diagonals      int            `json:"diagonals"       yaml:"diagonals"`
	Geometric      int            `json:"geometric"       yaml:"geometric"`
	Duplicates     int            `json:"duplicates"      yaml:"duplicates"`
	ByDifficulty   map[int]int    `json:"by_difficulty"   yaml:"by_difficulty"`
	MultiplierMean float64        `json:"multiplier_mean" yaml:"multiplier_mean"`
	MultiplierStd  float64        `json:"multiplier_std"  yaml:"multiplier_std"`
	RarityMean     float64        `json:"rarity_mean"     yaml:"rarity_mean"`
	RarityStd      float64        `json:"rarity_std"      yaml:"rarity_std"`
	MultiplierHist MultiplierHist `json:"multiplier_hist" yaml:"multiplier_hist"`
}

// MultiplierHist 倍率分佈：[1.0,1.5)、[1.5,2.0)、2.0 以上；低於 1.0 歸在 Below。
type MultiplierHist struct {
	Below int `json:"below" yaml:"below"`
	Low   int `json:"low"   yaml:"low"`
	Mid   int `json:"mid"   yaml:"mid"`
	High  int `json:"high"  yaml:"high"`
}

// Complexity 單一形狀的幾何特徵。
//
//   - Area：外接矩形面積
//   - Coverage：格數 / 面積
//   - Spread：外接矩形對角線長度
//   - Score：Coverage x Spread / Area
type Complexity struct {
	Area     int     `json:"area"     yaml:"area"`
	Coverage float64 `json:"coverage" yaml:"coverage"`
	Spread   float64 `json:"spread"   yaml:"spread"`
	Score    float64 `json:"score"    yaml:"score"`
}

// Analyze 統計 catalog；空 catalog 回傳全零。
func Analyze(catalog []Pattern) Summary {
	s := Summary{Total: len(catalog), ByDifficulty: map[int]int{}}
	if len(catalog) == 0 {
		return s
	}
	mults := make([]float64, len(catalog))
	rarity := make([]float64, len(catalog))
	seen := make(map[string]struct{}, len(catalog))
	for i, p := range catalog {
		switch p.Type {
		case Line:
			s.Lines++
		case Diagonal:
			s.Diagonals++
		case Geometric:
			s.Geometric++
		}
		k := p.Key()
		if _, dup := seen[k]; dup {
			s.Duplicates++
		}
		seen[k] = struct{}{}
		s.ByDifficulty[p.Difficulty]++

		m := p.BaseMultiplier
		switch {
		case m < 1.0:
			s.MultiplierHist.Below++
		case m < 1.5:
			s.MultiplierHist.Low++
		case m < 2.0:
			s.MultiplierHist.Mid++
		default:
			s.MultiplierHist.High++
		}
		mults[i] = m
		rarity[i] = p.Rarity
	}
	s.MultiplierMean, s.MultiplierStd = meanStd(mults)
	s.RarityMean, s.RarityStd = meanStd(rarity)
	return s
}

// ComplexityOf 計算形狀的外接矩形特徵；空形狀回傳零值。
func ComplexityOf(p Pattern) Complexity {
	if len(p.Positions) == 0 {
		return Complexity{}
	}
	minR, maxR := p.Positions[0].Row, p.Positions[0].Row
	minC, maxC := p.Positions[0].Col, p.Positions[0].Col
	for _, q := range p.Positions[1:] {
		minR, maxR = min(minR, q.Row), max(maxR, q.Row)
		minC, maxC = min(minC, q.Col), max(maxC, q.Col)
	}
	h, w := maxR-minR, maxC-minC
	area := (h + 1) * (w + 1)
	cov := float64(len(p.Positions)) / float64(area)
	spread := math.Hypot(float64(h), float64(w))
	return Complexity{
		Area:     area,
		Coverage: cov,
		Spread:   spread,
		Score:    cov * spread / float64(area),
	}
}

// meanStd 樣本數小於 2 時標準差為 0
func meanStd(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}
