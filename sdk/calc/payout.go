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

// Multipliers session 級倍率（charm、事件），乘在總派彩上。
type Multipliers struct {
	Symbols  float64 `json:"symbols"  yaml:"symbols"`
	Patterns float64 `json:"patterns" yaml:"patterns"`
}

// DefaultMultipliers 1x1
func DefaultMultipliers() Multipliers {
	return Multipliers{Symbols: 1, Patterns: 1}
}

// SumPayout 各筆派彩加總
func SumPayout(matches []Match) float64 {
	sum := 0.0
	for _, m := range matches {
		sum += m.Payout
	}
	return sum
}

// TotalPayout (Σ payout) x Symbols x Patterns。
//
// 不做任何取整，顯示貨幣時由呼叫端處理。
func TotalPayout(matches []Match, m Multipliers) float64 {
	return SumPayout(matches) * m.Symbols * m.Patterns
}
