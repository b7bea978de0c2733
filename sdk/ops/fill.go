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

package ops

import "github.com/zintix-labs/patternlab/sdk/grid"

// Fill 將指定格子寫成 symbol，超出盤面的座標略過。回傳實際寫入的格數。
func Fill(g grid.Grid, ps []grid.Pos, symbol string) int {
	n := 0
	for _, p := range ps {
		if g.Set(p, symbol) {
			n++
		}
	}
	return n
}
