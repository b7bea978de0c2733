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

package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/patternlab/spec"
)

func TestNewAndFilled(t *testing.T) {
	size := spec.GridSize{Rows: 2, Cols: 3}
	g := New(size)
	require.Equal(t, 2, g.Rows())
	require.Equal(t, 3, g.Cols())
	assert.Equal(t, 6, g.Count(Empty))

	// 列之間不共用容量，append 不會覆寫下一列
	g[0] = append(g[0], "x")
	assert.Equal(t, Empty, g[1][0])

	f := Filled(size, "lemon")
	assert.Equal(t, 6, f.Count("lemon"))
}

func TestCloneIsDeep(t *testing.T) {
	g := Filled(spec.GridSize{Rows: 2, Cols: 2}, "bell")
	c := g.Clone()
	c[0][0] = "seven"
	assert.Equal(t, "bell", g[0][0])
}

func TestAtAndSetBounds(t *testing.T) {
	g := Filled(spec.GridSize{Rows: 2, Cols: 2}, "bell")
	assert.Equal(t, Empty, g.At(Pos{Row: 2, Col: 0}))
	assert.False(t, g.Set(Pos{Row: -1, Col: 0}, "x"))
	assert.True(t, g.Set(Pos{Row: 1, Col: 1}, "seven"))
	assert.Equal(t, "seven", g.At(Pos{Row: 1, Col: 1}))
}

func TestValidate(t *testing.T) {
	vocab := spec.DefaultSymbols()
	size := spec.GridSize{Rows: 2, Cols: 2}

	ok := FromRows([][]string{{"lemon", "bell"}, {"seven", "cherry"}})
	require.NoError(t, ok.Validate(size, vocab))

	cases := map[string]Grid{
		"ragged":  FromRows([][]string{{"lemon", "bell"}, {"seven"}}),
		"rows":    FromRows([][]string{{"lemon", "bell"}}),
		"unknown": FromRows([][]string{{"lemon", "bell"}, {"seven", "banana"}}),
		"empty":   FromRows([][]string{{"lemon", "bell"}, {"seven", Empty}}),
	}
	for name, g := range cases {
		err := g.Validate(size, vocab)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidGrid), name)
	}

	// 不給詞彙表時只檢查形狀
	assert.NoError(t, FromRows([][]string{{"a", "b"}, {"c", "d"}}).Validate(size, nil))
}

func TestString(t *testing.T) {
	g := FromRows([][]string{{"a", "b"}, {"c", "d"}})
	assert.Equal(t, "a b\nc d", g.String())
}
