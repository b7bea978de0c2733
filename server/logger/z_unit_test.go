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

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want LogMode
		ok   bool
	}{
		{"", ModeDev, true},
		{"dev", ModeDev, true},
		{"PROD", ModeProd, true},
		{" silence ", ModeSilence, true},
		{"ModeProd", ModeProd, true},
		{"loud", ModeDev, false},
	}
	for _, c := range cases {
		got, ok := ParseMode(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
	assert.Equal(t, "prod", ModeProd.String())
	assert.Equal(t, "unknown", LogMode(9).String())
}

func TestAsyncLoggerClose(t *testing.T) {
	log, h := NewAsync(8, ModeSilence)
	assert.True(t, h.Ready())
	for i := 0; i < 32; i++ {
		log.Info("spin", "i", i)
	}
	h.Close()
	h.Close()

	before := h.Dropped()
	log.Info("after close")
	assert.Equal(t, before+1, h.Dropped())
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(ModeProd, &buf).Debug("hidden")
	NewWithWriter(ModeProd, &buf).Info("spin", "gid", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"spin"`)
	assert.Contains(t, out, `"gid":1`)

	buf.Reset()
	NewWithWriter(ModeSilence, &buf).Error("dropped")
	assert.Zero(t, buf.Len())
}

func TestAsyncHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewAsyncHandler(slog.NewJSONHandler(&buf, nil), 16)
	log := slog.New(h).With("game", "gamblerino").WithGroup("spin")
	log.Info("done", "total", 12.5)
	h.Close()
	assert.Contains(t, buf.String(), `"game":"gamblerino"`)
	assert.Contains(t, buf.String(), `"spin":{"total":12.5}`)
	assert.Zero(t, h.Dropped())
}
