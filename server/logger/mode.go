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

// Package logger 依執行模式組出 slog.Logger，並提供把任意 slog.Handler 轉為非阻塞的 AsyncHandler。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogMode 執行模式
type LogMode uint8

const (
	ModeDev     LogMode = iota // text，stderr，Debug 以上
	ModeProd                   // JSON，stdout，Info 以上，給 Loki / Promtail
	ModeSilence                // 全部丟棄
)

// ParseMode 解析環境變數 / flag 的模式字串（dev / prod / silence，不分大小寫，可帶 Mode 前綴）。
// 空字串視為 dev；無法辨識時回傳 ModeDev 與 false。
func ParseMode(s string) (LogMode, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "Mode")) {
	case "", "dev":
		return ModeDev, true
	case "prod":
		return ModeProd, true
	case "silence":
		return ModeSilence, true
	default:
		return ModeDev, false
	}
}

func (m LogMode) String() string {
	switch m {
	case ModeDev:
		return "dev"
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "unknown"
	}
}

// NewDefaultLogger 同步 logger，輸出位置依模式決定
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(handlerFor(mode, nil))
}

// NewWithWriter 與 NewDefaultLogger 相同格式，但寫到 w（silence 模式仍然丟棄）。
func NewWithWriter(mode LogMode, w io.Writer) *slog.Logger {
	return slog.New(handlerFor(mode, w))
}

// NewAsync 以模式預設的 handler 包一層 AsyncHandler；呼叫端負責在結束前 Close 以 drain。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(handlerFor(mode, nil), buf)
	return slog.New(ah), ah
}

// handlerFor w 為 nil 時使用模式預設的輸出
func handlerFor(mode LogMode, w io.Writer) slog.Handler {
	switch mode {
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	case ModeProd:
		if w == nil {
			w = os.Stdout
		}
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		if w == nil {
			w = os.Stderr
		}
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
