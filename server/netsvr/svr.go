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

package netsvr

import (
	"net/http"

	"github.com/zintix-labs/patternlab/server/app"
)

// NetSvr 可啟停、可註冊路由的 HTTP server，交給 app.App 管理生命週期。
//
// 目前只有 chi 的實作；換框架時實作相容 net/http 的版本即可，api 層不需要改動。
type NetSvr interface {
	NetRouter
	app.Component
	// Handler 完整的路由樹，給 httptest 或外部 listener 使用
	Handler() http.Handler
}

// NetRouter 只有路由能力，api 子模組拿到的是這個介面，無法控制 server 啟停。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
