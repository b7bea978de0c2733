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
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/patternlab/server/httperr"
)

const defaultAddr = ":5808"

// 模擬端點最長 60 秒，寫入逾時需大於它
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 90 * time.Second
	idleTimeout       = 120 * time.Second
)

// chiRouter 以 chi.Router 實作 NetRouter；Group 回呼拿到的也是它。
type chiRouter struct {
	r chi.Router
}

func (c chiRouter) Use(mw func(http.Handler) http.Handler) { c.r.Use(mw) }
func (c chiRouter) Get(path string, h http.HandlerFunc)    { c.r.Get(path, h) }
func (c chiRouter) Post(path string, h http.HandlerFunc)   { c.r.Post(path, h) }
func (c chiRouter) Put(path string, h http.HandlerFunc)    { c.r.Put(path, h) }
func (c chiRouter) Delete(path string, h http.HandlerFunc) { c.r.Delete(path, h) }

func (c chiRouter) Group(path string, fn func(NetRouter)) {
	c.r.Route(path, func(r chi.Router) { fn(chiRouter{r: r}) })
}

// ChiAdapter 以 chi 路由加上 net/http server 實作 NetSvr。
type ChiAdapter struct {
	chiRouter
	root   *chi.Mux
	server *http.Server
	addr   string
}

// NewChiServer 建立監聽 addr 的 server；未知路徑與不支援的 method 也回 JSON 錯誤。
func NewChiServer(addr string) *ChiAdapter {
	mux := chi.NewRouter()
	mux.NotFound(jsonStatus(http.StatusNotFound, "route not found"))
	mux.MethodNotAllowed(jsonStatus(http.StatusMethodNotAllowed, "method not allowed"))
	return &ChiAdapter{
		chiRouter: chiRouter{r: mux},
		root:      mux,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		addr: addr,
	}
}

// NewChiServerDefault 監聽 :5808
func NewChiServerDefault() *ChiAdapter {
	return NewChiServer(defaultAddr)
}

func (c *ChiAdapter) Ready() bool {
	return c != nil && c.root != nil && c.server != nil &&
		strings.Contains(c.addr, ":") && c.server.Handler == http.Handler(c.root)
}

func (c *ChiAdapter) Run() error {
	return c.server.ListenAndServe()
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Address() string {
	return c.addr
}

func (c *ChiAdapter) Handler() http.Handler {
	return c.root
}

func jsonStatus(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(httperr.Body{Status: status, Level: "warn", Error: msg})
	}
}
