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

// Package catalog 管理遊戲設定目錄（Registry）與各盤面尺寸的 pattern catalog 快取（Cache）。
package catalog

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zintix-labs/patternlab/errs"
	"github.com/zintix-labs/patternlab/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate game id")
	ErrDupName = errs.NewFatal("duplicate game name")
)

// Entry 一筆已註冊的遊戲
type Entry struct {
	GID        spec.GID
	Name       string
	ConfigName string
}

// Summary 對外列舉用的遊戲摘要
type Summary struct {
	GID     spec.GID      `json:"gid"`
	Name    string        `json:"name"`
	Grid    spec.GridSize `json:"grid"`
	Catalog string        `json:"catalog"`
	Symbols []string      `json:"symbols"`
	Effects int           `json:"effects"`
}

// Registry 遊戲設定目錄。註冊完成後 Freeze，之後只讀。
type Registry struct {
	byID   map[spec.GID]Entry
	byName map[string]Entry
	ids    []spec.GID          // 穩定排序
	unique map[string]struct{} // 一組遊戲，檔名需唯一
	config *multiFS
	frozen bool
}

// NewRegistry 以一或多個平坦的 fs.FS 建立目錄，設定檔名在所有來源中必須唯一。
func NewRegistry(cfg ...fs.FS) (*Registry, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create registry")
	}
	return &Registry{
		byID:   map[spec.GID]Entry{},
		byName: map[string]Entry{},
		ids:    make([]spec.GID, 0, 16),
		unique: map[string]struct{}{},
		config: multFS,
	}, nil
}

// Register 整批註冊；任何一筆不合法時整批都不寫入。
func (c *Registry) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when registry already frozen")
	}
	seenID := map[spec.GID]struct{}{}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for i := range metas {
		meta := &metas[i]
		meta.Name = normName(meta.Name)
		if meta.Name == "" {
			return errs.NewFatal("game name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[meta.ConfigName]; !ok {
			return errs.Fatalf("config file not found: %s", meta.ConfigName)
		}
		if _, ok := c.byID[meta.GID]; ok {
			return ErrDupID.Withf("gid=%d", meta.GID)
		}
		if _, ok := seenID[meta.GID]; ok {
			return ErrDupID.Withf("gid=%d", meta.GID)
		}
		if _, ok := c.byName[meta.Name]; ok {
			return ErrDupName.With(meta.Name)
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName.With(meta.Name)
		}
		if _, ok := c.unique[meta.ConfigName]; ok {
			return errs.Fatalf("duplicate config name: %s", meta.ConfigName)
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.Fatalf("duplicate config name: %s", meta.ConfigName)
		}
		seenID[meta.GID] = struct{}{}
		seenName[meta.Name] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
	}
	for _, meta := range metas {
		c.unique[meta.ConfigName] = struct{}{}
		c.byID[meta.GID] = meta
		c.byName[meta.Name] = meta
		c.ids = append(c.ids, meta.GID)
	}
	slices.Sort(c.ids)
	return nil
}

func (c *Registry) GetByID(id spec.GID) (Entry, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// GetByName 名稱不分大小寫
func (c *Registry) GetByName(name string) (Entry, bool) {
	m, ok := c.byName[normName(name)]
	return m, ok
}

func (c *Registry) IDs() []spec.GID {
	if len(c.ids) == 0 {
		return nil
	}
	return slices.Clone(c.ids)
}

// All 依 GID 排序回傳所有遊戲
func (c *Registry) All() []Entry {
	m := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		m = append(m, c.byID[id])
	}
	return m
}

// Sources 設定檔來源（唯讀）
func (c *Registry) Sources() []fs.FS {
	return c.config.Sources()
}

func (c *Registry) Freeze() {
	c.frozen = true
}

func (c *Registry) IsFrozen() bool {
	return c.frozen
}

// GameSettingByID 讀取並初始化該遊戲的設定。每次呼叫都會得到新的實例。
func (c *Registry) GameSettingByID(id spec.GID) (*spec.GameSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.Warnf("game id %d does not exist", id)
	}
	return c.load(e)
}

// GameSettingByName 同 GameSettingByID，以名稱查找。
func (c *Registry) GameSettingByName(name string) (*spec.GameSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.Warnf("game %q does not exist", name)
	}
	return c.load(e)
}

// ParseFile 依副檔名解析設定檔內容
func ParseFile(filename string, raw []byte) (*spec.GameSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return spec.GetGameSettingByYAML(raw)
	case ".json":
		return spec.GetGameSettingByJSON(raw)
	default:
		return nil, errs.Fatalf("unsupported config format: %q", filename)
	}
}

// ConfigFiles 已索引的設定檔名（排序後）
func (c *Registry) ConfigFiles() []string {
	return c.config.Files()
}

// ReadConfig 讀取設定檔原始內容
func (c *Registry) ReadConfig(name string) ([]byte, error) {
	src, ok := c.config.GetFS(name)
	if !ok {
		return nil, errs.Warnf("config %s does not exist", name)
	}
	raw, err := fs.ReadFile(src, name)
	if err != nil {
		return nil, errs.Wrap(err, "registry read file error")
	}
	return raw, nil
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func (c *Registry) load(e Entry) (*spec.GameSetting, error) {
	src, ok := c.config.GetFS(e.ConfigName)
	if !ok {
		return nil, errs.Warnf("config %s does not exist", e.ConfigName)
	}
	raw, err := fs.ReadFile(src, e.ConfigName)
	if err != nil {
		return nil, errs.Wrap(err, "registry read file error")
	}
	return ParseFile(e.ConfigName, raw)
}

func normName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsConfigFile 是否為可辨識的設定檔名（.yaml/.yml/.json，不含隱藏檔）
func IsConfigFile(name string) bool {
	return validFileName(name) == nil
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 只接受檔名，不接受路徑
	if strings.ContainsAny(file, `/\:`) {
		return errs.Fatalf("invalid config filename: %q (must be a basename)", file)
	}
	lower := strings.ToLower(file)
	if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
		return errs.Fatalf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	if strings.HasPrefix(file, ".") {
		return errs.Fatalf("invalid config filename: %q (cannot start with '.')", file)
	}
	return nil
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.Fatalf("fs[%d] is nil", i)
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 16),
	}

	for i := range src {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 設定目錄必須是平坦的，只允許根目錄
				if path == "." {
					return nil
				}
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", path)
			}
			if !IsConfigFile(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.Fatalf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i)
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], true
	}
	return nil, false
}

func (m *multiFS) Sources() []fs.FS {
	if m == nil || len(m.src) == 0 {
		return nil
	}
	return slices.Clone(m.src)
}

// Files 依檔名排序列出所有設定檔
func (m *multiFS) Files() []string {
	out := make([]string, 0, len(m.index))
	for k := range m.index {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
