package spec

import (
	"strings"

	"github.com/zintix-labs/patternlab/errs"
)

// SymbolDef 單一圖標的定義。
//
// Fields:
//   - ID: 圖標識別字（盤面上存放的就是這個字串）
//   - Value: 基礎分（baseSymbolValue）
//   - Weight: 生成盤面與 luck 強制時的抽樣權重
//   - Multiplier: 圖標專屬倍率（symbolSpecificMultiplier）
type SymbolDef struct {
	ID         string  `yaml:"id"         json:"id"         validate:"required"`
	Value      float64 `yaml:"value"      json:"value"      validate:"gte=0"`
	Weight     float64 `yaml:"weight"     json:"weight"     validate:"gt=0"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier" validate:"gt=0"`
}

// SymbolSetting 圖標表。順序即為抽樣表的順序，ID 必須唯一。
type SymbolSetting struct {
	Symbols  []SymbolDef    `yaml:"symbols" json:"symbols" validate:"required,min=1,dive"`
	index    map[string]int `yaml:"-"       json:"-"`
	initFlag bool
}

// Init 檢查設定並建立索引
func (ss *SymbolSetting) Init() error {
	// 檢查初始化旗標
	if ss.initFlag {
		return nil
	}
	if len(ss.Symbols) == 0 {
		return errs.NewFatal("symbols is empty")
	}
	ss.index = make(map[string]int, len(ss.Symbols))
	for i := range ss.Symbols {
		s := &ss.Symbols[i]
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" {
			return errs.Fatalf("symbol[%d] has empty id", i)
		}
		if _, dup := ss.index[s.ID]; dup {
			return errs.Fatalf("duplicate symbol id: %s", s.ID)
		}
		if s.Weight <= 0 {
			return errs.Fatalf("symbol %s weight must be positive, got %v", s.ID, s.Weight)
		}
		if s.Multiplier <= 0 {
			return errs.Fatalf("symbol %s multiplier must be positive, got %v", s.ID, s.Multiplier)
		}
		if s.Value < 0 {
			return errs.Fatalf("symbol %s value must not be negative, got %v", s.ID, s.Value)
		}
		ss.index[s.ID] = i
	}
	// set 初始化旗標
	ss.initFlag = true
	return nil
}

// Lookup 以 ID 查圖標定義。未初始化時退化為線性搜尋。
func (ss *SymbolSetting) Lookup(id string) (SymbolDef, bool) {
	if ss.index != nil {
		i, ok := ss.index[id]
		if !ok {
			return SymbolDef{}, false
		}
		return ss.Symbols[i], true
	}
	for _, s := range ss.Symbols {
		if s.ID == id {
			return s, true
		}
	}
	return SymbolDef{}, false
}

// Has 判斷圖標是否在詞彙表中
func (ss *SymbolSetting) Has(id string) bool {
	_, ok := ss.Lookup(id)
	return ok
}

// IDs 依設定順序回傳所有圖標 ID
func (ss *SymbolSetting) IDs() []string {
	ids := make([]string, len(ss.Symbols))
	for i, s := range ss.Symbols {
		ids[i] = s.ID
	}
	return ids
}

// Weights 依設定順序回傳抽樣權重
func (ss *SymbolSetting) Weights() []float64 {
	ws := make([]float64, len(ss.Symbols))
	for i, s := range ss.Symbols {
		ws[i] = s.Weight
	}
	return ws
}

// DefaultSymbols 回傳基礎水果機的七種圖標（已初始化）。
func DefaultSymbols() *SymbolSetting {
	ss := &SymbolSetting{Symbols: []SymbolDef{
		{ID: "lemon", Value: 10, Weight: 1.3, Multiplier: 1.0},
		{ID: "cherry", Value: 10, Weight: 1.3, Multiplier: 1.0},
		{ID: "clover", Value: 15, Weight: 1.0, Multiplier: 1.2},
		{ID: "bell", Value: 15, Weight: 1.0, Multiplier: 1.2},
		{ID: "diamond", Value: 25, Weight: 0.8, Multiplier: 1.5},
		{ID: "treasure", Value: 25, Weight: 0.8, Multiplier: 1.5},
		{ID: "seven", Value: 50, Weight: 0.5, Multiplier: 2.0},
	}}
	if err := ss.Init(); err != nil {
		panic(err)
	}
	return ss
}
