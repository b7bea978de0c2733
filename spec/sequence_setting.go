package spec

import "github.com/zintix-labs/patternlab/errs"

// SequenceSetting 特殊序列（666 / 999）的判定條件。
//
// 盤面上 Symbol 的數量 >= Large 時判定為 999，否則 >= Small 時判定為 666。
type SequenceSetting struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Symbol  string `yaml:"symbol"  json:"symbol"`
	Small   int    `yaml:"small"   json:"small"   validate:"gte=0"`
	Large   int    `yaml:"large"   json:"large"   validate:"gte=0"`
}

// Init 補預設值並檢查門檻
func (ss *SequenceSetting) Init(symbols *SymbolSetting) error {
	if !ss.Enabled {
		return nil
	}
	if ss.Symbol == "" {
		ss.Symbol = "seven"
	}
	if ss.Small == 0 {
		ss.Small = 3
	}
	if ss.Large == 0 {
		ss.Large = 6
	}
	if ss.Large < ss.Small {
		return errs.Fatalf("sequence large threshold %d < small threshold %d", ss.Large, ss.Small)
	}
	if symbols != nil && !symbols.Has(ss.Symbol) {
		return errs.Fatalf("sequence symbol %s not in symbol table", ss.Symbol)
	}
	return nil
}
