package spec

import (
	"math"

	"github.com/zintix-labs/patternlab/errs"
)

// GID 遊戲編號
type GID uint

// GameSetting 包含啟動一個機台所需的所有高階設定。
//
// Grid 為基礎盤面尺寸，實際尺寸會再經過 effects 的 grid_rows / grid_cols 調整；
// SymbolsMultiplier / PatternsMultiplier 為 session 級倍率的起始值（0 視為 1）。
type GameSetting struct {
	GameName           string          `yaml:"game_name"           json:"game_name"           validate:"required"`
	GameID             GID             `yaml:"game_id"             json:"game_id"`
	Grid               GridSize        `yaml:"grid"                json:"grid"`
	Luck               float64         `yaml:"luck"                json:"luck"                validate:"gte=0"`
	SymbolsMultiplier  float64         `yaml:"symbols_multiplier"  json:"symbols_multiplier"  validate:"gte=0"`
	PatternsMultiplier float64         `yaml:"patterns_multiplier" json:"patterns_multiplier" validate:"gte=0"`
	SymbolSetting      SymbolSetting   `yaml:"symbol_setting"      json:"symbol_setting"`
	PatternSetting     PatternSetting  `yaml:"pattern_setting"     json:"pattern_setting"`
	SequenceSetting    SequenceSetting `yaml:"sequence_setting"    json:"sequence_setting"`
	Effects            []EffectSetting `yaml:"effects"             json:"effects"             validate:"dive"`
}

// init
func (gs *GameSetting) init() error {
	if err := ValidateStruct(gs); err != nil {
		return errs.WrapWithExtra(err, "game setting validate failed", gs.GameName)
	}
	if err := gs.Grid.Validate(); err != nil {
		return err
	}
	if err := gs.SymbolSetting.Init(); err != nil {
		return err
	}
	if err := gs.PatternSetting.Init(); err != nil {
		return err
	}
	if err := gs.SequenceSetting.Init(&gs.SymbolSetting); err != nil {
		return err
	}
	if gs.SymbolsMultiplier == 0 {
		gs.SymbolsMultiplier = 1
	}
	if gs.PatternsMultiplier == 0 {
		gs.PatternsMultiplier = 1
	}
	return gs.valid()
}

// valid 執行跨欄位的檢查，如需更多驗證可在此擴充。
func (gs *GameSetting) valid() error {
	// legacy catalog 只定義在 3x3
	if gs.PatternSetting.Catalog == CatalogLegacy {
		if gs.Grid != (GridSize{Rows: 3, Cols: 3}) {
			return errs.Fatalf("game_name: %s err: legacy catalog requires 3x3 grid, got %s", gs.GameName, gs.Grid)
		}
		for _, e := range gs.Effects {
			if e.Kind == "grid_rows" || e.Kind == "grid_cols" {
				return errs.Fatalf("game_name: %s err: legacy catalog can not resize grid (effect %s)", gs.GameName, e.Name)
			}
		}
	}
	seen := make(map[string]struct{}, len(gs.Effects))
	for _, e := range gs.Effects {
		if (e.Kind == "grid_rows" || e.Kind == "grid_cols") && !(math.Abs(e.Amount) <= MaxGridDim) {
			return errs.Fatalf("game_name: %s err: effect %s grid delta must be within ±%d, got %v", gs.GameName, e.Name, MaxGridDim, e.Amount)
		}
		if _, dup := seen[e.Name]; dup {
			return errs.Fatalf("game_name: %s err: duplicate effect name %s", gs.GameName, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}
