package spec

// EffectSetting 效果描述（charm / 事件），於資料定義時就決定種類，不解析顯示文字。
//
// Kind: luck | symbols_multiplier | patterns_multiplier | grid_rows | grid_cols
// Condition: always | every_nth_spin | chance
type EffectSetting struct {
	Name      string  `yaml:"name"      json:"name"      validate:"required"`
	Kind      string  `yaml:"kind"      json:"kind"      validate:"required,oneof=luck symbols_multiplier patterns_multiplier grid_rows grid_cols"`
	Amount    float64 `yaml:"amount"    json:"amount"`
	Condition string  `yaml:"condition" json:"condition" validate:"omitempty,oneof=always every_nth_spin chance"`
	Every     int     `yaml:"every"     json:"every"     validate:"required_if=Condition every_nth_spin,gte=0"`
	Chance    float64 `yaml:"chance"    json:"chance"    validate:"gte=0,lte=1"`
}
