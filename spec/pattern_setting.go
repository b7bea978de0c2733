package spec

const (
	CatalogDynamic = "dynamic" // 依盤面尺寸動態生成
	CatalogLegacy  = "legacy"  // 固定 3x3 八條線
)

// PatternSetting pattern catalog 的生成參數。
//
// 倍率公式 baseMultiplier = typeBase(type) x Growth^(len-3)，
// 未填寫的欄位在 Init 時套用預設值。
type PatternSetting struct {
	Catalog       string  `yaml:"catalog"        json:"catalog"        validate:"omitempty,oneof=dynamic legacy"`
	Growth        float64 `yaml:"growth"         json:"growth"         validate:"gte=0"`
	LineBase      float64 `yaml:"line_base"      json:"line_base"      validate:"gte=0"`
	DiagonalBase  float64 `yaml:"diagonal_base"  json:"diagonal_base"  validate:"gte=0"`
	GeometricBase float64 `yaml:"geometric_base" json:"geometric_base" validate:"gte=0"`
	initFlag      bool
}

// DefaultPatternSetting 預設值：line 1.0、diagonal 1.2、geometric 1.5，每多一格 x1.2
func DefaultPatternSetting() PatternSetting {
	ps := PatternSetting{}
	_ = ps.Init()
	return ps
}

// Init 補上預設值
func (ps *PatternSetting) Init() error {
	if ps.initFlag {
		return nil
	}
	if ps.Catalog == "" {
		ps.Catalog = CatalogDynamic
	}
	if ps.Growth == 0 {
		ps.Growth = 1.2
	}
	if ps.LineBase == 0 {
		ps.LineBase = 1.0
	}
	if ps.DiagonalBase == 0 {
		ps.DiagonalBase = 1.2
	}
	if ps.GeometricBase == 0 {
		ps.GeometricBase = 1.5
	}
	ps.initFlag = true
	return nil
}
