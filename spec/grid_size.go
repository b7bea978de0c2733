package spec

import (
	"fmt"

	"github.com/zintix-labs/patternlab/errs"
)

// MaxGridDim 盤面單邊上限。catalog 大小約隨邊長三次方成長，
// 設定檔、效果增量與 API 查詢都受此限制。
const MaxGridDim = 24

// ErrInvalidGridSize 盤面尺寸不合法（rows 或 cols 小於 1 或大於 MaxGridDim），屬於設定錯誤。
var ErrInvalidGridSize = errs.NewFatal("invalid grid size")

// GridSize 盤面尺寸。
//
// 值型別且可比較，可直接作為 map / LRU 的 key；
// 一份 pattern catalog 只對應一個 GridSize。
type GridSize struct {
	Rows int `yaml:"rows" json:"rows" validate:"gte=1,lte=24"`
	Cols int `yaml:"cols" json:"cols" validate:"gte=1,lte=24"`
}

// Validate 檢查尺寸，不做任何修正。
func (g GridSize) Validate() error {
	if g.Rows < 1 || g.Cols < 1 || g.MaxDim() > MaxGridDim {
		return ErrInvalidGridSize.Withf("rows=%d cols=%d", g.Rows, g.Cols)
	}
	return nil
}

// Cells 格子總數
func (g GridSize) Cells() int {
	return g.Rows * g.Cols
}

// Contains 判斷 (r,c) 是否落在 [0,rows) x [0,cols)
func (g GridSize) Contains(r, c int) bool {
	return r >= 0 && r < g.Rows && c >= 0 && c < g.Cols
}

func (g GridSize) MinDim() int {
	return min(g.Rows, g.Cols)
}

func (g GridSize) MaxDim() int {
	return max(g.Rows, g.Cols)
}

// Resize 依增量調整尺寸，任一維度夾在 [1, MaxGridDim]。
func (g GridSize) Resize(dRows, dCols int) GridSize {
	return GridSize{Rows: clampDim(g.Rows + dRows), Cols: clampDim(g.Cols + dCols)}
}

func clampDim(n int) int {
	return min(max(n, 1), MaxGridDim)
}

func (g GridSize) String() string {
	return fmt.Sprintf("%dx%d", g.Rows, g.Cols)
}
