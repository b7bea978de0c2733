// Package demo_configs 內建的示範遊戲設定。
package demo_configs

import (
	"embed"
)

// FS 內嵌的設定檔（平坦目錄，只有 YAML）
//
//go:embed *.yaml
var FS embed.FS
