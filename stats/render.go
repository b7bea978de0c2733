package stats

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatReportRender 把報表寫到 w
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

// RenderFunc 讓一般函式滿足 StatReportRender
type RenderFunc func(w io.Writer, r *StatReport) error

func (f RenderFunc) Write(w io.Writer, r *StatReport) error { return f(w, r) }

var renders = map[string]StatReportRender{
	"json": RenderFunc(writeJSON),
	"yaml": RenderFunc(writeYAML),
	"yml":  RenderFunc(writeYAML),
}

// RenderOf 依名稱取得渲染器，未知名稱回傳 nil
func RenderOf(format string) StatReportRender {
	return renders[strings.ToLower(format)]
}

func writeJSON(w io.Writer, r *StatReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeYAML 最內層的 sequence 用 flow style（[a, b]），外層維度保持展開，
// 分布表與圖標矩陣才讀得下去。
func writeYAML(w io.Writer, r *StatReport) error {
	var doc yaml.Node
	if err := doc.Encode(r); err != nil {
		return err
	}
	flowLeaves(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// flowLeaves 回傳 n 是否為 sequence
func flowLeaves(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	nested := false
	for _, c := range n.Content {
		if flowLeaves(c) {
			nested = true
		}
	}
	if n.Kind != yaml.SequenceNode {
		return false
	}
	if !nested {
		n.Style = yaml.FlowStyle
	}
	return true
}
