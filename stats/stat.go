package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/patternlab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 模擬統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Types   *TypeReport    `json:"Types"`
	Dist    *DistReport    `json:"Dist"`
	Events  *EventReport   `json:"Events"`
	isDone  bool
}

type SummaryReport struct {
	GameName    string   `json:"GameName"`
	GameId      spec.GID `json:"GameId"`
	Grid        string   `json:"Grid"`
	Rounds      int      `json:"Rounds"`
	TotalPayout float64  `json:"TotalPayout"`
	PayoutSqSum float64  `json:"PayoutSqSum"` // 平方和
	MaxPayout   float64  `json:"MaxPayout"`
	MeanPayout  float64  `json:"MeanPayout"`
	MeanCI      CI       `json:"MeanCI"`
	Std         float64  `json:"Std"`
	Cv          float64  `json:"Cv"`
	Hits        int      `json:"Hits"`
	NoHitRounds int      `json:"NoHitRounds"`
	HitRate     float64  `json:"HitRate"`
	HitRateCI   CI       `json:"HitRateCI"`
}

// TypeReport 依 pattern 類型的計分統計，所有切片都以類型順序排列
type TypeReport struct {
	Types       []string  `json:"Types"`
	Wins        []int     `json:"Wins"`
	Payout      []float64 `json:"Payout"`
	WinsPerSpin []float64 `json:"WinsPerSpin"`
	PayoutShare []float64 `json:"PayoutShare"`
}

// DistReport 單局派彩區間落點統計
type DistReport struct {
	PayoutBucket []string  `json:"PayoutBucket"`
	Collect      []int     `json:"Collect"`
	Dist         []float64 `json:"Dist"`
}

// EventReport luck 強制、特殊序列與盤面尺寸的統計
type EventReport struct {
	Forced          int            `json:"Forced"`
	ForcedRate      float64        `json:"ForcedRate"`
	ForcedCells     int            `json:"ForcedCells"`
	RawMatches      int            `json:"RawMatches"`
	ResolvedMatches int            `json:"ResolvedMatches"`
	Sequence666     int            `json:"Sequence666"`
	Sequence999     int            `json:"Sequence999"`
	Sizes           map[string]int `json:"Sizes"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 紀錄時只累積加總與計數，統計完成後由 Done 一次性計算平均、標準差與信賴區間。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	// Summary
	s.Summary.MeanPayout = s.Mean()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	s.Summary.MeanCI = s.Ci()
	s.Summary.NoHitRounds = s.Summary.Rounds - s.Summary.Hits
	s.Summary.HitRate, s.Summary.HitRateCI = ProportionCI(s.Summary.Hits, s.Summary.Rounds, Confidence)

	rf := float64(s.Summary.Rounds)

	// Types
	if t := s.Types; t != nil {
		t.WinsPerSpin = make([]float64, len(t.Wins))
		t.PayoutShare = make([]float64, len(t.Payout))
		sum := 0.0
		for _, p := range t.Payout {
			sum += p
		}
		for i := range t.Wins {
			if rf > 0 {
				t.WinsPerSpin[i] = float64(t.Wins[i]) / rf
			}
			if sum > 0 {
				t.PayoutShare[i] = t.Payout[i] / sum
			}
		}
	}

	// Dist
	if d := s.Dist; d != nil {
		d.Dist = make([]float64, len(d.Collect))
		if rf > 0 {
			for i, c := range d.Collect {
				d.Dist[i] = float64(c) / rf
			}
		}
	}

	// Events
	if e := s.Events; e != nil && rf > 0 {
		e.ForcedRate = float64(e.Forced) / rf
	}

	s.isDone = true
}

// Mean 回傳單局平均派彩
func (s *StatReport) Mean() float64 {
	if s.Summary.Rounds == 0 {
		return 0
	}
	return s.Summary.TotalPayout / float64(s.Summary.Rounds)
}

// Std 回傳單局派彩的樣本標準差
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)
	total := s.Summary.TotalPayout
	variance := (s.Summary.PayoutSqSum - total*total/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局派彩的變異係數
func (s *StatReport) Cv() float64 {
	mean := s.Mean()
	if mean <= 0 {
		return 0
	}
	return s.Std() / mean
}

// Ci 回傳平均派彩的 95% 信賴區間
func (s *StatReport) Ci() CI {
	return MeanCI(s.Mean(), s.Std(), s.Summary.Rounds, Confidence)
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 以表格輸出到終端機
func (s *StatReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	fmt.Println(fmtTable(s.Summary.GameName, sk, sm))
	if s.Types != nil {
		tk, tm := s.fmtTypes()
		fmt.Println(fmtTable("Pattern Types", tk, tm))
	}
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, spins int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Game Name":    p.Sprintf("%s", s.Summary.GameName),
		"Game ID":      fmt.Sprintf("%d", s.Summary.GameId),
		"Grid":         s.Summary.Grid,
		"Total Rounds": p.Sprintf("%d", s.Summary.Rounds),
		"Total Payout": p.Sprintf("%.2f", s.Summary.TotalPayout),
		"Mean Payout":  p.Sprintf("%.4f", s.Summary.MeanPayout),
		"Mean 95% CI":  p.Sprintf("[%.4f,%.4f]", s.Summary.MeanCI.Lo, s.Summary.MeanCI.Hi),
		"Max Payout":   p.Sprintf("%.2f", s.Summary.MaxPayout),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"Hit 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.HitRateCI.Lo, 100.0*s.Summary.HitRateCI.Hi),
		"NoHit Rounds": p.Sprintf("%d", s.Summary.NoHitRounds),
		"STD":          p.Sprintf("%.3f", s.Summary.Std),
		"CV":           p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Game Name", "Game ID", "Grid", "Total Rounds", "Total Payout", "Mean Payout", "Mean 95% CI", "Max Payout", "Hit Rate", "Hit 95% CI", "NoHit Rounds", "STD", "CV"}
	if e := s.Events; e != nil {
		basic["Forced"] = p.Sprintf("%d (%.2f %%)", e.Forced, 100.0*e.ForcedRate)
		basic["Sequence 666"] = p.Sprintf("%d", e.Sequence666)
		basic["Sequence 999"] = p.Sprintf("%d", e.Sequence999)
		keys = append(keys, "Forced", "Sequence 666", "Sequence 999")
	}
	return keys, basic
}

func (s *StatReport) fmtTypes() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	t := s.Types
	keys := make([]string, 0, len(t.Types))
	msg := make(map[string]string, len(t.Types))
	for i, name := range t.Types {
		keys = append(keys, name)
		msg[name] = p.Sprintf("%d wins / %.2f payout (%.1f %%)", t.Wins[i], t.Payout[i], 100.0*t.PayoutShare[i])
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	// 標題比內容寬時撐開值欄
	if tw := runewidth.StringWidth(title); tw > maxKeyLen+maxValLen+1 {
		maxValLen = tw - maxKeyLen - 1
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
