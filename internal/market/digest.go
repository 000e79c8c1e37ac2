package market

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/arzlive/arzlive/internal/model"
)

// Digest renders the plain-text market context for the AI summary service:
// one "<fa> (<en>): <price> Toman, Change: <pct>%" line per asset.
func Digest(assets []model.Asset) string {
	lines := make([]string, 0, len(assets))
	for _, a := range assets {
		lines = append(lines, fmt.Sprintf("%s (%s): %s Toman, Change: %s%%",
			a.NameFa, a.NameEn, formatFloat(a.Price), formatFloat(a.ChangePercent)))
	}
	return strings.Join(lines, "\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Trend is the market sentiment of an analysis.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// Valid reports whether t is a known trend.
func (t Trend) Valid() bool {
	switch t {
	case TrendBullish, TrendBearish, TrendNeutral:
		return true
	}
	return false
}

// Analysis is the structured answer of the AI summary service.
type Analysis struct {
	Summary string `json:"summary"`
	Trend   Trend  `json:"trend"`
	Advice  string `json:"advice"`
}

// FallbackAnalysis is shown when the summary service fails.
func FallbackAnalysis() Analysis {
	return Analysis{
		Summary: "خطا در دریافت تحلیل هوشمند. لطفاً دقایقی دیگر تلاش کنید.",
		Trend:   TrendNeutral,
		Advice:  "در شرایط فعلی بازار محتاط باشید.",
	}
}

// ParseAnalysis decodes a summary service answer. On malformed input it
// returns the fallback analysis together with the error.
func ParseAnalysis(data []byte) (Analysis, error) {
	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return FallbackAnalysis(), fmt.Errorf("decode analysis: %w", err)
	}
	if !a.Trend.Valid() {
		return FallbackAnalysis(), fmt.Errorf("decode analysis: unknown trend %q", a.Trend)
	}
	if a.Summary == "" {
		return FallbackAnalysis(), fmt.Errorf("decode analysis: empty summary")
	}
	return a, nil
}
