package reporting

import (
	"fmt"
	"strings"
	"time"

	"uniswap-sim-lab/internal/domain"
)

// RenderTradesCSV renders a run's trades as a CSV string.
func RenderTradesCSV(trades []*domain.SimulationTrade) string {
	var sb strings.Builder

	sb.WriteString("timestamp,type,price,amount,confidence,profit,reasoning\n")

	for _, t := range trades {
		profit := ""
		if t.Profit != nil {
			profit = fmt.Sprintf("%.6f", *t.Profit)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.4f,%.2f,%s,%s\n",
			t.Timestamp.Format(time.RFC3339),
			t.Type,
			t.Price,
			t.Amount,
			t.Confidence,
			profit,
			escapeCSV(t.Reasoning),
		))
	}

	return sb.String()
}

// escapeCSV quotes a field containing commas or quotes.
func escapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
