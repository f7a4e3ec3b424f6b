package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide is the direction of an observed pool trade.
type TradeSide string

// Trade side constants.
const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// HistoricalTrade is one observed market trade for a pool.
// AmountUSD stays a decimal string as delivered by the subgraph; use
// AmountUSDDecimal/AmountUSDValue for arithmetic.
type HistoricalTrade struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	AmountUSD string    `json:"amountUSD"`
	Side      TradeSide `json:"side"`
}

// AmountUSDDecimal parses AmountUSD exactly. Returns zero on malformed input.
func (t *HistoricalTrade) AmountUSDDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(t.AmountUSD)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// AmountUSDValue returns AmountUSD as a float64, 0 on malformed input.
func (t *HistoricalTrade) AmountUSDValue() float64 {
	v, _ := t.AmountUSDDecimal().Float64()
	return v
}

// ParseTradeTimestamp accepts either an RFC 3339 timestamp or a Unix-seconds
// string, the two encodings subgraph responses use.
func ParseTradeTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse trade timestamp %q: %w", s, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}
