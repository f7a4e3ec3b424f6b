// Package sampling bounds the per-run trade count for long historical
// windows while keeping the most economically significant trade per
// interval.
package sampling

import (
	"time"

	"uniswap-sim-lab/internal/domain"
)

// Sampling constants.
const (
	// DefaultIntervalMinutes is the bucket width used when a run request
	// does not specify one.
	DefaultIntervalMinutes = 5

	// PassthroughWindowMinutes is the window length at or below which
	// trades are returned unchanged.
	PassthroughWindowMinutes = 60
)

// SampleTrades partitions [start, end) into consecutive buckets of
// intervalMinutes and keeps, per non-empty bucket, the trade with the
// largest amountUSD (ties broken by first occurrence). Windows of at most
// an hour are returned as-is. Bucket order follows bucket start times, so
// the output stays chronological for chronological input.
func SampleTrades(trades []*domain.HistoricalTrade, start, end time.Time, intervalMinutes int) []*domain.HistoricalTrade {
	if end.Sub(start) <= PassthroughWindowMinutes*time.Minute {
		return trades
	}
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}

	interval := time.Duration(intervalMinutes) * time.Minute
	bucketCount := int((end.Sub(start) + interval - 1) / interval)

	best := make([]*domain.HistoricalTrade, bucketCount)
	for _, trade := range trades {
		if trade == nil || trade.Timestamp.Before(start) || !trade.Timestamp.Before(end) {
			continue
		}
		idx := int(trade.Timestamp.Sub(start) / interval)
		current := best[idx]
		if current == nil {
			best[idx] = trade
			continue
		}
		// Strictly-greater keeps the first occurrence on ties
		if trade.AmountUSDDecimal().GreaterThan(current.AmountUSDDecimal()) {
			best[idx] = trade
		}
	}

	sampled := make([]*domain.HistoricalTrade, 0, bucketCount)
	for _, trade := range best {
		if trade != nil {
			sampled = append(sampled, trade)
		}
	}
	return sampled
}

// BucketCount reports how many sampling buckets a window produces, which is
// also the upper bound on the sampled trade count.
func BucketCount(start, end time.Time, intervalMinutes int) int {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	interval := time.Duration(intervalMinutes) * time.Minute
	span := end.Sub(start)
	if span <= 0 {
		return 0
	}
	return int((span + interval - 1) / interval)
}
