// Package subgraph fetches pool swap history from a Uniswap v3 subgraph.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"uniswap-sim-lab/internal/domain"
)

const (
	// MaxPageSize is the subgraph's per-query row cap.
	MaxPageSize = 1000

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
)

// swapsQuery pages through swaps for a pool ordered by timestamp.
const swapsQuery = `
query PoolSwaps($pool: String!, $start: BigInt!, $end: BigInt!, $first: Int!, $skip: Int!) {
  swaps(
    where: { pool: $pool, timestamp_gte: $start, timestamp_lt: $end }
    orderBy: timestamp
    orderDirection: asc
    first: $first
    skip: $skip
  ) {
    timestamp
    amount0
    amount1
    amountUSD
  }
}
`

// Client queries a GraphQL subgraph endpoint over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries uint64
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	Logger     *zap.Logger
	HTTPClient *http.Client
	MaxRetries uint64
}

// NewClient creates a subgraph client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	return &Client{
		endpoint:   opts.Endpoint,
		httpClient: httpClient,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type swapRow struct {
	Timestamp string `json:"timestamp"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
	AmountUSD string `json:"amountUSD"`
}

type swapsResponse struct {
	Data struct {
		Swaps []swapRow `json:"swaps"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// GetHistoricalTrades fetches all swaps for a pool within [start, end),
// ordered by timestamp ASC. Pages of MaxPageSize are fetched until a
// short page signals the end.
func (c *Client) GetHistoricalTrades(ctx context.Context, poolID string, start, end time.Time) ([]*domain.HistoricalTrade, error) {
	var trades []*domain.HistoricalTrade

	skip := 0
	for {
		rows, err := c.fetchPage(ctx, poolID, start, end, skip)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			trade, err := rowToTrade(row)
			if err != nil {
				c.logger.Warn("skipping malformed swap row",
					zap.String("pool", poolID),
					zap.Error(err))
				continue
			}
			trades = append(trades, trade)
		}

		if len(rows) < MaxPageSize {
			break
		}
		skip += MaxPageSize
	}

	c.logger.Debug("fetched pool swaps",
		zap.String("pool", poolID),
		zap.Int("count", len(trades)),
		zap.Time("start", start),
		zap.Time("end", end))

	return trades, nil
}

// fetchPage executes one paged query with exponential backoff on transient failures.
func (c *Client) fetchPage(ctx context.Context, poolID string, start, end time.Time, skip int) ([]swapRow, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: swapsQuery,
		Variables: map[string]any{
			"pool":  poolID,
			"start": strconv.FormatInt(start.Unix(), 10),
			"end":   strconv.FormatInt(end.Unix(), 10),
			"first": MaxPageSize,
			"skip":  skip,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal swaps query: %w", err)
	}

	var rows []swapRow
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create subgraph request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("post to subgraph: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("subgraph returned status %d: %s", resp.StatusCode, respBody)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var decoded swapsResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("decode subgraph response: %w", err)
		}
		if len(decoded.Errors) > 0 {
			return backoff.Permanent(fmt.Errorf("subgraph error: %s", decoded.Errors[0].Message))
		}

		rows = decoded.Data.Swaps
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying subgraph query",
			zap.String("pool", poolID),
			zap.Int("skip", skip),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return rows, nil
}

// rowToTrade converts a subgraph swap row into a HistoricalTrade.
// Price is derived from the swap amounts; the side reflects whether
// token0 flowed into the pool.
func rowToTrade(row swapRow) (*domain.HistoricalTrade, error) {
	ts, err := domain.ParseTradeTimestamp(row.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", row.Timestamp, err)
	}

	amount0, err := strconv.ParseFloat(row.Amount0, 64)
	if err != nil {
		return nil, fmt.Errorf("parse amount0 %q: %w", row.Amount0, err)
	}
	amount1, err := strconv.ParseFloat(row.Amount1, 64)
	if err != nil {
		return nil, fmt.Errorf("parse amount1 %q: %w", row.Amount1, err)
	}
	if amount0 == 0 {
		return nil, fmt.Errorf("swap has zero amount0")
	}

	side := domain.TradeSideSell
	if amount0 < 0 {
		side = domain.TradeSideBuy
	}

	return &domain.HistoricalTrade{
		Timestamp: ts,
		Price:     math.Abs(amount1 / amount0),
		AmountUSD: row.AmountUSD,
		Side:      side,
	}, nil
}
