package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxEventBytes caps how much of an event response is read.
const maxEventBytes = 8 << 20

// GammaClient reads event snapshots from the Polymarket gamma API. An alert's
// market id is the event slug.
type GammaClient struct {
	baseURL      string
	client       *http.Client
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewGammaClient(baseURL string, timeout time.Duration, logger *zap.Logger) *GammaClient {
	return &GammaClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: timeout},
		maxBodyBytes: maxEventBytes,
		logger:       logger,
	}
}

func (c *GammaClient) GetMarketData(ctx context.Context, marketID string) (*domain.MarketSnapshot, error) {
	endpoint := fmt.Sprintf("%s/events/slug/%s", c.baseURL, url.PathEscape(marketID))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Debug("gamma request start", zap.String("market_id", marketID), zap.String("url", endpoint))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("gamma request failed", zap.String("market_id", marketID), zap.Error(err))
		return nil, fmt.Errorf("gamma request: %w", err)
	}
	defer response.Body.Close()

	c.logger.Debug(
		"gamma request complete",
		zap.String("market_id", marketID),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return nil, domain.ErrMarketNotFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("gamma error: status %d", response.StatusCode)
	}

	var payload gammaEventResponse
	if err := json.NewDecoder(io.LimitReader(response.Body, c.maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMarket, err)
	}
	return normalizeEvent(marketID, payload)
}

func normalizeEvent(marketID string, event gammaEventResponse) (*domain.MarketSnapshot, error) {
	if len(event.Markets) == 0 {
		return nil, fmt.Errorf("%w: event %q has no markets", domain.ErrMalformedMarket, marketID)
	}

	var outcomes []domain.Outcome
	if len(event.Markets) == 1 {
		outcomes = tokenOutcomes(event.Markets[0])
	} else {
		outcomes = marketOutcomes(openMarkets(event.Markets))
	}

	total := event.Volume.Decimal
	if !event.Volume.Valid {
		total = decimal.Zero
		for _, market := range event.Markets {
			if market.Volume.Valid {
				total = total.Add(market.Volume.Decimal)
			}
		}
	}

	title := event.Title
	if title == "" {
		title = event.Markets[0].Question
	}

	snapshot := domain.NewMarketSnapshot(marketID, title, total.InexactFloat64(), outcomes)
	return &snapshot, nil
}

// openMarkets drops resolved candidates of a multi-market event. A fully
// resolved event keeps all of its markets.
func openMarkets(markets []gammaMarket) []gammaMarket {
	open := make([]gammaMarket, 0, len(markets))
	for _, market := range markets {
		if !market.Closed {
			open = append(open, market)
		}
	}
	if len(open) == 0 {
		return markets
	}
	return open
}

// marketOutcomes treats each market of a multi-market event as one outcome
// priced by its first (Yes) token.
func marketOutcomes(markets []gammaMarket) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(markets))
	for _, market := range markets {
		label := market.GroupItemTitle
		if label == "" {
			label = market.Question
		}
		id := market.ID
		if id == "" {
			id = market.Slug
		}
		outcomes = append(outcomes, domain.Outcome{
			ID:     id,
			Label:  label,
			Price:  parsePrice(market.OutcomePrices, 0),
			Volume: market.Volume.Float64(),
		})
	}
	return outcomes
}

// tokenOutcomes splits a single market into its outcome tokens. Gamma does
// not report per-token volume, so each token carries the market volume.
func tokenOutcomes(market gammaMarket) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(market.Outcomes))
	for i, label := range market.Outcomes {
		id := label
		if i < len(market.ClobTokenIDs) && market.ClobTokenIDs[i] != "" {
			id = market.ClobTokenIDs[i]
		}
		outcomes = append(outcomes, domain.Outcome{
			ID:     id,
			Label:  label,
			Price:  parsePrice(market.OutcomePrices, i),
			Volume: market.Volume.Float64(),
		})
	}
	return outcomes
}

func parsePrice(prices StringList, index int) float64 {
	if index >= len(prices) {
		return 0
	}
	price, err := decimal.NewFromString(strings.TrimSpace(prices[index]))
	if err != nil {
		return 0
	}
	return price.InexactFloat64()
}
