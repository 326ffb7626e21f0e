package domain

import (
	"errors"
	"sort"
)

var (
	ErrMarketNotFound  = errors.New("market not found")
	ErrMalformedMarket = errors.New("malformed market payload")
)

// MaxSnapshotOutcomes is how many outcomes a snapshot retains.
const MaxSnapshotOutcomes = 2

type Outcome struct {
	ID     string
	Label  string
	Price  float64
	Volume float64
}

type MarketSnapshot struct {
	MarketID          string
	Title             string
	TotalVolume       float64
	Outcomes          []Outcome
	FavoriteOutcomeID string
}

// NewMarketSnapshot keeps the top outcomes by volume (ties broken by higher
// price) and picks the favorite as the highest-priced retained outcome.
func NewMarketSnapshot(marketID, title string, totalVolume float64, outcomes []Outcome) MarketSnapshot {
	sorted := make([]Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Volume != sorted[j].Volume {
			return sorted[i].Volume > sorted[j].Volume
		}
		return sorted[i].Price > sorted[j].Price
	})
	if len(sorted) > MaxSnapshotOutcomes {
		sorted = sorted[:MaxSnapshotOutcomes]
	}

	snapshot := MarketSnapshot{
		MarketID:    marketID,
		Title:       title,
		TotalVolume: totalVolume,
		Outcomes:    sorted,
	}
	if len(sorted) > 0 {
		favorite := sorted[0]
		for _, outcome := range sorted[1:] {
			if outcome.Price > favorite.Price {
				favorite = outcome
			}
		}
		snapshot.FavoriteOutcomeID = favorite.ID
	}
	return snapshot
}

// Primary returns the first retained outcome.
func (s MarketSnapshot) Primary() (Outcome, bool) {
	if len(s.Outcomes) == 0 {
		return Outcome{}, false
	}
	return s.Outcomes[0], true
}
