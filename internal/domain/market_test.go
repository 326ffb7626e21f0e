package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMarketSnapshot_KeepsTopTwoByVolume(t *testing.T) {
	snapshot := NewMarketSnapshot("election", "Who wins?", 900, []Outcome{
		{ID: "c", Label: "C", Price: 0.05, Volume: 100},
		{ID: "a", Label: "A", Price: 0.30, Volume: 500},
		{ID: "b", Label: "B", Price: 0.60, Volume: 300},
	})

	if assert.Len(t, snapshot.Outcomes, 2) {
		assert.Equal(t, "a", snapshot.Outcomes[0].ID)
		assert.Equal(t, "b", snapshot.Outcomes[1].ID)
	}
	assert.Equal(t, "b", snapshot.FavoriteOutcomeID)

	primary, ok := snapshot.Primary()
	assert.True(t, ok)
	assert.Equal(t, "a", primary.ID)
}

func TestNewMarketSnapshot_VolumeTieBrokenByPrice(t *testing.T) {
	snapshot := NewMarketSnapshot("m", "t", 200, []Outcome{
		{ID: "no", Price: 0.40, Volume: 100},
		{ID: "yes", Price: 0.60, Volume: 100},
	})
	assert.Equal(t, "yes", snapshot.Outcomes[0].ID)
	assert.Equal(t, "yes", snapshot.FavoriteOutcomeID)
}

func TestNewMarketSnapshot_PriceTieKeepsFirst(t *testing.T) {
	snapshot := NewMarketSnapshot("m", "t", 200, []Outcome{
		{ID: "low-volume", Price: 0.50, Volume: 10},
		{ID: "high-volume", Price: 0.50, Volume: 90},
	})
	assert.Equal(t, "high-volume", snapshot.FavoriteOutcomeID)
}

func TestNewMarketSnapshot_NoOutcomes(t *testing.T) {
	snapshot := NewMarketSnapshot("m", "t", 0, nil)
	assert.Empty(t, snapshot.Outcomes)
	assert.Empty(t, snapshot.FavoriteOutcomeID)
	_, ok := snapshot.Primary()
	assert.False(t, ok)
}

func TestNewMarketSnapshot_DoesNotMutateInput(t *testing.T) {
	input := []Outcome{{ID: "x", Volume: 1}, {ID: "y", Volume: 2}}
	NewMarketSnapshot("m", "t", 3, input)
	assert.Equal(t, "x", input[0].ID)
}
