package usecase

import (
	"context"
	"fmt"

	"github.com/NasaVasa/oddswatch/internal/domain"
)

const (
	// WhaleVolumeSpikeRatio is the growth over the previous total volume that
	// counts as a spike.
	WhaleVolumeSpikeRatio = 1.2
	// WhaleOutcomeVolume stands in for "one large trade": trade-level data is
	// not available, so any outcome at or above this volume fires.
	WhaleOutcomeVolume = 10000.0
)

// EvaluateCondition compares one metric of the snapshot against the
// condition threshold. Unknown metrics read as 0 and unknown operators never
// match.
func EvaluateCondition(cond domain.Condition, snapshot domain.MarketSnapshot) bool {
	value := metricValue(cond.Metric, snapshot)
	switch cond.Operator {
	case domain.OperatorGreaterThan:
		return value > cond.Value
	case domain.OperatorLessThan:
		return value < cond.Value
	default:
		return false
	}
}

func metricValue(metric domain.Metric, snapshot domain.MarketSnapshot) float64 {
	switch metric {
	case domain.MetricVolume:
		return snapshot.TotalVolume
	case domain.MetricProbability, domain.MetricPrice:
		primary, ok := snapshot.Primary()
		if !ok {
			return 0
		}
		return primary.Price
	default:
		return 0
	}
}

func EvaluateRule(rule domain.Rule, snapshot domain.MarketSnapshot) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	switch rule.Combinator {
	case domain.CombinatorAnd:
		for _, cond := range rule.Conditions {
			if !EvaluateCondition(cond, snapshot) {
				return false
			}
		}
		return true
	case domain.CombinatorOr:
		for _, cond := range rule.Conditions {
			if EvaluateCondition(cond, snapshot) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Evaluator runs presets, which need per-alert history, and custom rules.
type Evaluator struct {
	state AlertStateStore
}

func NewEvaluator(state AlertStateStore) *Evaluator {
	return &Evaluator{state: state}
}

func (e *Evaluator) EvaluateAlert(ctx context.Context, alert domain.Alert, snapshot domain.MarketSnapshot) (bool, error) {
	switch payload := alert.Payload.(type) {
	case domain.PresetPayload:
		switch payload.Preset {
		case domain.PresetWhale:
			return e.EvaluateWhale(ctx, alert.ID, snapshot)
		case domain.PresetFlip:
			return e.EvaluateFlip(ctx, alert.ID, snapshot)
		default:
			return false, nil
		}
	case domain.CustomPayload:
		return EvaluateRule(payload.Rule, snapshot), nil
	default:
		return false, nil
	}
}

// EvaluateWhale fires on a volume spike against the last observation or on
// any outcome holding whale-sized volume. The first observation of an alert
// compares against itself and so never spikes.
func (e *Evaluator) EvaluateWhale(ctx context.Context, alertID string, snapshot domain.MarketSnapshot) (bool, error) {
	current := snapshot.TotalVolume
	previous, found, err := e.state.PreviousVolume(ctx, alertID)
	if err != nil {
		return false, fmt.Errorf("read previous volume: %w", err)
	}
	if !found {
		previous = current
	}
	if err := e.state.SetVolume(ctx, alertID, current); err != nil {
		return false, fmt.Errorf("store volume: %w", err)
	}

	if current > previous*WhaleVolumeSpikeRatio {
		return true, nil
	}
	for _, outcome := range snapshot.Outcomes {
		if outcome.Volume >= WhaleOutcomeVolume {
			return true, nil
		}
	}
	return false, nil
}

// EvaluateFlip fires when the favorite outcome differs from the last one
// recorded for this alert. Both sides must be known.
func (e *Evaluator) EvaluateFlip(ctx context.Context, alertID string, snapshot domain.MarketSnapshot) (bool, error) {
	current := snapshot.FavoriteOutcomeID
	previous, _, err := e.state.PreviousFavorite(ctx, alertID)
	if err != nil {
		return false, fmt.Errorf("read previous favorite: %w", err)
	}
	if err := e.state.SetFavorite(ctx, alertID, current); err != nil {
		return false, fmt.Errorf("store favorite: %w", err)
	}
	return current != "" && previous != "" && current != previous, nil
}
