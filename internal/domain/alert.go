package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidAlert = errors.New("invalid alert")

type AlertKind string

const (
	AlertKindPreset AlertKind = "preset"
	AlertKindCustom AlertKind = "custom"
)

type Preset string

const (
	PresetWhale Preset = "whale"
	PresetFlip  Preset = "flip"
)

func (p Preset) Valid() bool {
	return p == PresetWhale || p == PresetFlip
}

type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

type Metric string

const (
	MetricVolume      Metric = "volume"
	MetricProbability Metric = "probability"
	MetricPrice       Metric = "price"
)

type Operator string

const (
	OperatorGreaterThan Operator = "gt"
	OperatorLessThan    Operator = "lt"
)

type Condition struct {
	Metric   Metric   `json:"metric"`
	Operator Operator `json:"operator"`
	Value    float64  `json:"value"`
}

type Rule struct {
	Combinator Combinator  `json:"combinator"`
	Conditions []Condition `json:"conditions"`
}

// Validate reports whether the rule can be stored. The evaluator tolerates
// anything Validate rejects, so rows written by older clients still load.
func (r Rule) Validate() error {
	if r.Combinator != CombinatorAnd && r.Combinator != CombinatorOr {
		return fmt.Errorf("%w: unknown combinator %q", ErrInvalidAlert, r.Combinator)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("%w: rule has no conditions", ErrInvalidAlert)
	}
	for i, cond := range r.Conditions {
		switch cond.Metric {
		case MetricVolume, MetricProbability, MetricPrice:
		default:
			return fmt.Errorf("%w: condition %d: unknown metric %q", ErrInvalidAlert, i, cond.Metric)
		}
		if cond.Operator != OperatorGreaterThan && cond.Operator != OperatorLessThan {
			return fmt.Errorf("%w: condition %d: unknown operator %q", ErrInvalidAlert, i, cond.Operator)
		}
	}
	return nil
}

// AlertPayload is the kind-specific part of an alert. PresetPayload and
// CustomPayload are the only implementations.
type AlertPayload interface {
	Kind() AlertKind
}

type PresetPayload struct {
	Preset Preset
}

func (PresetPayload) Kind() AlertKind { return AlertKindPreset }

type CustomPayload struct {
	Rule Rule
}

func (CustomPayload) Kind() AlertKind { return AlertKindCustom }

type Alert struct {
	ID              string
	UserID          string
	MarketID        string
	Payload         AlertPayload
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
}

// Kind returns the payload kind, or "" when the payload is missing.
func (a Alert) Kind() AlertKind {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.Kind()
}

func NewPresetAlert(userID, marketID string, preset Preset) (Alert, error) {
	if err := validateOwner(userID, marketID); err != nil {
		return Alert{}, err
	}
	if !preset.Valid() {
		return Alert{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidAlert, preset)
	}
	return Alert{UserID: userID, MarketID: marketID, Payload: PresetPayload{Preset: preset}}, nil
}

func NewCustomAlert(userID, marketID string, rule Rule) (Alert, error) {
	if err := validateOwner(userID, marketID); err != nil {
		return Alert{}, err
	}
	if err := rule.Validate(); err != nil {
		return Alert{}, err
	}
	return Alert{UserID: userID, MarketID: marketID, Payload: CustomPayload{Rule: rule}}, nil
}

func validateOwner(userID, marketID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user", ErrInvalidAlert)
	}
	if marketID == "" {
		return fmt.Errorf("%w: missing market", ErrInvalidAlert)
	}
	return nil
}
