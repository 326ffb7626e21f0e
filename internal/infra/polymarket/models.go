package polymarket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type gammaEventResponse struct {
	ID      string          `json:"id"`
	Slug    string          `json:"slug"`
	Title   string          `json:"title"`
	Volume  NullableDecimal `json:"volume"`
	Markets []gammaMarket   `json:"markets"`
}

type gammaMarket struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Question       string          `json:"question"`
	GroupItemTitle string          `json:"groupItemTitle"`
	Outcomes       StringList      `json:"outcomes"`
	OutcomePrices  StringList      `json:"outcomePrices"`
	ClobTokenIDs   StringList      `json:"clobTokenIds"`
	Volume         NullableDecimal `json:"volume"`
	Closed         bool            `json:"closed"`
}

// NullableDecimal accepts a JSON number, a quoted number or null.
type NullableDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

// Float64 returns 0 for a missing value.
func (n NullableDecimal) Float64() float64 {
	if !n.Valid {
		return 0
	}
	return n.Decimal.InexactFloat64()
}

// StringList accepts either a JSON array or a string holding a JSON array,
// which is how the gamma API encodes outcomes and prices.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		*s = nil
		return nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			*s = nil
			return nil
		}
		var values []string
		if err := json.Unmarshal([]byte(inner), &values); err == nil {
			*s = values
			return nil
		}
		*s = []string{inner}
		return nil
	}

	if trimmed[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}

	return fmt.Errorf("unexpected string list format: %s", trimmed)
}

func (n *NullableDecimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
	if trimmed == "" {
		n.Valid = false
		return nil
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		n.Valid = false
		return err
	}
	n.Decimal = dec
	n.Valid = true
	return nil
}
