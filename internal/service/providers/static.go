package providers

import (
	"context"
	"encoding/json"
)

// Bonds and alternative funds have no real-time upstream wired yet, so
// they serve placeholder payloads at the class's (long) cadence.

// BondQuote is the placeholder bond payload.
type BondQuote struct {
	Symbol   string        `json:"symbol"`
	Name     string        `json:"name"`
	Price    float64       `json:"price"`
	Yield    float64       `json:"yield"`
	Metadata QuoteMetadata `json:"metadata"`
}

func (s *Service) fetchBond(_ context.Context, symbol string) (json.RawMessage, error) {
	return json.Marshal(BondQuote{
		Symbol:   symbol,
		Name:     "Bond " + symbol,
		Price:    100.0,
		Yield:    2.5,
		Metadata: QuoteMetadata{Source: "static"},
	})
}

// FundQuote is the placeholder alternative-fund payload.
type FundQuote struct {
	Symbol   string        `json:"symbol"`
	Name     string        `json:"name"`
	Price    float64       `json:"price"`
	Metadata QuoteMetadata `json:"metadata"`
}

func (s *Service) fetchATF(_ context.Context, symbol string) (json.RawMessage, error) {
	return json.Marshal(FundQuote{
		Symbol:   symbol,
		Name:     "ATF " + symbol,
		Price:    100.0,
		Metadata: QuoteMetadata{Source: "static"},
	})
}
