package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apphttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
	applogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// avQuoteResponse is the GLOBAL_QUOTE envelope.
type avQuoteResponse struct {
	ErrorMessage string            `json:"Error Message"`
	Note         string            `json:"Note"`
	GlobalQuote  map[string]string `json:"Global Quote"`
}

// avExchangeResponse is the CURRENCY_EXCHANGE_RATE envelope.
type avExchangeResponse struct {
	ErrorMessage string            `json:"Error Message"`
	Note         string            `json:"Note"`
	ExchangeRate map[string]string `json:"Realtime Currency Exchange Rate"`
}

// Quote is the normalized equity-style payload published to subscribers.
// Stocks, indices, ETFs and REITs all flow through GLOBAL_QUOTE.
type Quote struct {
	Symbol        string        `json:"symbol"`
	Name          string        `json:"name"`
	Price         float64       `json:"price"`
	PreviousClose float64       `json:"previous_close"`
	DayHigh       float64       `json:"day_high"`
	DayLow        float64       `json:"day_low"`
	Volume        float64       `json:"volume"`
	Change        float64       `json:"change"`
	ChangePercent string        `json:"change_percent"`
	Metadata      QuoteMetadata `json:"metadata"`
}

// QuoteMetadata records provenance for a quote payload.
type QuoteMetadata struct {
	Source        string `json:"source"`
	LastRefreshed string `json:"last_refreshed,omitempty"`
	FromCurrency  string `json:"from_currency,omitempty"`
	ToCurrency    string `json:"to_currency,omitempty"`
}

func (s *Service) fetchQuote(ctx context.Context, symbol string) (json.RawMessage, error) {
	if s.cfg.AlphaVantageKey == "" {
		return nil, fmt.Errorf("alpha vantage api key not configured")
	}

	var resp avQuoteResponse
	err := s.http.SendAndParse(ctx, &apphttp.RequestOptions{
		URL: s.cfg.AlphaVantageURL,
		QueryParams: map[string][]string{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
			"apikey":   {s.cfg.AlphaVantageKey},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage: %s", resp.ErrorMessage)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("alpha vantage rate limited: %s", resp.Note)
	}
	if len(resp.GlobalQuote) == 0 {
		return nil, fmt.Errorf("alpha vantage: no data for %s", symbol)
	}

	q := resp.GlobalQuote
	quote := Quote{
		Symbol:        symbol,
		Name:          symbol,
		Price:         avFloat(q["05. price"]),
		PreviousClose: avFloat(q["08. previous close"]),
		DayHigh:       avFloat(q["03. high"]),
		DayLow:        avFloat(q["04. low"]),
		Volume:        avFloat(q["06. volume"]),
		Change:        avFloat(q["09. change"]),
		ChangePercent: strings.TrimSuffix(q["10. change percent"], "%"),
		Metadata: QuoteMetadata{
			Source:        "alpha_vantage",
			LastRefreshed: q["07. latest trading day"],
		},
	}
	return json.Marshal(quote)
}

// ForexQuote is the normalized exchange-rate payload.
type ForexQuote struct {
	Symbol        string        `json:"symbol"`
	Name          string        `json:"name"`
	Price         float64       `json:"price"`
	ChangePercent float64       `json:"change_percent"`
	Metadata      QuoteMetadata `json:"metadata"`
}

func (s *Service) fetchForex(ctx context.Context, symbol string) (json.RawMessage, error) {
	if s.cfg.AlphaVantageKey == "" {
		return nil, fmt.Errorf("alpha vantage api key not configured")
	}

	from, to, ok := strings.Cut(symbol, "/")
	if !ok || from == "" || to == "" {
		return nil, fmt.Errorf("forex symbol must be FROM/TO, got %q", symbol)
	}

	var resp avExchangeResponse
	err := s.http.SendAndParse(ctx, &apphttp.RequestOptions{
		URL: s.cfg.AlphaVantageURL,
		QueryParams: map[string][]string{
			"function":      {"CURRENCY_EXCHANGE_RATE"},
			"from_currency": {from},
			"to_currency":   {to},
			"apikey":        {s.cfg.AlphaVantageKey},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage: %s", resp.ErrorMessage)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("alpha vantage rate limited: %s", resp.Note)
	}
	if len(resp.ExchangeRate) == 0 {
		return nil, fmt.Errorf("alpha vantage: no exchange rate for %s", symbol)
	}

	rate := resp.ExchangeRate
	quote := ForexQuote{
		Symbol: symbol,
		Name:   from + "/" + to,
		Price:  avFloat(rate["5. Exchange Rate"]),
		Metadata: QuoteMetadata{
			Source:        "alpha_vantage",
			FromCurrency:  from,
			ToCurrency:    to,
			LastRefreshed: rate["6. Last Refreshed"],
		},
	}
	s.log.Debug("forex rate fetched",
		applogger.String("symbol", symbol),
	)
	return json.Marshal(quote)
}

func avFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
