package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apphttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
)

// coinIDs maps common ticker symbols to CoinGecko coin ids. Unknown
// symbols fall through lowercased, which works for most full names.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"ADA":  "cardano",
	"DOT":  "polkadot",
	"LINK": "chainlink",
	"LTC":  "litecoin",
	"BCH":  "bitcoin-cash",
	"XRP":  "ripple",
	"DOGE": "dogecoin",
	"SOL":  "solana",
}

type cgPrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
}

// CryptoQuote is the normalized cryptocurrency payload.
type CryptoQuote struct {
	Symbol        string        `json:"symbol"`
	Name          string        `json:"name"`
	Price         float64       `json:"price"`
	ChangePercent float64       `json:"change_percent"`
	MarketCap     float64       `json:"market_cap"`
	Volume        float64       `json:"volume"`
	Metadata      QuoteMetadata `json:"metadata"`
}

func (s *Service) fetchCrypto(ctx context.Context, symbol string) (json.RawMessage, error) {
	coinID, ok := coinIDs[strings.ToUpper(symbol)]
	if !ok {
		coinID = strings.ToLower(symbol)
	}

	var resp map[string]cgPrice
	err := s.http.SendAndParse(ctx, &apphttp.RequestOptions{
		URL: s.cfg.CoinGeckoURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":                 {coinID},
			"vs_currencies":       {"usd"},
			"include_24hr_change": {"true"},
			"include_market_cap":  {"true"},
			"include_24hr_vol":    {"true"},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	price, ok := resp[coinID]
	if !ok {
		return nil, fmt.Errorf("coingecko: cryptocurrency %s not found", symbol)
	}

	quote := CryptoQuote{
		Symbol:        symbol,
		Name:          titleCase(coinID),
		Price:         price.USD,
		ChangePercent: price.USD24hChange,
		MarketCap:     price.USDMarketCap,
		Volume:        price.USD24hVol,
		Metadata:      QuoteMetadata{Source: "coingecko"},
	}
	return json.Marshal(quote)
}

func titleCase(id string) string {
	parts := strings.Split(id, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
