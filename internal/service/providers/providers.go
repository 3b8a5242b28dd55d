// Package providers fetches market data from upstream sources,
// routing each asset class to the provider that serves it.
package providers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/engine"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/service/ratelimit"
	apphttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
	applogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// Per-provider request quotas enforced client-side. Alpha Vantage's
// free tier is the tight one; a blown budget skips the tick and the
// cached snapshot keeps serving.
type quota struct {
	capacity  float64
	refillSec float64
}

var providerQuotas = map[string]quota{
	"alpha_vantage": {capacity: 5, refillSec: 5.0 / 60.0},
	"coingecko":     {capacity: 10, refillSec: 10.0 / 60.0},
	"quandl":        {capacity: 20, refillSec: 20.0 / 60.0},
}

// Config holds upstream provider settings.
type Config struct {
	AlphaVantageKey string
	AlphaVantageURL string
	CoinGeckoURL    string
	QuandlKey       string
	QuandlURL       string
	Timeout         time.Duration
}

type handler func(ctx context.Context, symbol string) (json.RawMessage, error)

// Service routes fetches to the upstream provider for each asset class.
// It implements repository.FeedFetcher.
type Service struct {
	http     *apphttp.Client
	cfg      Config
	log      *applogger.Logger
	limiter  *ratelimit.Limiter
	handlers map[models.AssetClass]handler
	sources  map[models.AssetClass]string
}

// NewService creates a provider service covering all asset classes.
func NewService(cfg Config, l *applogger.Logger) *Service {
	if cfg.AlphaVantageURL == "" {
		cfg.AlphaVantageURL = "https://www.alphavantage.co/query"
	}
	if cfg.CoinGeckoURL == "" {
		cfg.CoinGeckoURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.QuandlURL == "" {
		cfg.QuandlURL = "https://www.quandl.com/api/v3"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Service{
		http:    apphttp.NewClient(apphttp.WithTimeout(timeout)),
		cfg:     cfg,
		log:     l,
		limiter: ratelimit.New(),
	}
	s.sources = map[models.AssetClass]string{
		models.AssetStock:      "alpha_vantage",
		models.AssetIndex:      "alpha_vantage",
		models.AssetETF:        "alpha_vantage",
		models.AssetRealEstate: "alpha_vantage",
		models.AssetForex:      "alpha_vantage",
		models.AssetCrypto:     "coingecko",
		models.AssetCommodity:  "quandl",
	}
	s.handlers = map[models.AssetClass]handler{
		models.AssetStock:      s.fetchQuote,
		models.AssetIndex:      s.fetchQuote,
		models.AssetETF:        s.fetchQuote,
		models.AssetRealEstate: s.fetchQuote,
		models.AssetForex:      s.fetchForex,
		models.AssetCrypto:     s.fetchCrypto,
		models.AssetCommodity:  s.fetchCommodity,
		models.AssetBond:       s.fetchBond,
		models.AssetATF:        s.fetchATF,
	}
	return s
}

// Fetch retrieves the latest payload for the given feed key.
func (s *Service) Fetch(ctx context.Context, key models.FeedKey) (json.RawMessage, error) {
	h, ok := s.handlers[key.Class]
	if !ok {
		return nil, engine.NewUpstreamError(key, "no provider for asset class", nil)
	}
	if source, limited := s.sources[key.Class]; limited {
		q := providerQuotas[source]
		if !s.limiter.Allow(source, q.capacity, q.refillSec) {
			return nil, engine.NewUpstreamError(key, "provider quota exhausted", nil)
		}
	}
	payload, err := h(ctx, key.Symbol)
	if err != nil {
		return nil, engine.NewUpstreamError(key, "fetch failed", err)
	}
	return payload, nil
}
