package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/engine"
	applogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

func testService(t *testing.T, cfg Config) *Service {
	t.Helper()
	return NewService(cfg, applogger.Nop())
}

func TestFetchStockQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Errorf("function = %q", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"Global Quote": map[string]string{
				"05. price":              "187.44",
				"08. previous close":     "185.01",
				"03. high":               "188.00",
				"04. low":                "184.50",
				"06. volume":             "51234567",
				"09. change":             "2.43",
				"10. change percent":     "1.31%",
				"07. latest trading day": "2026-08-28",
			},
		})
	}))
	defer server.Close()

	s := testService(t, Config{AlphaVantageKey: "k", AlphaVantageURL: server.URL})
	payload, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetStock, Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	var q Quote
	if err := json.Unmarshal(payload, &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Price != 187.44 {
		t.Errorf("price = %v", q.Price)
	}
	if q.ChangePercent != "1.31" {
		t.Errorf("change_percent = %q", q.ChangePercent)
	}
	if q.Metadata.Source != "alpha_vantage" {
		t.Errorf("source = %q", q.Metadata.Source)
	}
}

func TestFetchStockRateLimitedUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"Note": "API call frequency exceeded",
		})
	}))
	defer server.Close()

	s := testService(t, Config{AlphaVantageKey: "k", AlphaVantageURL: server.URL})
	_, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetStock, Symbol: "AAPL"})

	var ue *engine.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if ue.Class != models.AssetStock || ue.Symbol != "AAPL" {
		t.Errorf("error carries %s/%s", ue.Class, ue.Symbol)
	}
}

func TestFetchStockMissingKey(t *testing.T) {
	s := testService(t, Config{})
	_, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetETF, Symbol: "SPY"})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestFetchForex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from_currency"); got != "EUR" {
			t.Errorf("from_currency = %q", got)
		}
		if got := r.URL.Query().Get("to_currency"); got != "USD" {
			t.Errorf("to_currency = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"Realtime Currency Exchange Rate": map[string]string{
				"5. Exchange Rate":  "1.0842",
				"6. Last Refreshed": "2026-08-29 10:00:00",
			},
		})
	}))
	defer server.Close()

	s := testService(t, Config{AlphaVantageKey: "k", AlphaVantageURL: server.URL})
	payload, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetForex, Symbol: "EUR/USD"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	var q ForexQuote
	if err := json.Unmarshal(payload, &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Price != 1.0842 {
		t.Errorf("price = %v", q.Price)
	}
	if q.Metadata.FromCurrency != "EUR" || q.Metadata.ToCurrency != "USD" {
		t.Errorf("currencies = %s/%s", q.Metadata.FromCurrency, q.Metadata.ToCurrency)
	}
}

func TestFetchForexBadSymbol(t *testing.T) {
	s := testService(t, Config{AlphaVantageKey: "k"})
	_, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetForex, Symbol: "EURUSD"})
	if err == nil {
		t.Fatal("expected error for symbol without separator")
	}
}

func TestFetchCrypto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "bitcoin" {
			t.Errorf("ids = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"bitcoin": map[string]float64{
				"usd":            64250.12,
				"usd_24h_change": -1.8,
				"usd_market_cap": 1.26e12,
				"usd_24h_vol":    3.1e10,
			},
		})
	}))
	defer server.Close()

	s := testService(t, Config{CoinGeckoURL: server.URL})
	payload, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetCrypto, Symbol: "BTC"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	var q CryptoQuote
	if err := json.Unmarshal(payload, &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Price != 64250.12 {
		t.Errorf("price = %v", q.Price)
	}
	if q.Name != "Bitcoin" {
		t.Errorf("name = %q", q.Name)
	}
}

func TestFetchCryptoUnknownCoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	s := testService(t, Config{CoinGeckoURL: server.URL})
	_, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetCrypto, Symbol: "NOPECOIN"})
	if err == nil {
		t.Fatal("expected error for unknown coin")
	}
}

func TestFetchCommodity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/datasets/LBMA/GOLD.json" {
			t.Errorf("path = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"dataset": map[string]any{
				"name": "Gold Price: London Fixing",
				"data": [][]any{{"2026-08-28", 2451.3}},
			},
		})
	}))
	defer server.Close()

	s := testService(t, Config{QuandlKey: "k", QuandlURL: server.URL})
	payload, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetCommodity, Symbol: "GOLD"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	var q CommodityQuote
	if err := json.Unmarshal(payload, &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Price != 2451.3 {
		t.Errorf("price = %v", q.Price)
	}
	if q.Metadata.DatasetCode != "LBMA/GOLD" {
		t.Errorf("dataset = %q", q.Metadata.DatasetCode)
	}
}

func TestFetchCommodityUnsupported(t *testing.T) {
	s := testService(t, Config{QuandlKey: "k"})
	_, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetCommodity, Symbol: "URANIUM"})
	if err == nil {
		t.Fatal("expected error for unmapped commodity")
	}
}

func TestFetchStaticClasses(t *testing.T) {
	s := testService(t, Config{})

	payload, err := s.Fetch(context.Background(), models.FeedKey{Class: models.AssetBond, Symbol: "UST10Y"})
	if err != nil {
		t.Fatalf("bond fetch: %v", err)
	}
	var bond BondQuote
	if err := json.Unmarshal(payload, &bond); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if bond.Yield != 2.5 || bond.Metadata.Source != "static" {
		t.Errorf("bond = %+v", bond)
	}

	payload, err = s.Fetch(context.Background(), models.FeedKey{Class: models.AssetATF, Symbol: "FUND1"})
	if err != nil {
		t.Fatalf("atf fetch: %v", err)
	}
	var fund FundQuote
	if err := json.Unmarshal(payload, &fund); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fund.Symbol != "FUND1" {
		t.Errorf("fund = %+v", fund)
	}
}

func TestFetchQuotaExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Global Quote": map[string]string{"05. price": "1.0"},
		})
	}))
	defer server.Close()

	s := testService(t, Config{AlphaVantageKey: "k", AlphaVantageURL: server.URL})
	key := models.FeedKey{Class: models.AssetStock, Symbol: "AAPL"}

	// The alpha_vantage bucket holds 5 tokens; the sixth burst call
	// must be rejected locally without hitting the server.
	for i := 0; i < 5; i++ {
		if _, err := s.Fetch(context.Background(), key); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if _, err := s.Fetch(context.Background(), key); err == nil {
		t.Fatal("sixth burst fetch should exhaust the quota")
	}
}
