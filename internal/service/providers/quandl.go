package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apphttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
)

// quandlDatasets maps commodity symbols to Quandl dataset codes.
var quandlDatasets = map[string]string{
	"GOLD":   "LBMA/GOLD",
	"SILVER": "LBMA/SILVER",
	"OIL":    "CHRIS/CME_CL1",
	"GAS":    "CHRIS/CME_NG1",
}

type quandlResponse struct {
	Error   string `json:"error"`
	Dataset *struct {
		Name string              `json:"name"`
		Data [][]json.RawMessage `json:"data"`
	} `json:"dataset"`
}

// CommodityQuote is the normalized commodity payload.
type CommodityQuote struct {
	Symbol   string            `json:"symbol"`
	Name     string            `json:"name"`
	Price    float64           `json:"price"`
	Metadata CommodityMetadata `json:"metadata"`
}

// CommodityMetadata records provenance for a commodity payload.
type CommodityMetadata struct {
	Source        string `json:"source"`
	DatasetCode   string `json:"dataset_code"`
	LastRefreshed string `json:"last_refreshed,omitempty"`
}

func (s *Service) fetchCommodity(ctx context.Context, symbol string) (json.RawMessage, error) {
	if s.cfg.QuandlKey == "" {
		return nil, fmt.Errorf("quandl api key not configured")
	}

	code, ok := quandlDatasets[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("unsupported commodity symbol %q", symbol)
	}

	var resp quandlResponse
	err := s.http.SendAndParse(ctx, &apphttp.RequestOptions{
		URL: fmt.Sprintf("%s/datasets/%s.json", s.cfg.QuandlURL, code),
		QueryParams: map[string][]string{
			"api_key": {s.cfg.QuandlKey},
			"limit":   {"1"},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("quandl: %s", resp.Error)
	}
	if resp.Dataset == nil || len(resp.Dataset.Data) == 0 || len(resp.Dataset.Data[0]) < 2 {
		return nil, fmt.Errorf("quandl: no data for %s", symbol)
	}

	// Rows are [date, price, ...]; newest first when limit=1.
	row := resp.Dataset.Data[0]
	var date string
	_ = json.Unmarshal(row[0], &date)
	var price float64
	if err := json.Unmarshal(row[1], &price); err != nil {
		return nil, fmt.Errorf("quandl: bad price column for %s: %w", symbol, err)
	}

	quote := CommodityQuote{
		Symbol: symbol,
		Name:   resp.Dataset.Name,
		Price:  price,
		Metadata: CommodityMetadata{
			Source:        "quandl",
			DatasetCode:   code,
			LastRefreshed: date,
		},
	}
	return json.Marshal(quote)
}
