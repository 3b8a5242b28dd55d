package models

import (
	"testing"
	"time"
)

func TestParseAssetClass(t *testing.T) {
	for _, c := range AssetClasses() {
		got, err := ParseAssetClass(string(c))
		if err != nil {
			t.Fatalf("ParseAssetClass(%s): %v", c, err)
		}
		if got != c {
			t.Errorf("ParseAssetClass(%s) = %s", c, got)
		}
	}

	if _, err := ParseAssetClass("EQUITY"); err == nil {
		t.Error("expected error for unknown class")
	}
	if _, err := ParseAssetClass(""); err == nil {
		t.Error("expected error for empty class")
	}
}

func TestPollIntervals(t *testing.T) {
	cases := map[AssetClass]time.Duration{
		AssetStock:      5 * time.Second,
		AssetCrypto:     3 * time.Second,
		AssetForex:      10 * time.Second,
		AssetBond:       60 * time.Second,
		AssetCommodity:  30 * time.Second,
		AssetIndex:      10 * time.Second,
		AssetETF:        5 * time.Second,
		AssetATF:        300 * time.Second,
		AssetRealEstate: 3600 * time.Second,
	}
	for class, want := range cases {
		if got := class.PollInterval(); got != want {
			t.Errorf("%s: PollInterval = %v, want %v", class, got, want)
		}
	}

	if got := AssetClass("NOPE").PollInterval(); got != 0 {
		t.Errorf("unknown class: PollInterval = %v, want 0", got)
	}
}

func TestFeedKey(t *testing.T) {
	key := FeedKey{Class: AssetCrypto, Symbol: "BTC"}
	if got := key.String(); got != "CRYPTO/BTC" {
		t.Errorf("String() = %q", got)
	}
	if got := key.CacheKey(); got != "asset_data:CRYPTO:BTC" {
		t.Errorf("CacheKey() = %q", got)
	}

	// Same symbol under two classes must be distinct keys.
	a := FeedKey{Class: AssetStock, Symbol: "GOLD"}
	b := FeedKey{Class: AssetCommodity, Symbol: "GOLD"}
	if a == b {
		t.Error("keys with different classes compare equal")
	}
}
