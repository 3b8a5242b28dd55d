package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AssetClass identifies the market segment a symbol belongs to.
// The set is closed; anything outside it is rejected at subscribe time.
type AssetClass string

const (
	AssetStock      AssetClass = "STOCK"
	AssetCrypto     AssetClass = "CRYPTO"
	AssetForex      AssetClass = "FOREX"
	AssetBond       AssetClass = "BOND"
	AssetCommodity  AssetClass = "COMMODITY"
	AssetIndex      AssetClass = "INDEX"
	AssetETF        AssetClass = "ETF"
	AssetATF        AssetClass = "ATF"
	AssetRealEstate AssetClass = "REAL_ESTATE"
)

// pollIntervals maps each class to its upstream refresh cadence.
var pollIntervals = map[AssetClass]time.Duration{
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

// AssetClasses returns every supported class.
func AssetClasses() []AssetClass {
	return []AssetClass{
		AssetStock, AssetCrypto, AssetForex, AssetBond, AssetCommodity,
		AssetIndex, AssetETF, AssetATF, AssetRealEstate,
	}
}

// Valid reports whether c is one of the supported classes.
func (c AssetClass) Valid() bool {
	_, ok := pollIntervals[c]
	return ok
}

// PollInterval returns the class-specific polling cadence.
// Zero for unknown classes; callers must validate first.
func (c AssetClass) PollInterval() time.Duration {
	return pollIntervals[c]
}

// ParseAssetClass converts a wire string into an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	c := AssetClass(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown asset class %q", s)
	}
	return c, nil
}

// FeedKey uniquely identifies a pollable data feed. Symbols are
// case-preserved and scoped within their class, so the composite
// struct is the map key everywhere, never a concatenated string.
type FeedKey struct {
	Class  AssetClass
	Symbol string
}

func (k FeedKey) String() string {
	return string(k.Class) + "/" + k.Symbol
}

// CacheKey returns the write-through cache key for this feed.
func (k FeedKey) CacheKey() string {
	return fmt.Sprintf("asset_data:%s:%s", k.Class, k.Symbol)
}

// FeedSnapshot is the last successfully fetched payload for a feed.
// It is cached with a TTL slightly larger than the poll interval so a
// late reconnect can serve a recent value instead of nothing.
type FeedSnapshot struct {
	Class     AssetClass      `json:"asset_class"`
	Symbol    string          `json:"symbol"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Key reconstructs the feed key of a snapshot.
func (s FeedSnapshot) Key() FeedKey {
	return FeedKey{Class: s.Class, Symbol: s.Symbol}
}

// FeedUpdate is one fetched result on its way to subscribers.
type FeedUpdate struct {
	Key       FeedKey
	Payload   json.RawMessage
	Timestamp time.Time
}
