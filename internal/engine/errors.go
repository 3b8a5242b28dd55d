package engine

import (
	"errors"
	"fmt"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
)

// ErrInvalidKey rejects subscriptions for malformed feed keys or asset
// classes outside the closed enumeration. It never reaches the scheduler.
var ErrInvalidKey = errors.New("invalid feed key")

// ErrEngineClosed is returned once Shutdown has begun.
var ErrEngineClosed = errors.New("engine closed")

// UpstreamError wraps any provider-side failure, rate limits included.
// The engine treats them all identically: the tick is skipped and the
// previous cached snapshot is retained.
type UpstreamError struct {
	Class   models.AssetClass
	Symbol  string
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s/%s: %s", e.Class, e.Symbol, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError builds an UpstreamError for a feed key.
func NewUpstreamError(key models.FeedKey, msg string, err error) *UpstreamError {
	return &UpstreamError{Class: key.Class, Symbol: key.Symbol, Message: msg, Err: err}
}
