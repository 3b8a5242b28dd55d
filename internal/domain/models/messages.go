package models

import (
	"encoding/json"
	"time"
)

// Client protocol message types.
const (
	MsgSubscribed   = "subscribed"
	MsgUnsubscribed = "unsubscribed"
	MsgMarketUpdate = "market_update"
	MsgError        = "error"
)

// Client request actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ClientRequest is a subscribe/unsubscribe message from a client.
type ClientRequest struct {
	Action     string `json:"action" validate:"required,oneof=subscribe unsubscribe"`
	AssetClass string `json:"asset_class" validate:"required"`
	Symbol     string `json:"symbol" validate:"required"`
}

// ServerMessage is the envelope for every server-to-client frame.
type ServerMessage struct {
	Type       string          `json:"type"`
	AssetClass AssetClass      `json:"asset_class,omitempty"`
	Symbol     string          `json:"symbol,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
	Code       string          `json:"code,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// AckMessage builds a subscribed/unsubscribed acknowledgment.
func AckMessage(msgType string, key FeedKey) ServerMessage {
	return ServerMessage{Type: msgType, AssetClass: key.Class, Symbol: key.Symbol}
}

// UpdateMessage builds a market_update frame from a feed update.
func UpdateMessage(u FeedUpdate) ServerMessage {
	return ServerMessage{
		Type:       MsgMarketUpdate,
		AssetClass: u.Key.Class,
		Symbol:     u.Key.Symbol,
		Data:       u.Payload,
		Timestamp:  u.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// ErrorMessage builds an error frame.
func ErrorMessage(code, message string) ServerMessage {
	return ServerMessage{Type: MsgError, Code: code, Message: message}
}
