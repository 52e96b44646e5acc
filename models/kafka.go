package models

import (
	// Go Internal Packages
	"encoding/json"
	"time"
)

// Record is a relayed callback read from the stream. Key holds the callback kind.
type Record struct {
	Key   []byte
	Value []byte
	Topic string
}

// Callback kinds, used as record keys and in the dead letter entries.
const (
	CallbackPayout = "payout"
	CallbackC2B    = "c2b"
	CallbackP2P    = "p2p"
	CallbackIPN    = "ipn"
)

// FailedCallback is a record that could not be reconciled, parked for replay.
type FailedCallback struct {
	Kind     string          `json:"kind"`
	Topic    string          `json:"topic,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	Error    string          `json:"error"`
	FailedAt time.Time       `json:"failed_at"`
}
