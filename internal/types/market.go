package types

import "time"

// TickType identifies which side of the quote a price update refers to.
type TickType string

const (
	TickTypeAsk   TickType = "ASK"
	TickTypeBid   TickType = "BID"
	TickTypeLast  TickType = "LAST"
	TickTypeClose TickType = "CLOSE"
)

// PriceTick is a single price update pushed by a broker.
type PriceTick struct {
	Symbol string    `json:"symbol"`
	Type   TickType  `json:"type"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// AccountInfo is a snapshot of the account values used for position sizing.
type AccountInfo struct {
	NetValue       float64 `yaml:"net_value" json:"net_value"`
	AvailableFunds float64 `yaml:"available_funds" json:"available_funds"`
	Leverage       int     `yaml:"leverage" json:"leverage"`
}
