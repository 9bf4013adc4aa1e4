package instrument

import (
	"strings"

	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

// Type is the asset class of a symbol.
type Type string

const (
	TypeStock  Type = "STK"
	TypeForex  Type = "CASH"
	TypeFuture Type = "FUT"
)

const (
	forexSeparator = "/"
	futureSuffix   = "=F"
)

// Instrument is the broker-facing description of a symbol.
type Instrument struct {
	Symbol          string `json:"symbol"`
	Root            string `json:"root"`
	Type            Type   `json:"type"`
	Exchange        string `json:"exchange"`
	PrimaryExchange string `json:"primary_exchange,omitempty"`
	Currency        string `json:"currency"`
	Multiplier      int    `json:"multiplier"`
}

// FutureSpec describes a supported futures root.
type FutureSpec struct {
	Exchange   string `yaml:"exchange" json:"exchange" mapstructure:"exchange"`
	Multiplier int    `yaml:"multiplier" json:"multiplier" mapstructure:"multiplier"`
}

// DefaultFutures is the futures table used when no other table is configured.
var DefaultFutures = map[string]FutureSpec{
	"ES": {Exchange: "GLOBEX", Multiplier: 50},
	"YM": {Exchange: "ECBOT", Multiplier: 5},
	"TF": {Exchange: "NYBOT", Multiplier: 50},
}

// Resolver turns symbol strings into instruments.
type Resolver struct {
	futures map[string]FutureSpec
}

// NewResolver creates a resolver over the given futures table. A nil table uses DefaultFutures.
func NewResolver(futures map[string]FutureSpec) *Resolver {
	if futures == nil {
		futures = DefaultFutures
	}

	return &Resolver{futures: futures}
}

// IsForex reports whether symbol is written as BASE/QUOTE.
func IsForex(symbol string) bool {
	return strings.Contains(symbol, forexSeparator)
}

// IsFuture reports whether symbol carries the futures suffix.
func IsFuture(symbol string) bool {
	return strings.Contains(symbol, futureSuffix)
}

// Resolve classifies symbol and fills in its exchange, currency and multiplier.
func (r *Resolver) Resolve(symbol string) (Instrument, error) {
	if symbol == "" {
		return Instrument{}, errors.New(errors.ErrCodeUnresolvableInstrument, "symbol is empty")
	}

	if IsForex(symbol) {
		parts := strings.Split(symbol, forexSeparator)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Instrument{}, errors.Newf(errors.ErrCodeUnresolvableInstrument, "malformed forex symbol %s", symbol)
		}

		return Instrument{
			Symbol:     symbol,
			Root:       parts[0],
			Type:       TypeForex,
			Exchange:   "IDEALPRO",
			Currency:   parts[1],
			Multiplier: 1,
		}, nil
	}

	if IsFuture(symbol) {
		root := strings.ReplaceAll(symbol, futureSuffix, "")

		spec, ok := r.futures[root]
		if !ok {
			return Instrument{}, errors.Newf(errors.ErrCodeUnresolvableInstrument, "unsupported future %s", symbol)
		}

		return Instrument{
			Symbol:     symbol,
			Root:       root,
			Type:       TypeFuture,
			Exchange:   spec.Exchange,
			Currency:   "USD",
			Multiplier: spec.Multiplier,
		}, nil
	}

	return Instrument{
		Symbol:          symbol,
		Root:            symbol,
		Type:            TypeStock,
		Exchange:        "SMART",
		PrimaryExchange: "ARCA",
		Currency:        "USD",
		Multiplier:      1,
	}, nil
}

// Multiplier returns the contract multiplier of symbol, 1 for anything that is not a known future.
func (r *Resolver) Multiplier(symbol string) int {
	if !IsFuture(symbol) {
		return 1
	}

	spec, ok := r.futures[strings.ReplaceAll(symbol, futureSuffix, "")]
	if !ok {
		return 1
	}

	return spec.Multiplier
}

// FutureMultiplier looks a future up in DefaultFutures.
func FutureMultiplier(symbol string) (int, error) {
	spec, ok := DefaultFutures[strings.ReplaceAll(symbol, futureSuffix, "")]
	if !IsFuture(symbol) || !ok {
		return 0, errors.Newf(errors.ErrCodeUnresolvableInstrument, "no multiplier for %s", symbol)
	}

	return spec.Multiplier, nil
}

// Multiplier is a shortcut for the default resolver.
func Multiplier(symbol string) int {
	return defaultResolver.Multiplier(symbol)
}

// SymbolPrice expresses a forex quote in USD terms: USD/XXX quotes are inverted.
func SymbolPrice(symbol string, price float64) float64 {
	if IsForex(symbol) && price != 0 {
		parts := strings.Split(symbol, forexSeparator)
		if parts[0] == "USD" {
			return 1 / price
		}
	}

	return price
}

var defaultResolver = NewResolver(nil)
