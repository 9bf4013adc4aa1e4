package writer

import (
	"github.com/rxtech-lab/argo-pairs/internal/types"
)

// MarketDataWriter defines the interface for writing downloaded prices to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single close price of symbol.
	Write(symbol string, point types.PricePoint) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
