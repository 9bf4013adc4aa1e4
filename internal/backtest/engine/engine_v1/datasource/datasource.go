package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pairs/internal/types"
)

// DataSource loads the aligned close prices a backtest replays.
type DataSource interface {
	// Load returns the close prices of symbols aligned on shared timestamps,
	// restricted to the optional [start, end] range. The series keeps the
	// order of symbols.
	Load(ctx context.Context, symbols []string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.MultiSeries, error)
	// Close releases any resources held by the data source.
	Close() error
}

// inRange reports whether t lies within the optional bounds, both inclusive.
func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
