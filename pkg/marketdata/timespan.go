package marketdata

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-pairs/pkg/marketdata/provider"
)

// Timespan is a bar size written the way Binance names its intervals.
type Timespan string

const (
	TimespanOneMinute      Timespan = "1m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanFourHours      Timespan = "4h"
	TimespanOneDay         Timespan = "1d"
	TimespanOneWeek        Timespan = "1w"
)

// AllTimespans lists the supported bar sizes.
var AllTimespans = []Timespan{
	TimespanOneMinute,
	TimespanFiveMinutes,
	TimespanFifteenMinutes,
	TimespanThirtyMinutes,
	TimespanOneHour,
	TimespanFourHours,
	TimespanOneDay,
	TimespanOneWeek,
}

func (t Timespan) Multiplier() int {
	switch t {
	case TimespanFiveMinutes:
		return 5
	case TimespanFifteenMinutes:
		return 15
	case TimespanThirtyMinutes:
		return 30
	case TimespanFourHours:
		return 4
	default:
		return 1
	}
}

func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneMinute, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes:
		return models.Minute
	case TimespanOneHour, TimespanFourHours:
		return models.Hour
	case TimespanOneWeek:
		return models.Week
	default:
		return models.Day
	}
}

// Bar converts the timespan into the provider bar size.
func (t Timespan) Bar() provider.Bar {
	return provider.Bar{Multiplier: t.Multiplier(), Timespan: t.Timespan()}
}
