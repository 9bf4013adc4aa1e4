package types

import (
	"sort"
	"time"
)

// PricePoint is a single close price observation.
type PricePoint struct {
	Time  time.Time `yaml:"time" json:"time" csv:"time"`
	Price float64   `yaml:"price" json:"price" csv:"price"`
}

// PriceSeries is a time-ordered list of prices for one symbol.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Last returns the most recent point.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}

	return s.Points[len(s.Points)-1], true
}

// Tail returns a series with at most the n most recent points.
func (s PriceSeries) Tail(n int) PriceSeries {
	if n >= len(s.Points) {
		return s
	}

	if n <= 0 {
		return PriceSeries{Symbol: s.Symbol, Points: nil}
	}

	return PriceSeries{Symbol: s.Symbol, Points: s.Points[len(s.Points)-n:]}
}

// Prices returns the close prices in time order.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}

	return prices
}

// Sort orders the points by time, oldest first.
func (s PriceSeries) Sort() {
	sort.SliceStable(s.Points, func(i, j int) bool {
		return s.Points[i].Time.Before(s.Points[j].Time)
	})
}

// MarketRow carries the prices of every tracked symbol at one instant.
type MarketRow struct {
	Time   time.Time
	Prices map[string]float64
}

// MultiSeries is a set of symbols aligned on shared timestamps.
type MultiSeries struct {
	Symbols []string
	Rows    []MarketRow
}

func (m MultiSeries) Len() int {
	return len(m.Rows)
}

// Series extracts the price series of one symbol.
func (m MultiSeries) Series(symbol string) PriceSeries {
	points := make([]PricePoint, 0, len(m.Rows))

	for _, row := range m.Rows {
		if price, ok := row.Prices[symbol]; ok {
			points = append(points, PricePoint{Time: row.Time, Price: price})
		}
	}

	return PriceSeries{Symbol: symbol, Points: points}
}

// Align joins the given series on identical timestamps. Only instants at
// which every series has a price are kept. Rows are ordered by time.
func Align(series ...PriceSeries) MultiSeries {
	symbols := make([]string, len(series))
	if len(series) == 0 {
		return MultiSeries{Symbols: symbols, Rows: nil}
	}

	byTime := make(map[int64]map[string]float64)
	times := make(map[int64]time.Time)

	for i, s := range series {
		symbols[i] = s.Symbol

		for _, p := range s.Points {
			key := p.Time.UnixNano()
			if _, ok := byTime[key]; !ok {
				byTime[key] = make(map[string]float64, len(series))
				times[key] = p.Time
			}

			byTime[key][s.Symbol] = p.Price
		}
	}

	keys := make([]int64, 0, len(byTime))

	for key, prices := range byTime {
		if len(prices) == len(series) {
			keys = append(keys, key)
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rows := make([]MarketRow, len(keys))
	for i, key := range keys {
		rows[i] = MarketRow{Time: times[key], Prices: byTime[key]}
	}

	return MultiSeries{Symbols: symbols, Rows: rows}
}
