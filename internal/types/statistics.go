package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BacktestReport summarizes a finished backtest run.
type BacktestReport struct {
	RunID            string        `yaml:"run_id" json:"run_id"`
	Symbols          []string      `yaml:"symbols" json:"symbols"`
	StartTime        time.Time     `yaml:"start_time" json:"start_time"`
	EndTime          time.Time     `yaml:"end_time" json:"end_time"`
	InitialDeposit   float64       `yaml:"initial_deposit" json:"initial_deposit"`
	Leverage         int           `yaml:"leverage" json:"leverage"`
	Commissions      float64       `yaml:"commissions" json:"commissions"`
	PnL              float64       `yaml:"pnl" json:"pnl"`
	FinalValue       float64       `yaml:"final_value" json:"final_value"`
	Return           float64       `yaml:"return" json:"return"`
	AnnualizedReturn float64       `yaml:"annualized_return" json:"annualized_return"`
	SharpeRatio      float64       `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdown      float64       `yaml:"max_drawdown" json:"max_drawdown"`
	TotalTrades      int           `yaml:"total_trades" json:"total_trades"`
	WinningTrades    int           `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades     int           `yaml:"losing_trades" json:"losing_trades"`
	StoppedEarly     bool          `yaml:"stopped_early" json:"stopped_early"`
	ClosedOrders     []ClosedOrder `yaml:"closed_orders" json:"closed_orders"`
}

// WriteBacktestReport writes the report to path as YAML.
func WriteBacktestReport(path string, report BacktestReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest report to file: %w", err)
	}

	return nil
}

// ReadBacktestReport loads a report previously written by WriteBacktestReport.
func ReadBacktestReport(path string) (BacktestReport, error) {
	var report BacktestReport

	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("failed to read backtest report: %w", err)
	}

	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("failed to unmarshal backtest report: %w", err)
	}

	return report, nil
}
