package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/types"
)

const (
	ReportFileName = "report.yaml"
	OrdersFileName = "orders.csv"
)

var ordersHeader = []string{"id", "amount", "side", "instrument", "from", "to", "open", "close", "pl"}

// WriteOrdersCSV writes one line per closed order. The amount is absolute,
// the side carries the direction.
func WriteOrdersCSV(w io.Writer, orders []types.ClosedOrder) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ordersHeader); err != nil {
		return err
	}

	for _, order := range orders {
		record := []string{
			strconv.Itoa(order.ID),
			strconv.Itoa(order.AbsAmount()),
			string(order.Side()),
			order.Symbol,
			order.OpenTime.UTC().Format(time.RFC3339),
			order.CloseTime.UTC().Format(time.RFC3339),
			strconv.FormatFloat(order.OpenPrice, 'f', -1, 64),
			strconv.FormatFloat(order.ClosePrice, 'f', -1, 64),
			strconv.FormatFloat(order.PnL, 'f', 2, 64),
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// Summary is the one line result of a run.
func Summary(report types.BacktestReport) string {
	return fmt.Sprintf("P/L = %.2f, Final value = %.2f, Result = %.2f%%, Annualized = %.2f%%, Sharpe (rf=0%%) = %.2f",
		report.PnL,
		report.FinalValue,
		report.Return*100,
		report.AnnualizedReturn*100,
		report.SharpeRatio,
	)
}

// writeResults stores the YAML report and the closed orders in folder.
func writeResults(folder string, report types.BacktestReport) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("failed to create results folder: %w", err)
	}

	if err := types.WriteBacktestReport(filepath.Join(folder, ReportFileName), report); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(folder, OrdersFileName))
	if err != nil {
		return fmt.Errorf("failed to create orders file: %w", err)
	}
	defer file.Close()

	if err := WriteOrdersCSV(file, report.ClosedOrders); err != nil {
		return fmt.Errorf("failed to write orders: %w", err)
	}

	return nil
}
