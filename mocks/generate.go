package mocks

//go:generate mockgen -destination=./mock_trading_context.go -package=mocks github.com/rxtech-lab/argo-pairs/internal/trading TradingContext
//go:generate mockgen -destination=./mock_criterion.go -package=mocks github.com/rxtech-lab/argo-pairs/internal/strategy Criterion
//go:generate mockgen -destination=./mock_broker.go -package=mocks github.com/rxtech-lab/argo-pairs/internal/trading/provider Broker
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/datasource DataSource
