package app

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/api"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/runner"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/internal/trading/live"
	"github.com/rxtech-lab/argo-pairs/internal/trading/live/session"
	tradingprovider "github.com/rxtech-lab/argo-pairs/internal/trading/provider"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// StartTimeout covers the first account fetch and the history a strategy
// may load while it is built.
const StartTimeout = time.Minute

// Module provides the broker, the trading context, the session and the
// status server, and runs the configured strategy between start and stop.
func Module(config Config) fx.Option {
	return fx.Options(
		fx.Supply(config),
		fx.Provide(
			NewLogger,
			NewBroker,
			NewTradingContext,
			NewSession,
			NewServer,
		),
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx").Logger}
		}),
		fx.StartTimeout(StartTimeout),
		fx.Invoke(Register),
	)
}

func NewLogger(config Config) (*logger.Logger, error) {
	return logger.NewLoggerWithLevel(config.Level())
}

func NewBroker(config Config, log *logger.Logger) (tradingprovider.Broker, error) {
	broker, err := tradingprovider.NewBinanceBroker(config.Binance, log)
	if err != nil {
		return nil, err
	}

	return broker, nil
}

func NewTradingContext(broker tradingprovider.Broker, config Config, log *logger.Logger) (*live.TradingContext, error) {
	return live.NewTradingContext(broker, config.Live, log)
}

func NewSession(config Config, log *logger.Logger) *session.Session {
	return session.NewSession(config.DataPath, log)
}

// NewServer returns nil when the status server is disabled.
func NewServer(config Config, tradingContext *live.TradingContext, log *logger.Logger) *api.Server {
	if config.API.Address == "" {
		return nil
	}

	return api.NewServer(config.API.Address, tradingContext, log)
}

// Register appends the lifecycle hooks. Start runs them in order and stop
// runs them in reverse, so the strategy stops first and the trading context
// last.
func Register(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	config Config,
	log *logger.Logger,
	tradingContext *live.TradingContext,
	sess *session.Session,
	server *api.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return tradingContext.Start()
		},
		OnStop: func(context.Context) error {
			tradingContext.Stop()

			return nil
		},
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return sess.Open(time.Now())
		},
		OnStop: func(context.Context) error {
			return saveSession(tradingContext, sess)
		},
	})

	if server != nil {
		lc.Append(fx.StartStopHook(server.Start, server.Shutdown))
	}

	r := runner.NewPerMinuteRunner(log, func(at time.Time, action strategy.TickAction) {
		if action == strategy.TickActionNone {
			return
		}

		if err := saveSession(tradingContext, sess); err != nil {
			log.Warn("Failed to save session", zap.Time("at", at), zap.Error(err))
		}
	})

	runCtx, cancelRun := context.WithCancel(context.Background())
	done := make(chan error, 1)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Strategies seeded from history need the pair tracked before they are built.
			for _, symbol := range config.Strategy.Symbols {
				if err := tradingContext.AddSymbol(ctx, symbol); err != nil {
					return err
				}
			}

			s, err := builder.Build(ctx, tradingContext, config.Strategy, log)
			if err != nil {
				return err
			}

			go func() {
				err := r.Run(runCtx, s, config.Strategy.Symbols)
				done <- err

				if err != nil {
					log.Error("Strategy runner failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelRun()

			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func saveSession(tradingContext *live.TradingContext, sess *session.Session) error {
	snapshot, err := tradingContext.Snapshot()
	if err != nil {
		return err
	}

	return sess.Save(snapshot)
}
