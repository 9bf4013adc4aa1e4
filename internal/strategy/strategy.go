// Package strategy implements the criteria driven trading state machine that
// both the backtest engine and the live runner tick.
package strategy

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// Criterion is a single yes/no decision input evaluated on every tick.
type Criterion interface {
	// Init prepares the criterion. It is called once when the criterion is added.
	Init(ctx context.Context) error
	// IsMet evaluates the criterion. An error means the criterion is violated
	// and is treated the same as not met.
	IsMet(ctx context.Context) (bool, error)
}

// NoInit can be embedded by criteria that need no preparation.
type NoInit struct{}

func (NoInit) Init(context.Context) error {
	return nil
}

// Role is the group a criterion belongs to.
type Role string

const (
	RoleCommon   Role = "common"
	RoleEntry    Role = "entry"
	RoleExit     Role = "exit"
	RoleStopLoss Role = "stop_loss"
)

// TickAction is the outcome of a single tick.
type TickAction string

const (
	TickActionNone  TickAction = "none"
	TickActionOpen  TickAction = "open"
	TickActionClose TickAction = "close"
)

// Positioner opens and closes the position a strategy trades.
type Positioner interface {
	OpenPosition(ctx context.Context) error
	ClosePosition(ctx context.Context) error
}

// Strategy is what schedulers and the backtest engine drive.
type Strategy interface {
	Name() string
	// OnTick evaluates the criteria once and acts on the result.
	OnTick(ctx context.Context) TickAction
	// AddSymbol registers a symbol with the strategy and its trading context.
	AddSymbol(ctx context.Context, symbol string) error
	Symbols() []string
	TradingContext() trading.TradingContext
}

// Base holds the criteria and symbols of a strategy and runs the tick
// decision. Concrete strategies embed it and supply a Positioner.
type Base struct {
	mu       sync.RWMutex
	criteria map[Role][]Criterion
	symbols  []string

	tradingContext trading.TradingContext
	logger         *logger.Logger
}

// NewBase creates a Base bound to a trading context.
func NewBase(tradingContext trading.TradingContext, log *logger.Logger) *Base {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Base{
		criteria:       make(map[Role][]Criterion),
		tradingContext: tradingContext,
		logger:         log,
	}
}

// AddCriterion initializes the criterion and appends it to the role's group.
func (b *Base) AddCriterion(ctx context.Context, role Role, criterion Criterion) error {
	if criterion == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "criterion is nil")
	}

	switch role {
	case RoleCommon, RoleEntry, RoleExit, RoleStopLoss:
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown criterion role %q", role)
	}

	if err := criterion.Init(ctx); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to initialize %s criterion", role)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.criteria[role] = append(b.criteria[role], criterion)

	return nil
}

// RemoveCriterion removes the first occurrence of criterion from the role's group.
func (b *Base) RemoveCriterion(role Role, criterion Criterion) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	group := b.criteria[role]

	for i, c := range group {
		if c == criterion {
			b.criteria[role] = slices.Delete(slices.Clone(group), i, i+1)

			return true
		}
	}

	return false
}

// Criteria returns a copy of the criteria of a role.
func (b *Base) Criteria(role Role) []Criterion {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.criteria[role])
}

func (b *Base) AddSymbol(ctx context.Context, symbol string) error {
	if err := b.tradingContext.AddSymbol(ctx, symbol); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.symbols = append(b.symbols, symbol)

	return nil
}

func (b *Base) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.symbols)
}

func (b *Base) TradingContext() trading.TradingContext {
	return b.tradingContext
}

func (b *Base) Logger() *logger.Logger {
	return b.logger
}

// Tick runs one evaluation of the state machine:
//
//	common not met        -> nothing
//	entry met             -> open
//	stop loss met         -> close
//	exit met              -> close
//
// Empty common and entry groups are met, empty exit and stop loss groups
// never trigger. A panic raised by a criterion or the positioner is
// recovered and logged.
func (b *Base) Tick(ctx context.Context, positioner Positioner) (action TickAction) {
	action = TickActionNone

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic during tick", zap.String("panic", fmt.Sprint(r)))

			action = TickActionNone
		}
	}()

	if !b.groupMet(ctx, RoleCommon, true) {
		return TickActionNone
	}

	if b.groupMet(ctx, RoleEntry, true) {
		if b.act(ctx, "open", positioner.OpenPosition) {
			return TickActionOpen
		}

		return TickActionNone
	}

	if b.groupMet(ctx, RoleStopLoss, false) || b.groupMet(ctx, RoleExit, false) {
		if b.act(ctx, "close", positioner.ClosePosition) {
			return TickActionClose
		}
	}

	return TickActionNone
}

// groupMet evaluates the criteria of a role in order and stops at the first
// one that is not met.
func (b *Base) groupMet(ctx context.Context, role Role, emptyMet bool) bool {
	group := b.Criteria(role)
	if len(group) == 0 {
		return emptyMet
	}

	for _, criterion := range group {
		met, err := criterion.IsMet(ctx)
		if err != nil {
			b.logger.Debug("Criterion violated",
				zap.String("role", string(role)),
				zap.String("criterion", fmt.Sprintf("%T", criterion)),
				zap.Error(err),
			)

			return false
		}

		if !met {
			b.logger.Debug("Criterion not met",
				zap.String("role", string(role)),
				zap.String("criterion", fmt.Sprintf("%T", criterion)),
			)

			return false
		}
	}

	return true
}

func (b *Base) act(ctx context.Context, name string, fn func(context.Context) error) bool {
	err := fn(ctx)
	if err == nil {
		return true
	}

	if errors.IsPriceUnavailable(err) {
		b.logger.Warn("Price is not available, skipping position change",
			zap.String("action", name),
			zap.Error(err),
		)
	} else {
		b.logger.Error("Failed to change position",
			zap.String("action", name),
			zap.Error(err),
		)
	}

	return false
}

// CloseSymbols closes the outstanding order of each symbol in turn. A symbol
// without an order is logged and skipped; any other failure stops the loop.
func (b *Base) CloseSymbols(ctx context.Context, symbols ...string) error {
	for _, symbol := range symbols {
		order, err := b.tradingContext.LastOrder(symbol)
		if err != nil {
			if errors.IsNoOrderAvailable(err) {
				b.logger.Error("No order available", zap.String("symbol", symbol))

				continue
			}

			return err
		}

		if _, err := b.tradingContext.Close(ctx, order); err != nil {
			return err
		}
	}

	return nil
}

// Leg is one side of a pair order.
type Leg struct {
	Symbol string
	Buy    bool
	Amount int
}

// OpenLegs places the legs in order. Every amount is checked before anything
// is placed. When a later leg fails, the legs already placed are closed
// again and the original error is returned.
func (b *Base) OpenLegs(ctx context.Context, legs ...Leg) error {
	for _, leg := range legs {
		if leg.Amount < 1 {
			return errors.Newf(errors.ErrCodeCriterionViolation,
				"order size for %s rounds to %d, need at least 1", leg.Symbol, leg.Amount)
		}
	}

	opened := make([]string, 0, len(legs))

	for _, leg := range legs {
		if _, err := b.tradingContext.Order(ctx, leg.Symbol, leg.Buy, leg.Amount); err != nil {
			if len(opened) > 0 {
				if closeErr := b.CloseSymbols(ctx, opened...); closeErr != nil {
					b.logger.Error("Failed to close placed legs",
						zap.Strings("symbols", opened),
						zap.Error(closeErr),
					)
				}
			}

			return err
		}

		opened = append(opened, leg.Symbol)

		b.logger.Debug("Order placed", zap.String("symbol", leg.Symbol), zap.Int("amount", leg.Amount))
	}

	return nil
}
