// Package live implements the trading context of the live process on top of
// a broker. A single goroutine owns prices, orders and account values;
// broker notifications and strategy calls reach it as messages.
package live

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-pairs/internal/accounting"
	"github.com/rxtech-lab/argo-pairs/internal/instrument"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	tradingprovider "github.com/rxtech-lab/argo-pairs/internal/trading/provider"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// TradingContext is a trading.TradingContext backed by a broker. It is safe
// for concurrent use. Prices are ask prices.
type TradingContext struct {
	broker tradingprovider.Broker
	config Config
	log    *logger.Logger
	now    func() time.Time
	newID  func() string

	ctx    context.Context
	cancel context.CancelFunc

	requests       chan func(*state)
	ticks          chan types.PriceTick
	orderUpdates   chan tradingprovider.OrderUpdate
	accountUpdates chan tradingprovider.AccountUpdate
	stopped        chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	// workersMu orders forward's Add against Stop's Wait.
	workersMu sync.Mutex
	stopping  bool
	workers   sync.WaitGroup
}

// NewTradingContext creates a trading context and starts its actor. Call
// Start to receive account values and Stop to release it.
func NewTradingContext(broker tradingprovider.Broker, config Config, log *logger.Logger) (*TradingContext, error) {
	if broker == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "broker is nil")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	t := &TradingContext{
		broker:         broker,
		config:         config.withDefaults(),
		log:            log.Named("live"),
		now:            time.Now,
		newID:          uuid.NewString,
		ctx:            ctx,
		cancel:         cancel,
		requests:       make(chan func(*state)),
		ticks:          make(chan types.PriceTick, 256),
		orderUpdates:   make(chan tradingprovider.OrderUpdate, 64),
		accountUpdates: make(chan tradingprovider.AccountUpdate, 8),
		stopped:        make(chan struct{}),
	}

	go t.loop(newState())

	return t, nil
}

func (t *TradingContext) loop(s *state) {
	defer close(t.stopped)

	for {
		select {
		case <-t.ctx.Done():
			return
		case request := <-t.requests:
			request(s)
		case tick := <-t.ticks:
			s.applyTick(tick)
		case update := <-t.accountUpdates:
			s.applyAccount(update)
		case update := <-t.orderUpdates:
			if !s.applyOrderUpdate(update) {
				t.log.Debug("Ignoring update of unknown order", zap.String("client_order_id", update.ClientOrderID))

				continue
			}

			t.log.Info("Order status changed",
				zap.String("client_order_id", update.ClientOrderID),
				zap.String("symbol", update.Symbol),
				zap.String("status", string(update.Status)),
				zap.Float64("fill_price", update.FillPrice),
				zap.Error(update.Err),
			)
		}
	}
}

// do runs fn on the actor and waits for it.
func (t *TradingContext) do(fn func(s *state)) error {
	done := make(chan struct{})

	select {
	case t.requests <- func(s *state) {
		fn(s)
		close(done)
	}:
	case <-t.stopped:
		return errors.New(errors.ErrCodeBrokerUnavailable, "trading context is stopped")
	}

	<-done

	return nil
}

// forward copies a broker stream into the actor until either side ends.
func forward[T any](t *TradingContext, in <-chan T, out chan<- T) {
	t.workersMu.Lock()
	defer t.workersMu.Unlock()

	if t.stopping {
		return
	}

	t.workers.Add(1)

	go func() {
		defer t.workers.Done()

		for {
			select {
			case <-t.ctx.Done():
				return
			case value, ok := <-in:
				if !ok {
					return
				}

				select {
				case out <- value:
				case <-t.ctx.Done():
					return
				}
			}
		}
	}()
}

// Start subscribes to account updates. The first account values are
// applied before Start returns.
func (t *TradingContext) Start() error {
	var err error

	t.startOnce.Do(func() {
		var updates <-chan tradingprovider.AccountUpdate

		updates, err = t.broker.AccountUpdates(t.ctx)
		if err != nil {
			return
		}

		select {
		case first, ok := <-updates:
			if ok {
				err = t.do(func(s *state) { s.applyAccount(first) })
			}
		case <-t.ctx.Done():
			err = t.ctx.Err()

			return
		}

		forward(t, updates, t.accountUpdates)
	})

	return err
}

// Stop ends every broker stream and the actor. It is safe to call twice.
func (t *TradingContext) Stop() {
	t.stopOnce.Do(func() {
		t.workersMu.Lock()
		t.stopping = true
		t.workersMu.Unlock()

		t.cancel()
		<-t.stopped
		t.workers.Wait()
	})
}

// Time implements trading.TradingContext.
func (t *TradingContext) Time() time.Time {
	return t.now()
}

// LastPrice implements trading.TradingContext with the latest ask.
func (t *TradingContext) LastPrice(symbol string) (float64, error) {
	var (
		price   float64
		tracked bool
	)

	if err := t.do(func(s *state) {
		tracked = s.tracks(symbol)
		price = s.quotes[symbol].Ask
	}); err != nil {
		return 0, err
	}

	if !tracked {
		return 0, errors.Newf(errors.ErrCodeInstrumentNotTracked, "%s is not tracked", symbol)
	}

	if price <= 0 {
		return 0, errors.NewPriceUnavailableError(symbol)
	}

	return price, nil
}

// History implements trading.TradingContext. It asks the broker for the
// configured lookback and gives up after the history timeout.
func (t *TradingContext) History(ctx context.Context, symbol string) (types.PriceSeries, error) {
	var tracked bool
	if err := t.do(func(s *state) { tracked = s.tracks(symbol) }); err != nil {
		return types.PriceSeries{}, err
	}

	if !tracked {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeInstrumentNotTracked, "%s is not tracked", symbol)
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.HistoryTimeout)
	defer cancel()

	series, err := t.broker.History(ctx, symbol, t.config.Lookback)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeBrokerUnavailable, err, "history of %s timed out after %s", symbol, t.config.HistoryTimeout)
		}

		return types.PriceSeries{}, err
	}

	return series, nil
}

// Order implements trading.TradingContext. The order is registered as
// submitted and sent to the broker; fills arrive later.
func (t *TradingContext) Order(ctx context.Context, symbol string, buy bool, amount int) (types.Order, error) {
	if amount <= 0 {
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidOrder, "order amount for %s must be positive, got %d", symbol, amount)
	}

	price, err := t.LastPrice(symbol)
	if err != nil {
		return types.Order{}, err
	}

	clientOrderID := t.newID()

	var order types.Order

	if err := t.do(func(s *state) {
		order = types.NewOrder(s.nextOrderID, symbol, types.SignedAmount(buy, amount), price, t.now())
		order.Status = types.OrderStatusSubmitted
		s.nextOrderID++
		s.orders[symbol] = order
		s.pending[clientOrderID] = pendingOrder{symbol: symbol, orderID: order.ID}
	}); err != nil {
		return types.Order{}, err
	}

	if err := t.place(ctx, clientOrderID, symbol, buy, amount); err != nil {
		_ = t.do(func(s *state) {
			delete(s.pending, clientOrderID)

			if current, ok := s.orders[symbol]; ok && current.ID == order.ID {
				delete(s.orders, symbol)
			}
		})

		return types.Order{}, err
	}

	t.log.Info("Order opened",
		zap.Int("id", order.ID),
		zap.String("symbol", symbol),
		zap.Int("amount", order.Amount),
		zap.Float64("price", price),
	)

	return order, nil
}

// Close implements trading.TradingContext. The returned record uses the
// current ask; the symbol's order stays outstanding until the closing order
// is filled.
func (t *TradingContext) Close(ctx context.Context, order types.Order) (types.ClosedOrder, error) {
	price, err := t.LastPrice(order.Symbol)
	if err != nil {
		return types.ClosedOrder{}, err
	}

	clientOrderID := t.newID()

	var (
		open  types.Order
		found bool
	)

	if err := t.do(func(s *state) {
		open, found = s.orders[order.Symbol]
		if !found || open.ID != order.ID || s.closing(order.Symbol) {
			found = false

			return
		}

		s.pending[clientOrderID] = pendingOrder{symbol: open.Symbol, orderID: open.ID, closing: true, closePrice: price}

		submitted := open
		submitted.Status = types.OrderStatusSubmitted
		s.orders[open.Symbol] = submitted
	}); err != nil {
		return types.ClosedOrder{}, err
	}

	if !found {
		return types.ClosedOrder{}, errors.NewNoOrderAvailableError(order.Symbol)
	}

	if err := t.place(ctx, clientOrderID, open.Symbol, open.IsShort(), open.AbsAmount()); err != nil {
		_ = t.do(func(s *state) {
			delete(s.pending, clientOrderID)

			if current, ok := s.orders[open.Symbol]; ok && current.ID == open.ID {
				s.orders[open.Symbol] = open
			}
		})

		return types.ClosedOrder{}, err
	}

	closed := accounting.Close(open, price, t.now(), instrument.Multiplier(open.Symbol))

	t.log.Info("Order closed",
		zap.Int("id", open.ID),
		zap.String("symbol", open.Symbol),
		zap.Int("amount", -open.Amount),
		zap.Float64("price", price),
		zap.Float64("pnl", closed.PnL),
	)

	return closed, nil
}

// place sends the order to the broker and forwards its status updates.
func (t *TradingContext) place(ctx context.Context, clientOrderID, symbol string, buy bool, amount int) error {
	updates, err := t.broker.PlaceOrder(ctx, tradingprovider.OrderRequest{
		ClientOrderID: clientOrderID,
		Symbol:        symbol,
		Buy:           buy,
		Amount:        amount,
	})
	if err != nil {
		return err
	}

	forward(t, updates, t.orderUpdates)

	return nil
}

// LastOrder implements trading.TradingContext.
func (t *TradingContext) LastOrder(symbol string) (types.Order, error) {
	var (
		order types.Order
		ok    bool
	)

	if err := t.do(func(s *state) { order, ok = s.orders[symbol] }); err != nil {
		return types.Order{}, err
	}

	if !ok {
		return types.Order{}, errors.NewNoOrderAvailableError(symbol)
	}

	return order, nil
}

// PnL implements trading.TradingContext: closed P&L plus the unrealized P&L
// of filled orders at the current ask.
func (t *TradingContext) PnL() float64 {
	var pnl float64

	_ = t.do(func(s *state) { pnl = s.pnl() })

	return pnl
}

// AvailableFunds implements trading.TradingContext with the broker's value.
func (t *TradingContext) AvailableFunds() float64 {
	var funds float64

	_ = t.do(func(s *state) { funds = s.availableFunds })

	return funds
}

// NetValue implements trading.TradingContext with the broker's value.
func (t *TradingContext) NetValue() float64 {
	var value float64

	_ = t.do(func(s *state) { value = s.netValue })

	return value
}

// Leverage implements trading.TradingContext.
func (t *TradingContext) Leverage() int {
	return t.config.Leverage
}

// AddSymbol implements trading.TradingContext. It subscribes to the symbol's
// prices for the lifetime of the context. Adding a symbol twice is a no-op.
func (t *TradingContext) AddSymbol(_ context.Context, symbol string) error {
	var tracked bool
	if err := t.do(func(s *state) { tracked = s.tracks(symbol) }); err != nil {
		return err
	}

	if tracked {
		return nil
	}

	ticks, err := t.broker.SubscribePrices(t.ctx, symbol)
	if err != nil {
		return err
	}

	if err := t.do(func(s *state) {
		if !s.tracks(symbol) {
			s.symbols = append(s.symbols, symbol)
		}
	}); err != nil {
		return err
	}

	forward(t, ticks, t.ticks)

	t.log.Info("Symbol added", zap.String("symbol", symbol))

	return nil
}

// RemoveSymbol implements trading.TradingContext.
func (t *TradingContext) RemoveSymbol(symbol string) error {
	var tracked bool
	if err := t.do(func(s *state) {
		tracked = s.tracks(symbol)
		s.removeSymbol(symbol)
	}); err != nil {
		return err
	}

	if !tracked {
		return errors.Newf(errors.ErrCodeInstrumentNotTracked, "%s is not tracked", symbol)
	}

	return t.broker.UnsubscribePrices(symbol)
}

// Symbols implements trading.TradingContext.
func (t *TradingContext) Symbols() []string {
	var symbols []string

	_ = t.do(func(s *state) { symbols = slices.Clone(s.symbols) })

	return symbols
}

// ChangeBySymbol implements trading.TradingContext. The reference is the
// previous close sent by the broker.
func (t *TradingContext) ChangeBySymbol(symbol string) (float64, error) {
	price, err := t.LastPrice(symbol)
	if err != nil {
		return 0, err
	}

	var reference float64

	if err := t.do(func(s *state) { reference = s.quotes[symbol].Close }); err != nil {
		return 0, err
	}

	if reference <= 0 {
		return 0, errors.NewPriceUnavailableError(symbol)
	}

	return accounting.PercentChange(reference, price)
}

// Snapshot returns a consistent copy of prices, orders and account values.
func (t *TradingContext) Snapshot() (Snapshot, error) {
	var snapshot Snapshot

	err := t.do(func(s *state) { snapshot = s.snapshot(t.now(), t.config.Leverage) })

	return snapshot, err
}

var _ trading.TradingContext = (*TradingContext)(nil)
