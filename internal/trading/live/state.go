package live

import (
	"slices"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/accounting"
	"github.com/rxtech-lab/argo-pairs/internal/instrument"
	tradingprovider "github.com/rxtech-lab/argo-pairs/internal/trading/provider"
	"github.com/rxtech-lab/argo-pairs/internal/types"
)

// Quote is the latest price of each tick type of a symbol. Zero means the
// broker has not sent that tick type yet.
type Quote struct {
	Ask   float64   `json:"ask"`
	Bid   float64   `json:"bid"`
	Last  float64   `json:"last"`
	Close float64   `json:"close"`
	Time  time.Time `json:"time"`
}

// Snapshot is a consistent copy of the trading context state.
type Snapshot struct {
	Time         time.Time           `json:"time"`
	Symbols      []string            `json:"symbols"`
	Quotes       map[string]Quote    `json:"quotes"`
	Orders       []types.Order       `json:"orders"`
	ClosedOrders []types.ClosedOrder `json:"closed_orders"`
	Account      types.AccountInfo   `json:"account"`
	PnL          float64             `json:"pnl"`
}

type pendingOrder struct {
	symbol  string
	orderID int
	closing bool
	// closePrice is the price the close was requested at.
	closePrice float64
}

// state is owned by the actor goroutine and never shared.
type state struct {
	symbols []string
	quotes  map[string]Quote

	orders  map[string]types.Order
	pending map[string]pendingOrder
	closed  []types.ClosedOrder

	closedPnL      float64
	netValue       float64
	availableFunds float64
	nextOrderID    int
}

func newState() *state {
	return &state{
		quotes:      make(map[string]Quote),
		orders:      make(map[string]types.Order),
		pending:     make(map[string]pendingOrder),
		nextOrderID: 1,
	}
}

func (s *state) tracks(symbol string) bool {
	return slices.Contains(s.symbols, symbol)
}

// applyTick stores the tick price. Ticks of untracked symbols are dropped.
func (s *state) applyTick(tick types.PriceTick) {
	if !s.tracks(tick.Symbol) || tick.Price <= 0 {
		return
	}

	quote := s.quotes[tick.Symbol]

	switch tick.Type {
	case types.TickTypeAsk:
		quote.Ask = tick.Price
	case types.TickTypeBid:
		quote.Bid = tick.Price
	case types.TickTypeLast:
		quote.Last = tick.Price
	case types.TickTypeClose:
		quote.Close = tick.Price
	}

	quote.Time = tick.Time
	s.quotes[tick.Symbol] = quote
}

// closing reports whether a closing order of symbol is in flight.
func (s *state) closing(symbol string) bool {
	for _, pending := range s.pending {
		if pending.symbol == symbol && pending.closing {
			return true
		}
	}

	return false
}

func (s *state) applyAccount(update tradingprovider.AccountUpdate) {
	s.netValue = update.NetValue
	s.availableFunds = update.AvailableFunds
}

// applyOrderUpdate moves the order of the update to its new status. It
// returns false when the update belongs to no pending order.
func (s *state) applyOrderUpdate(update tradingprovider.OrderUpdate) bool {
	pending, ok := s.pending[update.ClientOrderID]
	if !ok {
		return false
	}

	order, ok := s.orders[pending.symbol]
	if !ok || order.ID != pending.orderID {
		delete(s.pending, update.ClientOrderID)

		return false
	}

	switch update.Status {
	case types.OrderStatusFilled:
		delete(s.pending, update.ClientOrderID)

		if pending.closing {
			s.recordClose(order, pending.closePrice, update)
			delete(s.orders, pending.symbol)

			return true
		}

		order.Status = types.OrderStatusFilled
		if update.FillPrice > 0 {
			order.OpenPrice = update.FillPrice
		}
	case types.OrderStatusCancelled:
		delete(s.pending, update.ClientOrderID)

		if !pending.closing {
			// the position was never opened
			delete(s.orders, pending.symbol)

			return true
		}

		// the position is still open
		order.Status = types.OrderStatusFilled
	default:
		order.Status = update.Status
	}

	s.orders[pending.symbol] = order

	return true
}

func (s *state) recordClose(order types.Order, requested float64, update tradingprovider.OrderUpdate) {
	price := update.FillPrice
	if price <= 0 {
		price = requested
	}

	closed := accounting.Close(order, price, update.Time, instrument.Multiplier(order.Symbol))
	s.closed = append(s.closed, closed)
	s.closedPnL += closed.PnL
}

func (s *state) pnl() float64 {
	pnl := s.closedPnL

	for _, order := range s.orders {
		if order.Status != types.OrderStatusFilled {
			continue
		}

		ask := s.quotes[order.Symbol].Ask
		if ask <= 0 {
			continue
		}

		pnl += accounting.UnrealizedPnL(order, ask, instrument.Multiplier(order.Symbol))
	}

	return pnl
}

func (s *state) removeSymbol(symbol string) {
	s.symbols = slices.DeleteFunc(s.symbols, func(tracked string) bool { return tracked == symbol })
	delete(s.quotes, symbol)
}

func (s *state) snapshot(now time.Time, leverage int) Snapshot {
	quotes := make(map[string]Quote, len(s.quotes))
	for symbol, quote := range s.quotes {
		quotes[symbol] = quote
	}

	orders := make([]types.Order, 0, len(s.orders))
	for _, symbol := range s.symbols {
		if order, ok := s.orders[symbol]; ok {
			orders = append(orders, order)
		}
	}

	return Snapshot{
		Time:         now,
		Symbols:      slices.Clone(s.symbols),
		Quotes:       quotes,
		Orders:       orders,
		ClosedOrders: slices.Clone(s.closed),
		Account: types.AccountInfo{
			NetValue:       s.netValue,
			AvailableFunds: s.availableFunds,
			Leverage:       leverage,
		},
		PnL: s.pnl(),
	}
}
