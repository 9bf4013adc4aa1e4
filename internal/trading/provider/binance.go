package tradingprovider

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	marketprovider "github.com/rxtech-lab/argo-pairs/pkg/marketdata/provider"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service interfaces for mocking the Binance API

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	NewClientOrderID(clientOrderID string) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// GetOrderService interface for querying a single order.
type GetOrderService interface {
	Symbol(symbol string) GetOrderService
	OrderID(orderID int64) GetOrderService
	Do(ctx context.Context) (*binance.Order, error)
}

// GetAccountService interface for getting account info.
type GetAccountService interface {
	Do(ctx context.Context) (*binance.Account, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewCreateOrderService() CreateOrderService
	NewGetOrderService() GetOrderService
	NewGetAccountService() GetAccountService
}

// BookTickerStreamer abstracts the book ticker websocket.
type BookTickerStreamer interface {
	WsBookTickerServe(symbol string, handler binance.WsBookTickerHandler, errHandler binance.ErrHandler) (doneC, stopC chan struct{}, err error)
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceClient) NewGetOrderService() GetOrderService {
	return &realGetOrderService{service: r.client.NewGetOrderService()}
}

func (r *realBinanceClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) NewClientOrderID(clientOrderID string) CreateOrderService {
	s.service = s.service.NewClientOrderID(clientOrderID)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realGetOrderService struct {
	service *binance.GetOrderService
}

func (s *realGetOrderService) Symbol(symbol string) GetOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realGetOrderService) OrderID(orderID int64) GetOrderService {
	s.service = s.service.OrderID(orderID)

	return s
}

func (s *realGetOrderService) Do(ctx context.Context) (*binance.Order, error) {
	return s.service.Do(ctx)
}

type realGetAccountService struct {
	service *binance.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.service.Do(ctx)
}

type realBookTickerStreamer struct{}

func (realBookTickerStreamer) WsBookTickerServe(symbol string, handler binance.WsBookTickerHandler, errHandler binance.ErrHandler) (chan struct{}, chan struct{}, error) {
	return binance.WsBookTickerServe(symbol, handler, errHandler)
}

type subscription struct {
	once  sync.Once
	quit  chan struct{}
	stopC chan struct{}
}

func (s *subscription) stop() {
	s.once.Do(func() {
		close(s.quit)
		close(s.stopC)
	})
}

// BinanceBroker implements Broker on the Binance spot API. Prices come from
// the book ticker stream, history and the previous close from klines, order
// status and account values from polling.
type BinanceBroker struct {
	client   BinanceClient
	klines   marketprovider.KlinesClient
	history  *marketprovider.BinanceClient
	streamer BookTickerStreamer
	config   BinanceProviderConfig
	log      *logger.Logger
	now      func() time.Time

	mu            sync.Mutex
	subscriptions map[string]*subscription
}

// NewBinanceBroker creates a broker for the configured account.
// If config.BaseURL is set, it takes precedence over config.Testnet.
func NewBinanceBroker(config BinanceProviderConfig, log *logger.Logger) (*BinanceBroker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Testnet {
		binance.UseTestnet = true
	}

	if config.StreamBaseURL != "" {
		if config.Testnet {
			binance.BaseWsTestnetURL = config.StreamBaseURL
		} else {
			binance.BaseWsMainURL = config.StreamBaseURL
		}
	}

	client := binance.NewClient(config.ApiKey, config.SecretKey)
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return newBinanceBrokerWithClients(
		&realBinanceClient{client: client},
		marketprovider.NewKlinesClient(client),
		realBookTickerStreamer{},
		config,
		log,
	)
}

func newBinanceBrokerWithClients(client BinanceClient, klines marketprovider.KlinesClient, streamer BookTickerStreamer, config BinanceProviderConfig, log *logger.Logger) (*BinanceBroker, error) {
	history, err := marketprovider.NewBinanceClientWithKlines(klines, marketprovider.MinuteBar, nil)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BinanceBroker{
		client:        client,
		klines:        klines,
		history:       history,
		streamer:      streamer,
		config:        config.withDefaults(),
		log:           log.Named("binance"),
		now:           time.Now,
		subscriptions: make(map[string]*subscription),
	}, nil
}

// SubscribePrices implements Broker. The first tick is the previous daily
// close when Binance has one, followed by bid and ask updates.
func (b *BinanceBroker) SubscribePrices(ctx context.Context, symbol string) (<-chan types.PriceTick, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscriptions[symbol]; ok {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "already subscribed to %s", symbol)
	}

	out := make(chan types.PriceTick, 64)

	if tick, err := b.previousClose(ctx, symbol); err != nil {
		b.log.Warn("Previous close is not available", zap.String("symbol", symbol), zap.Error(err))
	} else {
		out <- tick
	}

	quit := make(chan struct{})

	handler := func(event *binance.WsBookTickerEvent) {
		for _, tick := range b.bookTicks(event) {
			select {
			case out <- tick:
			case <-quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}

	errHandler := func(err error) {
		b.log.Warn("Book ticker stream error", zap.String("symbol", symbol), zap.Error(err))
	}

	doneC, stopC, err := b.streamer.WsBookTickerServe(symbol, handler, errHandler)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeBrokerUnavailable, err, "failed to subscribe to %s", symbol)
	}

	sub := &subscription{quit: quit, stopC: stopC}
	b.subscriptions[symbol] = sub

	go func() {
		select {
		case <-ctx.Done():
			sub.stop()
		case <-quit:
		case <-doneC:
		}

		<-doneC
		close(out)

		b.mu.Lock()
		if b.subscriptions[symbol] == sub {
			delete(b.subscriptions, symbol)
		}
		b.mu.Unlock()
	}()

	return out, nil
}

// UnsubscribePrices implements Broker.
func (b *BinanceBroker) UnsubscribePrices(symbol string) error {
	b.mu.Lock()
	sub, ok := b.subscriptions[symbol]
	b.mu.Unlock()

	if !ok {
		return errors.Newf(errors.ErrCodeInvalidParameter, "not subscribed to %s", symbol)
	}

	sub.stop()

	return nil
}

func (b *BinanceBroker) bookTicks(event *binance.WsBookTickerEvent) []types.PriceTick {
	at := b.now().UTC()
	ticks := make([]types.PriceTick, 0, 2)

	if bid, err := strconv.ParseFloat(event.BestBidPrice, 64); err == nil && bid > 0 {
		ticks = append(ticks, types.PriceTick{Symbol: event.Symbol, Type: types.TickTypeBid, Price: bid, Time: at})
	}

	if ask, err := strconv.ParseFloat(event.BestAskPrice, 64); err == nil && ask > 0 {
		ticks = append(ticks, types.PriceTick{Symbol: event.Symbol, Type: types.TickTypeAsk, Price: ask, Time: at})
	}

	return ticks
}

// previousClose reads the close of the last finished daily kline.
func (b *BinanceBroker) previousClose(ctx context.Context, symbol string) (types.PriceTick, error) {
	klines, err := b.klines.NewKlinesService().
		Symbol(symbol).
		Interval("1d").
		Limit(2).
		Do(ctx)
	if err != nil {
		return types.PriceTick{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch daily klines", err)
	}

	if len(klines) < 2 {
		return types.PriceTick{}, errors.Newf(errors.ErrCodeDataNotFound, "no previous daily kline for %s", symbol)
	}

	previous := klines[len(klines)-2]

	price, err := strconv.ParseFloat(previous.Close, 64)
	if err != nil {
		return types.PriceTick{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid daily close", err)
	}

	return types.PriceTick{
		Symbol: symbol,
		Type:   types.TickTypeClose,
		Price:  price,
		Time:   time.UnixMilli(previous.CloseTime).UTC(),
	}, nil
}

// History implements Broker with minute klines.
func (b *BinanceBroker) History(ctx context.Context, symbol string, duration time.Duration) (types.PriceSeries, error) {
	end := b.now().UTC()

	return b.history.History(ctx, symbol, end.Add(-duration), end)
}

// PlaceOrder implements Broker with a market order.
func (b *BinanceBroker) PlaceOrder(ctx context.Context, request OrderRequest) (<-chan OrderUpdate, error) {
	if request.Amount <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidOrder, "order amount must be positive, got %d", request.Amount)
	}

	side := binance.SideTypeSell
	if request.Buy {
		side = binance.SideTypeBuy
	}

	response, err := b.client.NewCreateOrderService().
		Symbol(request.Symbol).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.Itoa(request.Amount)).
		NewClientOrderID(request.ClientOrderID).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOrderFailed, "failed to place order on Binance", err)
	}

	b.log.Info("Order placed",
		zap.String("client_order_id", request.ClientOrderID),
		zap.String("symbol", request.Symbol),
		zap.String("side", string(side)),
		zap.Int("amount", request.Amount),
		zap.Int64("order_id", response.OrderID),
	)

	updates := make(chan OrderUpdate, 4)
	first := b.orderUpdate(request, response.Status, response.ExecutedQuantity, response.CummulativeQuoteQuantity)
	updates <- first

	if isTerminal(first.Status) {
		close(updates)

		return updates, nil
	}

	go b.pollOrder(ctx, request, response.OrderID, updates)

	return updates, nil
}

func (b *BinanceBroker) pollOrder(ctx context.Context, request OrderRequest, orderID int64, updates chan<- OrderUpdate) {
	defer close(updates)

	ticker := time.NewTicker(b.config.OrderPollInterval)
	defer ticker.Stop()

	last := types.OrderStatusSubmitted

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		order, err := b.client.NewGetOrderService().
			Symbol(request.Symbol).
			OrderID(orderID).
			Do(ctx)
		if err != nil {
			b.log.Warn("Failed to poll order status",
				zap.String("client_order_id", request.ClientOrderID),
				zap.Error(err),
			)

			continue
		}

		update := b.orderUpdate(request, order.Status, order.ExecutedQuantity, order.CummulativeQuoteQuantity)
		if update.Status == last && !isTerminal(update.Status) {
			continue
		}

		last = update.Status

		select {
		case updates <- update:
		case <-ctx.Done():
			return
		}

		if isTerminal(update.Status) {
			return
		}
	}
}

func (b *BinanceBroker) orderUpdate(request OrderRequest, status binance.OrderStatusType, executed, quote string) OrderUpdate {
	update := OrderUpdate{
		ClientOrderID: request.ClientOrderID,
		Symbol:        request.Symbol,
		Status:        mapBinanceOrderStatus(status),
		FillPrice:     0,
		Time:          b.now().UTC(),
		Err:           nil,
	}

	if update.Status == types.OrderStatusFilled {
		price, err := averagePrice(executed, quote)
		if err != nil {
			update.Err = err
		}

		update.FillPrice = price
	}

	if status == binance.OrderStatusTypeRejected || status == binance.OrderStatusTypeExpired {
		update.Err = errors.Newf(errors.ErrCodeOrderFailed, "order %s was %s", request.ClientOrderID, status)
	}

	return update
}

// AccountUpdates implements Broker by polling the account. The first update
// is fetched before returning.
func (b *BinanceBroker) AccountUpdates(ctx context.Context) (<-chan AccountUpdate, error) {
	first, err := b.accountUpdate(ctx)
	if err != nil {
		return nil, err
	}

	updates := make(chan AccountUpdate, 1)
	updates <- first

	go func() {
		defer close(updates)

		ticker := time.NewTicker(b.config.AccountPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			update, err := b.accountUpdate(ctx)
			if err != nil {
				b.log.Warn("Failed to poll account", zap.Error(err))

				continue
			}

			select {
			case updates <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}

// accountUpdate sums the quote asset balances. Free balance is what is
// available for new orders.
func (b *BinanceBroker) accountUpdate(ctx context.Context) (AccountUpdate, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return AccountUpdate{}, errors.Wrap(errors.ErrCodeBrokerUnavailable, "failed to get account info from Binance", err)
	}

	netValue := decimal.Zero
	available := decimal.Zero

	for _, balance := range account.Balances {
		if !slices.Contains(b.config.QuoteAssets, balance.Asset) {
			continue
		}

		free, _ := decimal.NewFromString(balance.Free)
		locked, _ := decimal.NewFromString(balance.Locked)

		netValue = netValue.Add(free).Add(locked)
		available = available.Add(free)
	}

	return AccountUpdate{
		NetValue:       netValue.InexactFloat64(),
		AvailableFunds: available.InexactFloat64(),
		Time:           b.now().UTC(),
	}, nil
}

// mapBinanceOrderStatus maps Binance order status to our OrderStatus type.
func mapBinanceOrderStatus(status binance.OrderStatusType) types.OrderStatus {
	switch status {
	case binance.OrderStatusTypeNew, binance.OrderStatusTypePartiallyFilled:
		return types.OrderStatusSubmitted
	case binance.OrderStatusTypeFilled:
		return types.OrderStatusFilled
	default:
		return types.OrderStatusCancelled
	}
}

func isTerminal(status types.OrderStatus) bool {
	return status == types.OrderStatusFilled || status == types.OrderStatusCancelled
}

// averagePrice is the quote quantity divided by the executed quantity.
func averagePrice(executed, quote string) (float64, error) {
	quantity, err := decimal.NewFromString(executed)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid executed quantity", err)
	}

	total, err := decimal.NewFromString(quote)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid quote quantity", err)
	}

	if quantity.IsZero() {
		return 0, errors.New(errors.ErrCodeOrderFailed, "filled order has no executed quantity")
	}

	return total.Div(quantity).InexactFloat64(), nil
}

var _ Broker = (*BinanceBroker)(nil)
