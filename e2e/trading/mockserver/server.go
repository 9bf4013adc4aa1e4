// Package mockserver provides a mock Binance server for testing.
// It implements the REST endpoints and the book ticker stream the live broker uses.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusRejected OrderStatus = "REJECTED"
)

// OrderSide represents the side of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// QuoteAsset is the balance orders are settled in.
const QuoteAsset = "USDT"

// Order represents a market order.
type Order struct {
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Side          OrderSide
	Quantity      float64
	Status        OrderStatus
	ExecutedQty   float64
	CummulateQty  float64
	CreatedAt     time.Time
	// pendingPolls counts the status queries left before a NEW order fills.
	pendingPolls int
}

// Quote is the best bid and ask of a symbol.
type Quote struct {
	Bid float64
	Ask float64
}

// ServerConfig holds configuration for the mock server.
type ServerConfig struct {
	// InitialBalances maps asset to initial free balance.
	InitialBalances map[string]float64
	// PreviousCloses maps symbol to the close of the previous daily kline.
	PreviousCloses map[string]float64
	// PendingPolls keeps new orders NEW for that many status queries.
	PendingPolls int
	// RejectSymbols lists symbols whose orders are rejected.
	RejectSymbols []string
}

// MockBinanceServer provides a mock Binance server for testing.
type MockBinanceServer struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	config     ServerConfig
	balances   map[string]float64
	orders     map[int64]*Order
	orderIDSeq int64
	quotes     map[string]Quote

	wsMu          sync.Mutex
	subscribers   map[string]map[*websocket.Conn]struct{}
	bookUpdateSeq int64
}

// NewMockBinanceServer creates a new mock Binance server.
func NewMockBinanceServer(config ServerConfig) *MockBinanceServer {
	server := &MockBinanceServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		config:      config,
		balances:    make(map[string]float64),
		orders:      make(map[int64]*Order),
		orderIDSeq:  1000,
		quotes:      make(map[string]Quote),
		subscribers: make(map[string]map[*websocket.Conn]struct{}),
	}

	for asset, amount := range config.InitialBalances {
		server.balances[asset] = amount
	}

	return server
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockBinanceServer) Start(address string) error {
	if address == "" {
		address = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	router := mux.NewRouter()

	router.HandleFunc("/api/v3/klines", s.handleKlines).Methods(http.MethodGet)
	router.HandleFunc("/api/v3/account", s.handleAccount).Methods(http.MethodGet)
	router.HandleFunc("/api/v3/order", s.handleCreateOrder).Methods(http.MethodPost)
	router.HandleFunc("/api/v3/order", s.handleGetOrder).Methods(http.MethodGet)
	router.HandleFunc("/ws/{stream}", s.handleWebSocket)

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	return nil
}

// Stop closes every stream and shuts the server down.
func (s *MockBinanceServer) Stop() error {
	s.wsMu.Lock()
	for _, conns := range s.subscribers {
		for conn := range conns {
			conn.Close()
		}
	}

	s.subscribers = make(map[string]map[*websocket.Conn]struct{})
	s.wsMu.Unlock()

	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// BaseURL returns the REST base URL.
func (s *MockBinanceServer) BaseURL() string {
	return "http://" + s.listener.Addr().String()
}

// WebSocketURL returns the stream base URL.
func (s *MockBinanceServer) WebSocketURL() string {
	return "ws://" + s.listener.Addr().String() + "/ws"
}

// SetQuote stores the best bid and ask of symbol and pushes a book ticker
// event to its subscribers.
func (s *MockBinanceServer) SetQuote(symbol string, bid, ask float64) {
	s.mu.Lock()
	s.quotes[symbol] = Quote{Bid: bid, Ask: ask}
	s.mu.Unlock()

	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	s.bookUpdateSeq++

	event := map[string]interface{}{
		"u": s.bookUpdateSeq,
		"s": symbol,
		"b": formatFloat(bid),
		"B": "1.00000000",
		"a": formatFloat(ask),
		"A": "1.00000000",
	}

	for conn := range s.subscribers[symbol] {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(s.subscribers[symbol], conn)
		}
	}
}

// Subscribers returns the number of open book ticker streams of symbol.
func (s *MockBinanceServer) Subscribers(symbol string) int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	return len(s.subscribers[symbol])
}

// Balance returns the free balance of asset.
func (s *MockBinanceServer) Balance(asset string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[asset]
}

// Orders returns every order in creation order.
func (s *MockBinanceServer) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, *order)
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID < orders[j].OrderID })

	return orders
}

// REST Handlers

// handleKlines handles GET /api/v3/klines. Daily klines are the previous
// close followed by the current ask. Other intervals are a gentle wave
// around the current ask between startTime and endTime.
func (s *MockBinanceServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	symbol := query.Get("symbol")
	interval := parseInterval(query.Get("interval"))

	if symbol == "" || interval == 0 {
		writeError(w, http.StatusBadRequest, -1102, "Mandatory parameter was not sent")

		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	s.mu.RLock()
	price := s.quotes[symbol].Ask
	previousClose, hasClose := s.config.PreviousCloses[symbol]
	s.mu.RUnlock()

	if price == 0 {
		price = 100
	}

	var klines [][]interface{}

	if interval == 24*time.Hour {
		today := time.Now().UTC().Truncate(interval)
		if hasClose {
			klines = append(klines, kline(today.Add(-interval), interval, previousClose))
		}

		klines = append(klines, kline(today, interval, price))
	} else {
		end := time.Now()
		if ms, err := strconv.ParseInt(query.Get("endTime"), 10, 64); err == nil {
			end = time.UnixMilli(ms)
		}

		start := end.Add(-time.Duration(limit) * interval)
		if ms, err := strconv.ParseInt(query.Get("startTime"), 10, 64); err == nil {
			start = time.UnixMilli(ms)
		}

		for i, open := 0, start.Truncate(interval); open.Before(end) && i < limit; i, open = i+1, open.Add(interval) {
			klines = append(klines, kline(open, interval, price*(1+0.01*math.Sin(float64(open.Unix()/int64(interval.Seconds()))/10))))
		}
	}

	writeJSON(w, klines)
}

// handleAccount handles GET /api/v3/account
func (s *MockBinanceServer) handleAccount(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balances := make([]map[string]string, 0, len(s.balances))
	for asset, free := range s.balances {
		balances = append(balances, map[string]string{
			"asset":  asset,
			"free":   formatFloat(free),
			"locked": "0.00000000",
		})
	}

	writeJSON(w, map[string]interface{}{
		"makerCommission": 10,
		"takerCommission": 10,
		"canTrade":        true,
		"canWithdraw":     true,
		"canDeposit":      true,
		"updateTime":      time.Now().UnixMilli(),
		"accountType":     "SPOT",
		"balances":        balances,
	})
}

// handleCreateOrder handles POST /api/v3/order. Market orders fill at the
// ask when buying and at the bid when selling.
func (s *MockBinanceServer) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, -1102, "Failed to parse form")

		return
	}

	symbol := r.FormValue("symbol")
	side := OrderSide(r.FormValue("side"))

	quantity, err := strconv.ParseFloat(r.FormValue("quantity"), 64)
	if symbol == "" || side == "" || err != nil || quantity <= 0 {
		writeError(w, http.StatusBadRequest, -1102, "Mandatory parameter was not sent or invalid")

		return
	}

	if r.FormValue("type") != "MARKET" {
		writeError(w, http.StatusBadRequest, -1116, "Invalid orderType")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[symbol]; !ok {
		writeError(w, http.StatusBadRequest, -1121, "Invalid symbol")

		return
	}

	s.orderIDSeq++
	order := &Order{
		OrderID:       s.orderIDSeq,
		ClientOrderID: r.FormValue("newClientOrderId"),
		Symbol:        symbol,
		Side:          side,
		Quantity:      quantity,
		Status:        OrderStatusNew,
		CreatedAt:     time.Now(),
		pendingPolls:  s.config.PendingPolls,
	}
	s.orders[order.OrderID] = order

	switch {
	case containsString(s.config.RejectSymbols, symbol):
		order.Status = OrderStatusRejected
	case order.pendingPolls == 0:
		s.fill(order)
	}

	writeJSON(w, map[string]interface{}{
		"symbol":              symbol,
		"orderId":             order.OrderID,
		"orderListId":         -1,
		"clientOrderId":       order.ClientOrderID,
		"transactTime":        order.CreatedAt.UnixMilli(),
		"price":               "0.00000000",
		"origQty":             formatFloat(quantity),
		"executedQty":         formatFloat(order.ExecutedQty),
		"cummulativeQuoteQty": formatFloat(order.CummulateQty),
		"status":              string(order.Status),
		"timeInForce":         "GTC",
		"type":                "MARKET",
		"side":                string(side),
	})
}

// handleGetOrder handles GET /api/v3/order
func (s *MockBinanceServer) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.URL.Query().Get("orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, -1102, "Mandatory parameter 'orderId' was not sent")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		writeError(w, http.StatusBadRequest, -2013, "Order does not exist.")

		return
	}

	if order.Status == OrderStatusNew {
		order.pendingPolls--
		if order.pendingPolls <= 0 {
			s.fill(order)
		}
	}

	writeJSON(w, map[string]interface{}{
		"symbol":              order.Symbol,
		"orderId":             order.OrderID,
		"orderListId":         -1,
		"clientOrderId":       order.ClientOrderID,
		"price":               "0.00000000",
		"origQty":             formatFloat(order.Quantity),
		"executedQty":         formatFloat(order.ExecutedQty),
		"cummulativeQuoteQty": formatFloat(order.CummulateQty),
		"status":              string(order.Status),
		"timeInForce":         "GTC",
		"type":                "MARKET",
		"side":                string(order.Side),
		"time":                order.CreatedAt.UnixMilli(),
		"updateTime":          time.Now().UnixMilli(),
		"isWorking":           true,
	})
}

// fill executes order at the current quote and settles the quote balance.
// The caller holds s.mu.
func (s *MockBinanceServer) fill(order *Order) {
	quote := s.quotes[order.Symbol]

	price := quote.Ask
	if order.Side == OrderSideSell {
		price = quote.Bid
	}

	cost := price * order.Quantity

	order.Status = OrderStatusFilled
	order.ExecutedQty = order.Quantity
	order.CummulateQty = cost

	if order.Side == OrderSideBuy {
		s.balances[QuoteAsset] -= cost
	} else {
		s.balances[QuoteAsset] += cost
	}
}

// WebSocket Handler

// handleWebSocket serves {symbol}@bookTicker streams.
func (s *MockBinanceServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	stream := mux.Vars(r)["stream"]

	name, kind, ok := strings.Cut(stream, "@")
	if !ok || kind != "bookTicker" {
		http.Error(w, "Invalid WebSocket path", http.StatusBadRequest)

		return
	}

	symbol := strings.ToUpper(name)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	if s.subscribers[symbol] == nil {
		s.subscribers[symbol] = make(map[*websocket.Conn]struct{})
	}

	s.subscribers[symbol][conn] = struct{}{}
	s.wsMu.Unlock()

	defer func() {
		s.wsMu.Lock()
		delete(s.subscribers[symbol], conn)
		s.wsMu.Unlock()
		conn.Close()
	}()

	// Clients only send control frames; reading keeps them flowing until the
	// client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func kline(open time.Time, interval time.Duration, price float64) []interface{} {
	p := formatFloat(price)

	return []interface{}{
		open.UnixMilli(),
		p, p, p, p,
		"1.00000000",
		open.Add(interval).UnixMilli() - 1,
		p,
		1,
		"0",
		"0",
		"0",
	}
}

// parseInterval parses a Binance interval string to a duration.
func parseInterval(interval string) time.Duration {
	if len(interval) < 2 {
		return 0
	}

	value, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil {
		return 0
	}

	switch interval[len(interval)-1] {
	case 'm':
		return time.Duration(value) * time.Minute
	case 'h':
		return time.Duration(value) * time.Hour
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour
	default:
		return 0
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 8, 64)
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a Binance style API error.
func writeError(w http.ResponseWriter, status int, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "msg": message})
}
