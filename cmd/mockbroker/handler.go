package main

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/InfinixInfotech/Trading-App/internal/marketdata"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// orderRecord is one accepted order.
type orderRecord struct {
	OrderID         string  `json:"order_id"`
	InstrumentToken string  `json:"instrument_token"`
	TradingSymbol   string  `json:"trading_symbol"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	TriggerPrice    float64 `json:"trigger_price"`
	OrderType       string  `json:"order_type"`
	TransactionType string  `json:"transaction_type"`
	Product         string  `json:"product"`
	Validity        string  `json:"validity"`
	Tag             string  `json:"tag"`
	Status          string  `json:"status"`
	PlacedAt        string  `json:"placed_at"`
}

// Handler holds the mock broker's in-memory state.
type Handler struct {
	quotes    *marketdata.SyntheticSource
	validator *Validator
	logger    *slog.Logger

	mu     sync.Mutex
	tokens map[string]string // access token -> user id
	orders map[string]*orderRecord
}

// NewHandler creates the mock broker.
func NewHandler(quotes *marketdata.SyntheticSource, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		quotes:    quotes,
		validator: NewValidator(),
		logger:    logger,
		tokens:    make(map[string]string),
		orders:    make(map[string]*orderRecord),
	}
}

// StartServer runs the HTTP server.
func (h *Handler) StartServer(addr string) error {
	return h.SetupRoutes().Run(addr)
}

// SetupRoutes configures all routes.
func (h *Handler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(gin.Recovery())

	router.POST("/login/authorization/token", h.ExchangeToken)
	router.GET("/health", h.HealthCheck)

	authed := router.Group("/", h.requireToken)
	authed.GET("/user/profile", h.GetProfile)
	authed.POST("/order/place", h.PlaceOrder)
	authed.DELETE("/order/cancel", h.CancelOrder)
	authed.GET("/market-quote/ltp", h.GetLTP)
	authed.GET("/market-quote/quotes", h.GetFullQuote)

	return router
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// ok wraps data in the broker's success envelope.
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// fail sends the broker's error envelope.
func fail(c *gin.Context, code int, errorCode, message string) {
	c.JSON(code, gin.H{
		"status": "error",
		"errors": []gin.H{{"errorCode": errorCode, "message": message}},
	})
}

// requireToken rejects requests without a known Bearer token.
func (h *Handler) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		fail(c, http.StatusUnauthorized, "UDAPI100050", "Invalid token used to access API")
		c.Abort()
		return
	}
	h.mu.Lock()
	_, known := h.tokens[token]
	h.mu.Unlock()
	if !known {
		fail(c, http.StatusUnauthorized, "UDAPI100050", "Invalid token used to access API")
		c.Abort()
		return
	}
	c.Next()
}

// ExchangeToken implements the OAuth code-for-token exchange. Any code
// is accepted.
func (h *Handler) ExchangeToken(c *gin.Context) {
	code := c.PostForm("code")
	if code == "" {
		fail(c, http.StatusBadRequest, "UDAPI100057", "code is required")
		return
	}

	token := uuid.New().String()
	userID := "MOCK1234"
	h.mu.Lock()
	h.tokens[token] = userID
	h.mu.Unlock()

	h.logger.Info("token issued", "user_id", userID)
	ok(c, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      userID,
		"user_name":    "Mock Trader",
		"email":        "mock@example.com",
		"broker":       "MOCK",
	})
}

// GetProfile returns a fixed profile for the session user.
func (h *Handler) GetProfile(c *gin.Context) {
	ok(c, gin.H{
		"user_id":   "MOCK1234",
		"user_name": "Mock Trader",
		"email":     "mock@example.com",
		"broker":    "MOCK",
		"is_active": true,
		"exchanges": []string{"NSE", "BSE"},
		"products":  []string{"I", "D"},
	})
}

// PlaceOrder validates and records an order.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req orderRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "UDAPI100038", "invalid JSON body")
		return
	}
	if err := h.validator.ValidateOrder(&req); err != nil {
		fail(c, http.StatusBadRequest, "UDAPI100038", err.Error())
		return
	}

	req.OrderID = uuid.New().String()
	req.Status = "open"
	req.PlacedAt = time.Now().UTC().Format(time.RFC3339)

	h.mu.Lock()
	h.orders[req.OrderID] = &req
	h.mu.Unlock()

	h.logger.Info("order placed",
		"order_id", req.OrderID,
		"symbol", req.TradingSymbol,
		"side", req.TransactionType,
		"type", req.OrderType,
		"qty", req.Quantity,
	)
	ok(c, gin.H{"order_id": req.OrderID})
}

// CancelOrder cancels a previously placed order.
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		fail(c, http.StatusBadRequest, "UDAPI100010", "order_id is required")
		return
	}

	h.mu.Lock()
	order, found := h.orders[orderID]
	if found {
		order.Status = "cancelled"
	}
	h.mu.Unlock()

	if !found {
		fail(c, http.StatusBadRequest, "UDAPI100010", "order not found: "+orderID)
		return
	}
	h.logger.Info("order cancelled", "order_id", orderID)
	ok(c, gin.H{"order_id": orderID})
}

// GetLTP serves the last traded price from the synthetic walk. The
// response is keyed by "EXCHANGE:SYMBOL" like the real API.
func (h *Handler) GetLTP(c *gin.Context) {
	key, symbol, err := h.validator.ValidateInstrumentKey(c.Query("instrument_key"))
	if err != nil {
		fail(c, http.StatusBadRequest, "UDAPI100011", err.Error())
		return
	}

	q, err := h.quotes.FetchQuote(c.Request.Context(), symbol)
	if err != nil {
		fail(c, http.StatusInternalServerError, "UDAPI100500", err.Error())
		return
	}
	ok(c, gin.H{
		"NSE_EQ:" + symbol: gin.H{
			"last_price":       q.Price,
			"instrument_token": key,
		},
	})
}

// GetFullQuote serves a full market quote from the synthetic walk.
func (h *Handler) GetFullQuote(c *gin.Context) {
	key, symbol, err := h.validator.ValidateInstrumentKey(c.Query("instrument_key"))
	if err != nil {
		fail(c, http.StatusBadRequest, "UDAPI100011", err.Error())
		return
	}

	q, err := h.quotes.FetchQuote(c.Request.Context(), symbol)
	if err != nil {
		fail(c, http.StatusInternalServerError, "UDAPI100500", err.Error())
		return
	}
	ok(c, gin.H{
		"NSE_EQ:" + symbol: gin.H{
			"symbol":           symbol,
			"instrument_token": key,
			"last_price":       q.Price,
			"volume":           q.Volume,
			"net_change":       q.Change,
			"ohlc": gin.H{
				"open":  q.Open,
				"high":  q.High,
				"low":   q.Low,
				"close": q.Price,
			},
			"timestamp": q.At.Format(time.RFC3339),
		},
	})
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   "mockbroker",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
