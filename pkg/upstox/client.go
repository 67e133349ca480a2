// Package upstox is a typed client for the Upstox REST API v2: OAuth
// token exchange, order placement/cancellation, and market quotes.
// Every failure comes back as a structured error; nothing panics across
// the caller's loop boundary.
//
// Usage example:
//
//	cl := upstox.New(upstox.Config{APIKey: "key", APISecret: "secret", RedirectURI: "https://127.0.0.1/cb"})
//	tok, err := cl.ExchangeCode(ctx, "auth_code_from_redirect")
//	if err != nil { log.Fatal(err) }
//	fmt.Println("Logged in as:", tok.UserID)
//	ack, err := cl.PlaceOrder(ctx, upstox.PlaceOrderParams{
//	    TradingSymbol: "RELIANCE", InstrumentToken: "NSE_EQ|INE002A01018",
//	    Quantity: 1, OrderType: "MARKET", TransactionType: "BUY",
//	    Product: "I", Validity: "DAY",
//	})
//	if err != nil { log.Fatal(err) }
//	fmt.Println("Order ID:", ack.OrderID)
package upstox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ---- Config & client ----

type Config struct {
	APIKey      string
	APISecret   string
	RedirectURI string
	AccessToken string

	BaseURL string        // default: https://api.upstox.com/v2
	Timeout time.Duration // default: 30s
	Debug   bool
}

const defaultBase = "https://api.upstox.com/v2"

// Client talks to one Upstox account. Safe for concurrent use.
type Client struct {
	apiKey      string
	apiSecret   string
	redirectURI string

	baseURL string
	debug   bool

	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string

	// SessionExpiryHook is called once per request that fails with an
	// authentication error (HTTP 401), before the error is returned.
	SessionExpiryHook func()
}

var routes = map[string]string{
	"login.token":  "/login/authorization/token",
	"login.dialog": "/login/authorization/dialog",
	"user.profile": "/user/profile",

	"order.place":  "/order/place",
	"order.cancel": "/order/cancel",

	"quote.ltp":  "/market-quote/ltp",
	"quote.full": "/market-quote/quotes",
}

// New initializes the client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		redirectURI: cfg.RedirectURI,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		debug:       cfg.Debug,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		accessToken: cfg.AccessToken,
	}
}

// AuthorizationURL returns the browser URL that starts the OAuth flow.
func (c *Client) AuthorizationURL() string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.apiKey)
	q.Set("redirect_uri", c.redirectURI)
	return c.baseURL + routes["login.dialog"] + "?" + q.Encode()
}

// SetAccessToken installs a session token obtained out of band.
func (c *Client) SetAccessToken(t string) {
	c.mu.Lock()
	c.accessToken = t
	c.mu.Unlock()
}

// AccessToken returns the current session token, "" when logged out.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// ---- Errors ----

// ErrSessionExpired marks authentication failures; callers match it
// with errors.Is.
var ErrSessionExpired = errors.New("upstox: session expired")

// ErrorDetail is one entry of the API's errors array.
type ErrorDetail struct {
	ErrorCode    string `json:"errorCode"`
	Message      string `json:"message"`
	PropertyPath string `json:"propertyPath,omitempty"`
	InvalidValue any    `json:"invalidValue,omitempty"`
}

// APIError is the structured failure returned for non-success
// responses.
type APIError struct {
	StatusCode int
	Errors     []ErrorDetail
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("upstox: http %d", e.StatusCode)
	}
	first := e.Errors[0]
	return fmt.Sprintf("upstox: %s: %s (http %d)", first.ErrorCode, first.Message, e.StatusCode)
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Errors []ErrorDetail   `json:"errors"`
}

// ---- Request helpers ----

func (c *Client) buildURL(route string, query url.Values) (string, error) {
	uri, ok := routes[route]
	if !ok {
		return "", fmt.Errorf("unknown route: %s", route)
	}
	full := c.baseURL + uri
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full, nil
}

func (c *Client) doJSON(ctx context.Context, method, route string, query url.Values, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, route, query, body, "application/json")
}

func (c *Client) doForm(ctx context.Context, route string, form url.Values) (json.RawMessage, error) {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, route, nil, body, "application/x-www-form-urlencoded")
}

func (c *Client) do(ctx context.Context, method, route string, query url.Values, body io.Reader, contentType string) (json.RawMessage, error) {
	fullURL, err := c.buildURL(route, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	if c.debug {
		log.Printf("[upstox] request: %s %s", method, fullURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstox: %s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstox: read response: %w", err)
	}

	if c.debug {
		log.Printf("[upstox] response: code=%d body=%s", resp.StatusCode, string(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("upstox: couldn't parse response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.SessionExpiryHook != nil {
			c.SessionExpiryHook()
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Errors: env.Errors}
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, apiErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Status == "error" {
		return nil, &APIError{StatusCode: resp.StatusCode, Errors: env.Errors}
	}
	return env.Data, nil
}

// ---- Session ----

// TokenResponse is the payload of a successful token exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	Broker      string `json:"broker"`
}

// ExchangeCode trades an OAuth authorization code for an access token
// and installs it on the client.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.apiKey)
	form.Set("client_secret", c.apiSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("grant_type", "authorization_code")

	data, err := c.doForm(ctx, "login.token", form)
	if err != nil {
		return nil, err
	}
	var tok TokenResponse
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("upstox: parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("upstox: token exchange returned no access token")
	}
	c.SetAccessToken(tok.AccessToken)
	return &tok, nil
}

// Profile describes the logged-in user. Fetching it doubles as a
// session-validity probe.
type Profile struct {
	UserID    string   `json:"user_id"`
	UserName  string   `json:"user_name"`
	Email     string   `json:"email"`
	Broker    string   `json:"broker"`
	IsActive  bool     `json:"is_active"`
	Exchanges []string `json:"exchanges"`
	Products  []string `json:"products"`
}

// GetProfile fetches the user profile for the current session.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	data, err := c.doJSON(ctx, http.MethodGet, "user.profile", nil, nil)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("upstox: parse profile: %w", err)
	}
	return &p, nil
}

// ---- Orders ----

// PlaceOrderParams is the place-order request body.
type PlaceOrderParams struct {
	TradingSymbol     string  `json:"trading_symbol,omitempty"`
	InstrumentToken   string  `json:"instrument_token"`
	Quantity          int     `json:"quantity"`
	Price             float64 `json:"price"`
	OrderType         string  `json:"order_type"`       // MARKET | LIMIT | SL | SL-M
	TransactionType   string  `json:"transaction_type"` // BUY | SELL
	Product           string  `json:"product"`          // I | D
	Validity          string  `json:"validity"`         // DAY | IOC
	TriggerPrice      float64 `json:"trigger_price,omitempty"`
	DisclosedQuantity int     `json:"disclosed_quantity,omitempty"`
	Tag               string  `json:"tag,omitempty"`
	IsAMO             bool    `json:"is_amo"`
}

// OrderAck is the acknowledgement for an accepted order.
type OrderAck struct {
	OrderID string `json:"order_id"`
}

// PlaceOrder submits an order and returns the broker acknowledgement.
func (c *Client) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*OrderAck, error) {
	data, err := c.doJSON(ctx, http.MethodPost, "order.place", nil, params)
	if err != nil {
		return nil, err
	}
	var ack OrderAck
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("upstox: parse order ack: %w", err)
	}
	if ack.OrderID == "" {
		return nil, errors.New("upstox: order accepted without an order id")
	}
	return &ack, nil
}

// CancelOrder cancels a pending order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	q := url.Values{}
	q.Set("order_id", orderID)
	_, err := c.doJSON(ctx, http.MethodDelete, "order.cancel", q, nil)
	return err
}

// ---- Market data ----

// LTPQuote is the last-traded-price entry for one instrument.
type LTPQuote struct {
	LastPrice       float64 `json:"last_price"`
	InstrumentToken string  `json:"instrument_token"`
}

// GetLTP returns the last traded price for one instrument key
// (e.g. "NSE_EQ|INE002A01018").
func (c *Client) GetLTP(ctx context.Context, instrumentKey string) (float64, error) {
	q := url.Values{}
	q.Set("instrument_key", instrumentKey)
	data, err := c.doJSON(ctx, http.MethodGet, "quote.ltp", q, nil)
	if err != nil {
		return 0, err
	}
	var out map[string]LTPQuote
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("upstox: parse ltp: %w", err)
	}
	// The response is keyed by "EXCHANGE:SYMBOL"; with a single
	// instrument requested the map has one entry.
	for _, v := range out {
		return v.LastPrice, nil
	}
	return 0, fmt.Errorf("upstox: no ltp data for %s", instrumentKey)
}

// OHLC is the open/high/low/close block of a full quote.
type OHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// FullQuote is the full market quote for one instrument.
type FullQuote struct {
	Symbol          string  `json:"symbol"`
	InstrumentToken string  `json:"instrument_token"`
	LastPrice       float64 `json:"last_price"`
	Volume          int64   `json:"volume"`
	NetChange       float64 `json:"net_change"`
	OHLC            OHLC    `json:"ohlc"`
	Timestamp       string  `json:"timestamp"`
}

// GetFullQuote returns the full quote for one instrument key.
func (c *Client) GetFullQuote(ctx context.Context, instrumentKey string) (*FullQuote, error) {
	q := url.Values{}
	q.Set("instrument_key", instrumentKey)
	data, err := c.doJSON(ctx, http.MethodGet, "quote.full", q, nil)
	if err != nil {
		return nil, err
	}
	var out map[string]FullQuote
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("upstox: parse quote: %w", err)
	}
	for _, v := range out {
		return &v, nil
	}
	return nil, fmt.Errorf("upstox: no quote data for %s", instrumentKey)
}
