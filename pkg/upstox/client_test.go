package upstox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:      "key",
		APISecret:   "secret",
		RedirectURI: "https://127.0.0.1/cb",
		AccessToken: "tok-123",
		BaseURL:     srv.URL,
	})
}

func TestPlaceOrder_Success(t *testing.T) {
	var gotBody PlaceOrderParams
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/order/place" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":"success","data":{"order_id":"240108010403508"}}`))
	})

	ack, err := cl.PlaceOrder(context.Background(), PlaceOrderParams{
		TradingSymbol:   "RELIANCE",
		InstrumentToken: "NSE_EQ|INE002A01018",
		Quantity:        2,
		OrderType:       "MARKET",
		TransactionType: "BUY",
		Product:         "I",
		Validity:        "DAY",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if ack.OrderID != "240108010403508" {
		t.Errorf("order id = %s", ack.OrderID)
	}
	if gotBody.InstrumentToken != "NSE_EQ|INE002A01018" || gotBody.Quantity != 2 {
		t.Errorf("wire body = %+v", gotBody)
	}
	if gotBody.TransactionType != "BUY" || gotBody.Product != "I" {
		t.Errorf("wire body = %+v", gotBody)
	}
}

func TestPlaceOrder_StructuredRejection(t *testing.T) {
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","errors":[{"errorCode":"UDAPI100050","message":"insufficient funds"}]}`))
	})

	_, err := cl.PlaceOrder(context.Background(), PlaceOrderParams{Quantity: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if len(apiErr.Errors) != 1 || apiErr.Errors[0].ErrorCode != "UDAPI100050" {
		t.Errorf("errors = %+v", apiErr.Errors)
	}
}

func TestUnauthorized_FiresHookAndMatchesSentinel(t *testing.T) {
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","errors":[{"errorCode":"UDAPI100067","message":"token expired"}]}`))
	})

	hookCalls := 0
	cl.SessionExpiryHook = func() { hookCalls++ }

	_, err := cl.GetProfile(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("error = %v, want ErrSessionExpired", err)
	}
	if hookCalls != 1 {
		t.Errorf("hook fired %d times, want 1", hookCalls)
	}
}

func TestExchangeCode_InstallsToken(t *testing.T) {
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/authorization/token" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("code") != "abc" || r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("form = %v", r.PostForm)
		}
		w.Write([]byte(`{"status":"success","data":{"access_token":"fresh-token","user_id":"UX1234"}}`))
	})
	cl.SetAccessToken("")

	tok, err := cl.ExchangeCode(context.Background(), "abc")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if tok.UserID != "UX1234" {
		t.Errorf("user id = %s", tok.UserID)
	}
	if cl.AccessToken() != "fresh-token" {
		t.Errorf("client token = %q, want fresh-token", cl.AccessToken())
	}
}

func TestCancelOrder_SendsQueryParam(t *testing.T) {
	var gotQuery url.Values
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"success","data":{"order_id":"oid-1"}}`))
	})

	if err := cl.CancelOrder(context.Background(), "oid-1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if gotQuery.Get("order_id") != "oid-1" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestGetLTP_ReadsKeyedMap(t *testing.T) {
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("instrument_key"); got != "NSE_EQ|INE002A01018" {
			t.Errorf("instrument_key = %q", got)
		}
		w.Write([]byte(`{"status":"success","data":{"NSE_EQ:RELIANCE":{"last_price":2951.1,"instrument_token":"NSE_EQ|INE002A01018"}}}`))
	})

	price, err := cl.GetLTP(context.Background(), "NSE_EQ|INE002A01018")
	if err != nil {
		t.Fatalf("GetLTP: %v", err)
	}
	if price != 2951.1 {
		t.Errorf("price = %v, want 2951.1", price)
	}
}

func TestGetFullQuote_MapsFields(t *testing.T) {
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"NSE_EQ:RELIANCE":{
			"symbol":"RELIANCE","instrument_token":"NSE_EQ|INE002A01018",
			"last_price":2951.1,"volume":125000,"net_change":12.5,
			"ohlc":{"open":2940,"high":2960,"low":2931,"close":2938.6}}}}`))
	})

	q, err := cl.GetFullQuote(context.Background(), "NSE_EQ|INE002A01018")
	if err != nil {
		t.Fatalf("GetFullQuote: %v", err)
	}
	if q.Symbol != "RELIANCE" || q.LastPrice != 2951.1 || q.Volume != 125000 {
		t.Errorf("quote = %+v", q)
	}
	if q.OHLC.High != 2960 || q.OHLC.Low != 2931 {
		t.Errorf("ohlc = %+v", q.OHLC)
	}
}

func TestGetLTP_EmptyDataIsError(t *testing.T) {
	cl := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{}}`))
	})

	if _, err := cl.GetLTP(context.Background(), "NSE_EQ|XXXX"); err == nil {
		t.Fatal("expected error for empty data")
	}
}
