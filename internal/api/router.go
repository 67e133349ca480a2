// Package api provides the REST endpoints the dashboard frontend calls.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/InfinixInfotech/Trading-App/internal/auth"
	"github.com/InfinixInfotech/Trading-App/internal/history"
	"github.com/InfinixInfotech/Trading-App/internal/marketdata"
	"github.com/InfinixInfotech/Trading-App/internal/portfolio"
	"github.com/InfinixInfotech/Trading-App/internal/status"
	"github.com/InfinixInfotech/Trading-App/internal/strategy"
)

// AutoTrader is the subset of the trading loop the API can drive.
type AutoTrader interface {
	Enable()
	Disable()
}

// Server holds the state the REST handlers read from and write to.
type Server struct {
	Registry *strategy.Registry
	Book     *portfolio.Book
	Risk     *portfolio.RiskManager
	History  *history.Store
	Quotes   *marketdata.Cache
	Tracker  *status.Tracker
	Trader   AutoTrader

	// Sessions is nil in paper mode; the auth endpoints then report
	// a paper session.
	Sessions *auth.Manager
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// RegisterRoutes registers all REST routes on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// GET list, plus per-strategy GET/PATCH and enable toggle under the
	// same prefix.
	mux.HandleFunc("/api/v1/strategies", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, s.Registry.List())
	})

	mux.HandleFunc("/api/v1/strategies/", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/strategies/")
		if rest == "" {
			writeError(w, http.StatusBadRequest, "missing strategy id")
			return
		}

		if id, ok := strings.CutSuffix(rest, "/toggle"); ok {
			s.handleToggle(w, r, id)
			return
		}
		if id, ok := strings.CutSuffix(rest, "/performance"); ok {
			s.handlePerformance(w, r, id)
			return
		}

		switch r.Method {
		case http.MethodGet:
			cfg, err := s.Registry.Get(rest)
			if err != nil {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, cfg)
		case http.MethodPatch:
			body, err := readBody(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid body")
				return
			}
			cfg, err := s.Registry.Patch(rest, body)
			if err != nil {
				code := http.StatusBadRequest
				if strings.Contains(err.Error(), "not found") {
					code = http.StatusNotFound
				}
				writeError(w, code, err.Error())
				return
			}
			s.Tracker.Infof("strategy %s updated", rest)
			writeJSON(w, http.StatusOK, cfg)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	// GET returns the flag, POST {"enabled":true|false} flips it.
	mux.HandleFunc("/api/v1/autotrade", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.Tracker.AutoTrading()})
		case http.MethodPost:
			var req struct {
				Enabled bool `json:"enabled"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON")
				return
			}
			if req.Enabled {
				s.Trader.Enable()
			} else {
				s.Trader.Disable()
			}
			writeJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/signals", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, s.Registry.RecentSignals())
	})

	mux.HandleFunc("/api/v1/positions", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"positions": s.Book.List(),
			"summary":   s.Book.Summary(),
		})
	})

	mux.HandleFunc("/api/v1/risk", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, s.Risk.Status())
	})

	mux.HandleFunc("/api/v1/logs", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}
		writeJSON(w, http.StatusOK, s.Tracker.Recent(limit))
	})

	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, s.Tracker.Snapshot())
	})

	mux.HandleFunc("/api/v1/quotes", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, s.Quotes.All())
	})

	mux.HandleFunc("/api/v1/quotes/", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		symbol := strings.TrimPrefix(r.URL.Path, "/api/v1/quotes/")
		q, ok := s.Quotes.Get(symbol)
		if !ok {
			writeError(w, http.StatusNotFound, "no quote for "+symbol)
			return
		}
		writeJSON(w, http.StatusOK, q)
	})

	mux.HandleFunc("/api/v1/candles", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			writeError(w, http.StatusBadRequest, "symbol is required")
			return
		}
		candles := s.History.Candles(symbol)
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n < len(candles) {
				candles = candles[len(candles)-n:]
			}
		}
		writeJSON(w, http.StatusOK, candles)
	})

	mux.HandleFunc("/api/v1/auth", s.handleAuthStatus)
	mux.HandleFunc("/api/v1/auth/login", s.handleAuthLogin)
}

// handleAuthStatus reports the broker session. In paper mode there is
// no session manager and the endpoint says so.
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Sessions == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"mode": "paper", "valid": true})
		return
	}
	resp := map[string]interface{}{
		"mode":      "live",
		"valid":     s.Sessions.Valid(),
		"user_id":   s.Sessions.UserID(),
		"login_url": s.Sessions.LoginURL(),
	}
	// The operator needs the current TOTP to complete the broker's
	// two-factor step.
	if code, err := s.Sessions.TOTPNow(); err == nil {
		resp["totp"] = code
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAuthLogin exchanges the OAuth redirect code for a session.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Sessions == nil {
		writeError(w, http.StatusBadRequest, "paper mode has no broker session")
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	tok, err := s.Sessions.Login(r.Context(), req.Code)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.Tracker.Successf("broker session established for %s", tok.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"user_id": tok.UserID})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	cfg, err := s.Registry.SetEnabled(id, req.Enabled)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	verb := "disabled"
	if req.Enabled {
		verb = "enabled"
	}
	s.Tracker.Infof("strategy %s %s", id, verb)
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	perf, err := s.Registry.PerformanceOf(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 1<<20))
}
