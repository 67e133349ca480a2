// Package auth owns the broker session: token validity, TOTP
// generation for the login flow, and the expired-session gate that
// blocks order placement while read-only operations keep working.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/InfinixInfotech/Trading-App/pkg/upstox"
)

// ErrSessionExpired blocks order placement until re-login. Reads are
// not gated on it.
var ErrSessionExpired = errors.New("auth: broker session expired, re-login required")

// Manager tracks one broker session.
type Manager struct {
	client     *upstox.Client
	totpSecret string

	mu         sync.RWMutex
	valid      bool
	userID     string
	loggedInAt time.Time

	// OnSessionExpired fires once per transition from valid to
	// expired.
	OnSessionExpired func()
}

// NewManager wraps the broker client. A pre-installed access token
// counts as a live session until the broker says otherwise.
func NewManager(client *upstox.Client, totpSecret string) *Manager {
	m := &Manager{
		client:     client,
		totpSecret: totpSecret,
		valid:      client.AccessToken() != "",
	}
	client.SessionExpiryHook = m.markExpired
	return m
}

// LoginURL returns the OAuth dialog URL for the operator.
func (m *Manager) LoginURL() string { return m.client.AuthorizationURL() }

// TOTPNow generates the current one-time code for the login flow.
func (m *Manager) TOTPNow() (string, error) {
	if m.totpSecret == "" {
		return "", errors.New("auth: no TOTP secret configured")
	}
	code, err := totp.GenerateCode(m.totpSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("auth: generate TOTP: %w", err)
	}
	return code, nil
}

// Login exchanges an OAuth authorization code for a session.
func (m *Manager) Login(ctx context.Context, authCode string) (*upstox.TokenResponse, error) {
	tok, err := m.client.ExchangeCode(ctx, authCode)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.valid = true
	m.userID = tok.UserID
	m.loggedInAt = time.Now()
	m.mu.Unlock()

	log.Printf("[auth] ✅ session established for %s", tok.UserID)
	return tok, nil
}

// Validate probes the session with a profile fetch. An auth failure
// flips the session to expired via the client hook.
func (m *Manager) Validate(ctx context.Context) error {
	p, err := m.client.GetProfile(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.valid = true
	m.userID = p.UserID
	m.mu.Unlock()
	return nil
}

// Valid reports whether the session is believed live.
func (m *Manager) Valid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.valid
}

// UserID returns the logged-in user, "" before first login.
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

// RequireSession gates order placement.
func (m *Manager) RequireSession() error {
	if !m.Valid() {
		return ErrSessionExpired
	}
	return nil
}

func (m *Manager) markExpired() {
	m.mu.Lock()
	wasValid := m.valid
	m.valid = false
	hook := m.OnSessionExpired
	m.mu.Unlock()

	if !wasValid {
		return
	}
	log.Printf("[auth] 🚨 broker session expired, blocking new orders")
	if hook != nil {
		hook()
	}
}
