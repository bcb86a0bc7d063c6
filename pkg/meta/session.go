package meta

import (
	"context"
	"sync"
)

// loginScopes is the fixed permission set Login always requests.
const loginScopes = "catalog_management,business_management,pages_show_list"

// InitOptions are the options passed to the SDK init routine.
type InitOptions struct {
	AppID   string `json:"appId"`
	Cookie  bool   `json:"cookie"`
	XFBML   bool   `json:"xfbml"`
	Version string `json:"version"`
}

// AuthResponse carries the token material the SDK returns for a connected
// session.
type AuthResponse struct {
	AccessToken   string `json:"accessToken"`
	UserID        string `json:"userID"`
	ExpiresIn     int    `json:"expiresIn"`
	SignedRequest string `json:"signedRequest"`
}

// LoginStatus is the SDK status payload. Status is "connected",
// "not_authorized" or "unknown"; AuthResponse is set only when connected.
// Login resolves with this shape whether the user completed or cancelled the
// flow, so callers must inspect Status rather than rely on an error.
type LoginStatus struct {
	Status       string        `json:"status"`
	AuthResponse *AuthResponse `json:"authResponse,omitempty"`
}

// SDK mirrors the vendor's callback-based JavaScript SDK contract. The
// embedding host supplies the implementation; each method must invoke its
// callback exactly once when the underlying flow settles.
type SDK interface {
	Init(opts InitOptions, done func())
	GetLoginStatus(cb func(LoginStatus))
	Login(scopes string, cb func(LoginStatus))
	Logout(cb func())
}

// Session adapts the SDK's global-callback handshake into explicit
// operations. Initialize runs the SDK init exactly once; every other
// operation waits for that one-time ready signal before proceeding. There is
// no internal timeout; a stalled SDK stalls callers until their context is
// done.
type Session struct {
	sdk   SDK
	once  sync.Once
	ready chan struct{}
}

// NewSession wraps the given SDK.
func NewSession(sdk SDK) *Session {
	return &Session{
		sdk:   sdk,
		ready: make(chan struct{}),
	}
}

// Initialize invokes the SDK init routine with cookie-based sessions, XFBML
// auto-parse and the pinned API version, then resolves once the SDK's
// completion callback fires. Concurrent and repeat calls share the first
// initialization and await the same signal.
func (s *Session) Initialize(ctx context.Context, appID string) error {
	s.once.Do(func() {
		go s.sdk.Init(InitOptions{
			AppID:   appID,
			Cookie:  true,
			XFBML:   true,
			Version: DefaultVersion,
		}, func() {
			close(s.ready)
		})
	})

	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitReady blocks until the one-time initialization completes or the
// context is done.
func (s *Session) awaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetLoginStatus returns the SDK's current session status.
func (s *Session) GetLoginStatus(ctx context.Context) (*LoginStatus, error) {
	if err := s.awaitReady(ctx); err != nil {
		return nil, err
	}

	result := make(chan LoginStatus, 1)
	s.sdk.GetLoginStatus(func(status LoginStatus) {
		result <- status
	})

	select {
	case status := <-result:
		return &status, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Login runs the SDK login flow requesting the fixed catalog, business and
// page scopes. The resolved status must be inspected by the caller; a
// cancelled flow is not an error here.
func (s *Session) Login(ctx context.Context) (*LoginStatus, error) {
	if err := s.awaitReady(ctx); err != nil {
		return nil, err
	}

	result := make(chan LoginStatus, 1)
	s.sdk.Login(loginScopes, func(status LoginStatus) {
		result <- status
	})

	select {
	case status := <-result:
		return &status, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Logout ends the SDK session. It carries no payload.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.awaitReady(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	s.sdk.Logout(func() {
		close(done)
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
