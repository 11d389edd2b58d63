// Copyright 2025 Godoo Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session tracks authentication state for a client. A Manager holds
// the credentials and user id obtained at login, supplies them as the
// positional prefix required by authenticated calls, and re-authenticates
// once when the server signals that the session expired.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/godoo-labs/godoo/service"
	"github.com/godoo-labs/godoo/service/common"
	"github.com/godoo-labs/godoo/service/web"

	"golang.org/x/sync/singleflight"
)

// State is the authentication lifecycle state of a Manager
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateExpired
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Caller performs calls on behalf of the manager during login and logout.
// It is implemented by the client facade
type Caller interface {
	Call(ctx context.Context, call service.Call) (json.RawMessage, error)
	CallWeb(ctx context.Context, call service.WebCall) (json.RawMessage, error)
}

// Manager holds session state. It is safe for concurrent use
type Manager struct {
	mutex       sync.RWMutex
	state       State
	database    string
	login       string
	secret      string
	uid         int64
	userContext map[string]any
	useWeb      bool
	signals     []Signal
	logger      *slog.Logger

	// Collapses concurrent re-authentication attempts into one flight
	refreshGroup singleflight.Group
}

// ManagerOptionFunc configures a Manager
type ManagerOptionFunc func(*Manager)

// WithLogger sets the logger. Defaults to discarding output
func WithLogger(logger *slog.Logger) ManagerOptionFunc {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithWebAuthentication makes Authenticate use the cookie-backed web session
// endpoint instead of the stateless common service login
func WithWebAuthentication(enabled bool) ManagerOptionFunc {
	return func(m *Manager) {
		m.useWeb = enabled
	}
}

// WithExpirySignals replaces the set of error shapes treated as session
// expiry
func WithExpirySignals(signals ...Signal) ManagerOptionFunc {
	return func(m *Manager) {
		m.signals = signals
	}
}

// NewManager returns an unauthenticated Manager
func NewManager(options ...ManagerOptionFunc) *Manager {
	m := &Manager{
		state:   StateUnauthenticated,
		signals: DefaultSignals(),
	}
	for _, option := range options {
		option(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return m
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.state
}

// UID returns the authenticated user id, or zero when not authenticated
func (m *Manager) UID() int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.uid
}

// Database returns the database name supplied at login
func (m *Manager) Database() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.database
}

// Context returns a copy of the user context captured at login, or nil when
// none was captured
func (m *Manager) Context() map[string]any {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.userContext == nil {
		return nil
	}
	userContext := make(map[string]any, len(m.userContext))
	for k, v := range m.userContext {
		userContext[k] = v
	}
	return userContext
}

// AuthArgs returns the positional credential prefix required by
// authenticated calls. It fails unless the manager is authenticated or
// expired; an expired session keeps its last-known prefix so the triggering
// call can be retried after a refresh
func (m *Manager) AuthArgs() ([]any, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.state != StateAuthenticated && m.state != StateExpired {
		return nil, &AuthError{
			Reason: "not authenticated (state " + m.state.String() + ")",
		}
	}
	return []any{m.database, m.uid, m.secret}, nil
}

// Authenticate logs in with the given credentials and stores them for later
// re-authentication. Rejected credentials produce an *AuthError and leave
// the manager in the failed state
func (m *Manager) Authenticate(
	ctx context.Context,
	caller Caller,
	database string,
	login string,
	secret string,
) error {
	m.mutex.Lock()
	m.state = StateAuthenticating
	m.database = database
	m.login = login
	m.secret = secret
	useWeb := m.useWeb
	m.mutex.Unlock()
	var err error
	if useWeb {
		err = m.authenticateWeb(ctx, caller, database, login, secret)
	} else {
		err = m.authenticateService(ctx, caller, database, login, secret)
	}
	if err != nil {
		m.mutex.Lock()
		m.state = StateFailed
		m.mutex.Unlock()
		return err
	}
	m.mutex.Lock()
	m.state = StateAuthenticated
	uid := m.uid
	m.mutex.Unlock()
	m.logger.Debug(
		"authenticated",
		"component", "session",
		"database", database,
		"login", login,
		"uid", uid,
	)
	return nil
}

func (m *Manager) authenticateService(
	ctx context.Context,
	caller Caller,
	database string,
	login string,
	secret string,
) error {
	call, err := common.NewLogin(database, login, secret)
	if err != nil {
		return err
	}
	result, err := caller.Call(ctx, call)
	if err != nil {
		return err
	}
	uid, ok, err := common.DecodeUID(result)
	if err != nil {
		return err
	}
	if !ok {
		return &AuthError{Reason: "credentials rejected"}
	}
	m.mutex.Lock()
	m.uid = uid
	m.mutex.Unlock()
	return nil
}

func (m *Manager) authenticateWeb(
	ctx context.Context,
	caller Caller,
	database string,
	login string,
	secret string,
) error {
	call, err := web.NewSessionAuthenticate(database, login, secret)
	if err != nil {
		return err
	}
	result, err := caller.CallWeb(ctx, call)
	if err != nil {
		return err
	}
	info, err := web.DecodeSessionInfo(result)
	if err != nil {
		return &AuthError{Reason: "credentials rejected", Err: err}
	}
	m.mutex.Lock()
	m.uid = info.UID
	m.userContext = info.UserContext
	m.mutex.Unlock()
	return nil
}

// AuthenticateManual marks the manager as authenticated with a known user id
// and password, skipping the login round trip. A manager authenticated this
// way cannot re-authenticate on expiry since it holds no login name
func (m *Manager) AuthenticateManual(
	database string,
	uid int64,
	secret string,
) error {
	if err := service.CheckDatabaseName(database); err != nil {
		return err
	}
	if uid <= 0 {
		return &service.ValidationError{
			Field:  "uid",
			Reason: "must be positive",
		}
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.state = StateAuthenticated
	m.database = database
	m.login = ""
	m.secret = secret
	m.uid = uid
	m.userContext = nil
	return nil
}

// MarkExpired records that the server signaled session expiry. It has no
// effect unless the manager is currently authenticated
func (m *Manager) MarkExpired() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.state == StateAuthenticated {
		m.state = StateExpired
		m.logger.Debug(
			"session expired",
			"component", "session",
			"database", m.database,
			"uid", m.uid,
		)
	}
}

// Refresh re-authenticates with the stored credentials. Concurrent calls
// share a single login round trip. Failure leaves the manager in the failed
// state and returns an *AuthError
func (m *Manager) Refresh(ctx context.Context, caller Caller) error {
	m.mutex.RLock()
	database := m.database
	login := m.login
	secret := m.secret
	m.mutex.RUnlock()
	if login == "" {
		return &AuthError{
			Reason: "cannot re-authenticate without stored credentials",
		}
	}
	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		m.logger.Debug(
			"re-authenticating",
			"component", "session",
			"database", database,
			"login", login,
		)
		return nil, m.Authenticate(ctx, caller, database, login, secret)
	})
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return err
		}
		return &AuthError{Reason: "re-authentication failed", Err: err}
	}
	return nil
}

// Logout destroys the server-side web session, when one exists, and resets
// the manager to the unauthenticated state
func (m *Manager) Logout(ctx context.Context, caller Caller) error {
	m.mutex.RLock()
	useWeb := m.useWeb
	state := m.state
	m.mutex.RUnlock()
	var err error
	if useWeb && (state == StateAuthenticated || state == StateExpired) {
		_, err = caller.CallWeb(ctx, web.NewSessionDestroy())
	}
	m.mutex.Lock()
	m.state = StateUnauthenticated
	m.database = ""
	m.login = ""
	m.secret = ""
	m.uid = 0
	m.userContext = nil
	m.mutex.Unlock()
	return err
}
