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

package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/godoo-labs/godoo/jsonrpc"
	"github.com/godoo-labs/godoo/service"
	"github.com/godoo-labs/godoo/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeCaller struct {
	callResult  json.RawMessage
	callErr     error
	webResult   json.RawMessage
	webErr      error
	callCount   atomic.Int64
	webCount    atomic.Int64
	lastCall    service.Call
	lastWebCall service.WebCall
	releaseCall chan struct{}
	mutex       sync.Mutex
}

func (f *fakeCaller) Call(
	ctx context.Context,
	call service.Call,
) (json.RawMessage, error) {
	f.mutex.Lock()
	f.lastCall = call
	f.mutex.Unlock()
	f.callCount.Add(1)
	if f.releaseCall != nil {
		<-f.releaseCall
	}
	return f.callResult, f.callErr
}

func (f *fakeCaller) CallWeb(
	ctx context.Context,
	call service.WebCall,
) (json.RawMessage, error) {
	f.mutex.Lock()
	f.lastWebCall = call
	f.mutex.Unlock()
	f.webCount.Add(1)
	return f.webResult, f.webErr
}

func TestAuthenticate(t *testing.T) {
	caller := &fakeCaller{callResult: json.RawMessage(`7`)}
	m := session.NewManager()
	err := m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"secret",
	)
	require.NoError(t, err)
	assert.Equal(t, session.StateAuthenticated, m.State())
	assert.Equal(t, int64(7), m.UID())
	assert.Equal(t, "testdb", m.Database())
	args, err := m.AuthArgs()
	require.NoError(t, err)
	assert.Equal(t, []any{"testdb", int64(7), "secret"}, args)
}

func TestAuthenticateRejected(t *testing.T) {
	caller := &fakeCaller{callResult: json.RawMessage(`false`)}
	m := session.NewManager()
	err := m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"wrong",
	)
	require.Error(t, err)
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, session.StateFailed, m.State())
	_, err = m.AuthArgs()
	assert.Error(t, err)
}

func TestAuthenticateWeb(t *testing.T) {
	caller := &fakeCaller{
		webResult: json.RawMessage(
			`{"uid":3,"username":"admin","db":"testdb",` +
				`"user_context":{"lang":"en_US","tz":"UTC"}}`,
		),
	}
	m := session.NewManager(session.WithWebAuthentication(true))
	err := m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"secret",
	)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.UID())
	assert.Equal(
		t,
		map[string]any{"lang": "en_US", "tz": "UTC"},
		m.Context(),
	)
	assert.Equal(t, int64(1), caller.webCount.Load())
	assert.Equal(t, int64(0), caller.callCount.Load())
}

func TestAuthenticateManual(t *testing.T) {
	m := session.NewManager()
	err := m.AuthenticateManual("testdb", 2, "secret")
	require.NoError(t, err)
	assert.Equal(t, session.StateAuthenticated, m.State())
	args, err := m.AuthArgs()
	require.NoError(t, err)
	assert.Equal(t, []any{"testdb", int64(2), "secret"}, args)
	// No login name is stored, so recovery from expiry is impossible
	err = m.Refresh(context.Background(), &fakeCaller{})
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestAuthenticateManualInvalid(t *testing.T) {
	m := session.NewManager()
	err := m.AuthenticateManual("testdb", 0, "secret")
	var validationErr *service.ValidationError
	require.ErrorAs(t, err, &validationErr)
	err = m.AuthenticateManual("", 2, "secret")
	require.ErrorAs(t, err, &validationErr)
}

func TestAuthArgsUnauthenticated(t *testing.T) {
	m := session.NewManager()
	_, err := m.AuthArgs()
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestIsExpirySignal(t *testing.T) {
	testDefs := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name: "message match",
			err: &jsonrpc.RpcError{
				Code:    100,
				Message: "Odoo Session Expired",
			},
			expected: true,
		},
		{
			name: "exception name match",
			err: &jsonrpc.RpcError{
				Code:    200,
				Message: "Odoo Server Error",
				Data: jsonrpc.RpcErrorData{
					Name: "odoo.http.SessionExpiredException",
				},
			},
			expected: true,
		},
		{
			name: "unrelated server error",
			err: &jsonrpc.RpcError{
				Code:    200,
				Message: "Odoo Server Error",
				Data: jsonrpc.RpcErrorData{
					Name: "odoo.exceptions.ValidationError",
				},
			},
			expected: false,
		},
		{
			name:     "non-rpc error",
			err:      errors.New("connection reset"),
			expected: false,
		},
	}
	m := session.NewManager()
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(t, testDef.expected, m.IsExpirySignal(testDef.err))
		})
	}
}

func TestIsExpirySignalCustom(t *testing.T) {
	m := session.NewManager(
		session.WithExpirySignals(
			session.Signal{Message: "Please log in again"},
		),
	)
	assert.True(t, m.IsExpirySignal(
		&jsonrpc.RpcError{Message: "Please log in again"},
	))
	assert.False(t, m.IsExpirySignal(
		&jsonrpc.RpcError{Message: "Odoo Session Expired"},
	))
}

func TestMarkExpired(t *testing.T) {
	caller := &fakeCaller{callResult: json.RawMessage(`7`)}
	m := session.NewManager()
	// Expiry before authentication is a no-op
	m.MarkExpired()
	assert.Equal(t, session.StateUnauthenticated, m.State())
	require.NoError(t, m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"secret",
	))
	m.MarkExpired()
	assert.Equal(t, session.StateExpired, m.State())
	// The credential prefix survives expiry so the triggering call can be
	// retried after a refresh
	args, err := m.AuthArgs()
	require.NoError(t, err)
	assert.Equal(t, []any{"testdb", int64(7), "secret"}, args)
}

func TestRefresh(t *testing.T) {
	caller := &fakeCaller{callResult: json.RawMessage(`7`)}
	m := session.NewManager()
	require.NoError(t, m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"secret",
	))
	m.MarkExpired()
	require.NoError(t, m.Refresh(context.Background(), caller))
	assert.Equal(t, session.StateAuthenticated, m.State())
	assert.Equal(t, int64(2), caller.callCount.Load())
}

func TestRefreshConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)
	caller := &fakeCaller{callResult: json.RawMessage(`7`)}
	m := session.NewManager()
	require.NoError(t, m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"secret",
	))
	m.MarkExpired()
	// Hold the login round trip open so all refreshers pile onto one flight
	release := make(chan struct{})
	caller.releaseCall = release
	const refreshers = 5
	var wg sync.WaitGroup
	errs := make([]error, refreshers)
	for i := 0; i < refreshers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Refresh(context.Background(), caller)
		}(i)
	}
	// Wait for the first refresher to reach the caller, then give the rest
	// time to join the flight
	require.Eventually(t, func() bool {
		return caller.callCount.Load() >= 2
	}, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	for i := 0; i < refreshers; i++ {
		assert.NoError(t, errs[i])
	}
	// One login at construction time plus exactly one shared refresh
	assert.Equal(t, int64(2), caller.callCount.Load())
	assert.Equal(t, session.StateAuthenticated, m.State())
}

func TestRefreshRejected(t *testing.T) {
	caller := &fakeCaller{callResult: json.RawMessage(`7`)}
	m := session.NewManager()
	require.NoError(t, m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"secret",
	))
	m.MarkExpired()
	caller.callResult = json.RawMessage(`false`)
	err := m.Refresh(context.Background(), caller)
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, session.StateFailed, m.State())
}

func TestLogoutWeb(t *testing.T) {
	caller := &fakeCaller{
		webResult: json.RawMessage(`{"uid":3,"username":"admin"}`),
	}
	m := session.NewManager(session.WithWebAuthentication(true))
	require.NoError(t, m.Authenticate(
		context.Background(),
		caller,
		"testdb",
		"admin",
		"secret",
	))
	caller.webResult = json.RawMessage(`{}`)
	require.NoError(t, m.Logout(context.Background(), caller))
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Equal(t, int64(0), m.UID())
	assert.Equal(t, int64(2), caller.webCount.Load())
	_, err := m.AuthArgs()
	assert.Error(t, err)
}
