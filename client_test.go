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

package godoo_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/godoo-labs/godoo"
	"github.com/godoo-labs/godoo/internal/test"
	"github.com/godoo-labs/godoo/jsonrpc"
	"github.com/godoo-labs/godoo/service/common"
	"github.com/godoo-labs/godoo/service/orm"
	"github.com/godoo-labs/godoo/session"
	"github.com/godoo-labs/godoo/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const expiredSessionError = `{
	"code": 100,
	"message": "Odoo Session Expired",
	"data": {
		"name": "odoo.http.SessionExpiredException",
		"debug": "Traceback (most recent call last): ...",
		"message": "Session expired",
		"arguments": [],
		"context": {}
	}
}`

func newTestClient(
	t *testing.T,
	exchanges []test.Exchange,
) (*godoo.Client, *test.Scripted) {
	tr := test.NewScripted(t, exchanges)
	c, err := godoo.NewClient(
		"https://odoo.example.com",
		godoo.WithTransport(tr),
	)
	require.NoError(t, err)
	return c, tr
}

func TestNewClientValidation(t *testing.T) {
	testDefs := []struct {
		name string
		url  string
	}{
		{name: "empty", url: ""},
		{name: "bad scheme", url: "ftp://odoo.example.com"},
		{name: "missing host", url: "http://"},
		{name: "not a url", url: "://odoo"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := godoo.NewClient(testDef.url)
			assert.Error(t, err)
		})
	}
}

func TestCallUnauthenticated(t *testing.T) {
	c, tr := newTestClient(t, []test.Exchange{
		{
			ExpectPath: "/jsonrpc",
			ExpectParams: `{
				"service": "common",
				"method": "version",
				"args": []
			}`,
			Result: `{
				"server_version": "16.0+e",
				"server_version_info": [16, 0, 0, "final", 0, "e"],
				"server_serie": "16.0",
				"protocol_version": 1
			}`,
		},
	})
	version, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "16.0+e", version.ServerVersion)
	assert.Equal(t, 16, version.ServerVersionInfo.Major)
	assert.Equal(t, "e", version.ServerVersionInfo.Enterprise)
	assert.Equal(t, 1, tr.Requests())
}

func TestAuthRequiredWithoutSession(t *testing.T) {
	c, tr := newTestClient(t, nil)
	_, err := c.ExecuteKw(
		context.Background(),
		"res.users",
		"read",
		[]any{},
		nil,
	)
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 0, tr.Requests())
}

func TestSearchReadSerialization(t *testing.T) {
	c, tr := newTestClient(t, []test.Exchange{
		{
			ExpectParams: `{
				"service": "common",
				"method": "login",
				"args": ["test-db", "admin", "password1"]
			}`,
			Result: `17`,
		},
		{
			ExpectParams: `{
				"service": "object",
				"method": "execute_kw",
				"args": [
					"test-db", 17, "password1",
					"res.users", "search_read",
					[[["active", "=", true]]],
					{"fields": ["login"]}
				]
			}`,
			Result: `[{"id": 1, "login": "admin"}]`,
		},
	})
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	records, err := c.SearchRead(
		ctx,
		"res.users",
		orm.Domain{orm.Eq("active", true)},
		[]string{"login"},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "admin", records[0]["login"])
	assert.Equal(t, 2, tr.Requests())
}

func TestWebAuthentication(t *testing.T) {
	tr := test.NewScripted(t, []test.Exchange{
		{
			ExpectPath: "/web/session/authenticate",
			ExpectParams: `{
				"db": "test-db",
				"login": "admin",
				"password": "password1"
			}`,
			Result: `{
				"uid": 2,
				"username": "admin",
				"db": "test-db",
				"user_context": {"lang": "en_US"}
			}`,
		},
		{
			ExpectParams: `{
				"service": "object",
				"method": "execute_kw",
				"args": [
					"test-db", 2, "password1",
					"res.partner", "search",
					[[]],
					{"context": {"lang": "en_US"}}
				]
			}`,
			Result: `[5, 9]`,
		},
	})
	c, err := godoo.NewClient(
		"https://odoo.example.com",
		godoo.WithTransport(tr),
		godoo.WithWebAuthentication(true),
	)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	assert.Equal(t, int64(2), c.Session().UID())
	ids, err := c.Search(ctx, "res.partner", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 9}, ids)
	assert.Equal(t, 2, tr.Requests())
}

func TestSessionExpiryRetry(t *testing.T) {
	c, tr := newTestClient(t, []test.Exchange{
		{Result: `17`},
		{Error: expiredSessionError},
		{
			ExpectParams: `{
				"service": "common",
				"method": "login",
				"args": ["test-db", "admin", "password1"]
			}`,
			Result: `17`,
		},
		{
			ExpectParams: `{
				"service": "object",
				"method": "execute_kw",
				"args": [
					"test-db", 17, "password1",
					"res.partner", "search",
					[[]],
					{}
				]
			}`,
			Result: `[3]`,
		},
	})
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	ids, err := c.Search(ctx, "res.partner", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
	assert.Equal(t, 4, tr.Requests())
	assert.Equal(t, session.StateAuthenticated, c.Session().State())
}

func TestSessionExpiryTwice(t *testing.T) {
	c, tr := newTestClient(t, []test.Exchange{
		{Result: `17`},
		{Error: expiredSessionError},
		{Result: `17`},
		{Error: expiredSessionError},
	})
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	_, err := c.Search(ctx, "res.partner", nil, nil)
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	// The expiry error that triggered the failure stays reachable
	var rpcErr *jsonrpc.RpcError
	assert.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 4, tr.Requests())
}

func TestSessionExpiryRefreshRejected(t *testing.T) {
	c, tr := newTestClient(t, []test.Exchange{
		{Result: `17`},
		{Error: expiredSessionError},
		{Result: `false`},
	})
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	_, err := c.Search(ctx, "res.partner", nil, nil)
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 3, tr.Requests())
	assert.Equal(t, session.StateFailed, c.Session().State())
}

func TestServerErrorPassthrough(t *testing.T) {
	c, _ := newTestClient(t, []test.Exchange{
		{Result: `17`},
		{Error: `{
			"code": 200,
			"message": "Odoo Server Error",
			"data": {
				"name": "odoo.exceptions.ValidationError",
				"message": "The operation cannot be completed",
				"arguments": ["The operation cannot be completed"],
				"context": {}
			}
		}`},
	})
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	err := c.Unlink(ctx, "res.partner", []int64{1})
	var rpcErr *jsonrpc.RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 200, rpcErr.Code)
	assert.Equal(t, "odoo.exceptions.ValidationError", rpcErr.Data.Name)
}

func TestResponseIDMismatch(t *testing.T) {
	tr := transport.Func(
		func(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
			return []byte(`{"jsonrpc":"2.0","id":999999,"result":[]}`), nil
		},
	)
	c, err := godoo.NewClient(
		"https://odoo.example.com",
		godoo.WithTransport(tr),
	)
	require.NoError(t, err)
	_, err = c.Call(context.Background(), common.NewVersion())
	var protocolErr *jsonrpc.ProtocolError
	require.ErrorAs(t, err, &protocolErr)
}

func TestCustomExpirySignals(t *testing.T) {
	tr := test.NewScripted(t, []test.Exchange{
		{Result: `17`},
		{Error: `{"code": 42, "message": "please sign in"}`},
		{Result: `17`},
		{Result: `[1]`},
	})
	c, err := godoo.NewClient(
		"https://odoo.example.com",
		godoo.WithTransport(tr),
		godoo.WithExpirySignals(session.Signal{Message: "please sign in"}),
	)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	ids, err := c.Search(ctx, "res.partner", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
	assert.Equal(t, 4, tr.Requests())
}

func TestConcurrentCallIDs(t *testing.T) {
	defer goleak.VerifyNone(t)
	tr := test.NewStatic(`"16.0"`)
	c, err := godoo.NewClient(
		"https://odoo.example.com",
		godoo.WithTransport(tr),
	)
	require.NoError(t, err)
	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Call(context.Background(), common.NewVersion())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	ids := tr.IDs()
	require.Len(t, ids, callers)
	seen := map[uint64]struct{}{}
	for _, id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate call id %d", id)
		seen[id] = struct{}{}
	}
}

func TestGoAsync(t *testing.T) {
	defer goleak.VerifyNone(t)
	tr := test.NewStatic(`{"server_version": "16.0"}`)
	c, err := godoo.NewClient(
		"https://odoo.example.com",
		godoo.WithTransport(tr),
	)
	require.NoError(t, err)
	ac := c.Go(context.Background(), common.NewVersion(), nil)
	completed := <-ac.Done
	assert.Same(t, ac, completed)
	require.NoError(t, completed.Error)
	var result map[string]any
	require.NoError(t, json.Unmarshal(completed.Result, &result))
	assert.Equal(t, "16.0", result["server_version"])
}

func TestLogout(t *testing.T) {
	c, _ := newTestClient(t, []test.Exchange{
		{Result: `17`},
	})
	ctx := context.Background()
	require.NoError(
		t,
		c.Authenticate(ctx, "test-db", "admin", "password1"),
	)
	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, session.StateUnauthenticated, c.Session().State())
	_, err := c.Search(ctx, "res.partner", nil, nil)
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
}
