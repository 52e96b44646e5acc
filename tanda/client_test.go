package tanda

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	// Local Packages
	config "tanda-go/config"
	errors "tanda-go/errors"
	memory "tanda-go/repositories/memory"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTanda struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	apiCalls    atomic.Int32
	tokenDelay  time.Duration
	expiresIn   int64
	apiHandler  http.HandlerFunc
	lastRequest atomic.Value
}

func newFakeTanda(t *testing.T) *fakeTanda {
	f := &fakeTanda{expiresIn: 3600}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		time.Sleep(f.tokenDelay)
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" || r.FormValue("grant_type") != "client_credentials" ||
			r.FormValue("client_id") != "client" || r.FormValue("client_secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Client authentication failed"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": f.expiresIn})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		f.lastRequest.Store(r.Header.Clone())
		if f.apiHandler != nil {
			f.apiHandler(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"P202000","message":"accepted","trackingId":"trk-1"}`))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func testConfig(baseURL string) config.Tanda {
	return config.Tanda{
		ClientID:       "client",
		ClientSecret:   "secret",
		OrganisationID: "org-1",
		Mode:           config.ModeSandbox,
		AuthBaseURL:    baseURL,
		APIBaseURL:     baseURL,
		BaseResultURL:  "https://merchant.example.com",
		ResultURL:      "tanda/payout/result",
		C2BResultURL:   "tanda/c2b/result",
		P2PResultURL:   "tanda/p2p/result",
		IPNURL:         "tanda/ipn",
		Timeout:        2 * time.Second,
		TokenTTLMargin: 2 * time.Minute,
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.ClientSecret = ""

	_, err := NewClient(cfg, memory.NewTokenCache(), zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.Config))
	assert.Contains(t, err.Error(), "tanda.client_secret")
}

func TestTokenIsCachedUntilExpiry(t *testing.T) {
	fake := newFakeTanda(t)
	now := time.Now()
	cache := memory.NewTokenCacheWithClock(func() time.Time { return now })

	client, err := NewClient(testConfig(fake.server.URL), cache, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	var out json.RawMessage
	require.NoError(t, client.Call(ctx, http.MethodPost, "io/v3/organizations/org-1/request", map[string]string{"a": "b"}, &out))
	require.NoError(t, client.Call(ctx, http.MethodPost, "io/v3/organizations/org-1/request", map[string]string{"a": "b"}, &out))
	assert.Equal(t, int32(1), fake.tokenCalls.Load())
	assert.Equal(t, int32(2), fake.apiCalls.Load())

	// 3600s minus the two minute margin
	now = now.Add(57 * time.Minute)
	_, err = client.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.tokenCalls.Load())

	now = now.Add(time.Minute)
	_, err = client.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestConcurrentTokenRefreshIsCollapsed(t *testing.T) {
	fake := newFakeTanda(t)
	fake.tokenDelay = 50 * time.Millisecond

	client, err := NewClient(testConfig(fake.server.URL), memory.NewTokenCache(), zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := client.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fake.tokenCalls.Load())
}

func TestCallSendsBearerAndJSON(t *testing.T) {
	fake := newFakeTanda(t)
	var body map[string]string
	fake.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/io/v3/organizations/org-1/request", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"status":"P202000"}`))
	}

	client, err := NewClient(testConfig(fake.server.URL), memory.NewTokenCache(), zap.NewNop())
	require.NoError(t, err)

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, client.Call(context.Background(), http.MethodPost, "/io/v3/organizations/org-1/request", map[string]string{"commandId": "X"}, &out))

	headers := fake.lastRequest.Load().(http.Header)
	assert.Equal(t, "Bearer tok-1", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "X", body["commandId"])
	assert.Equal(t, "P202000", out.Status)
}

func TestCallErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Invalid amount"}`, "Invalid amount"},
		{"error description", http.StatusForbidden, `{"error_description":"Access denied"}`, "Access denied"},
		{"not json", http.StatusInternalServerError, `<html>oops</html>`, "resulted in a 500 Internal Server Error response"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeTanda(t)
			fake.apiHandler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}

			client, err := NewClient(testConfig(fake.server.URL), memory.NewTokenCache(), zap.NewNop())
			require.NoError(t, err)

			err = client.Call(context.Background(), http.MethodGet, "io/v3/organizations/org-1/request/abc", nil, nil)
			pe, ok := errors.AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, pe.StatusCode)
			assert.Contains(t, pe.Message, tc.message)
		})
	}
}

func TestTokenRejected(t *testing.T) {
	fake := newFakeTanda(t)
	cfg := testConfig(fake.server.URL)
	cfg.ClientSecret = "wrong"

	client, err := NewClient(cfg, memory.NewTokenCache(), zap.NewNop())
	require.NoError(t, err)

	err = client.Call(context.Background(), http.MethodPost, "io/v3/organizations/org-1/request", map[string]string{}, nil)
	pe, ok := errors.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, "Client authentication failed", pe.Message)
	assert.Equal(t, int32(0), fake.apiCalls.Load())
}

func TestUnauthorizedDropsCachedToken(t *testing.T) {
	fake := newFakeTanda(t)
	fake.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}
	cache := memory.NewTokenCache()
	client, err := NewClient(testConfig(fake.server.URL), cache, zap.NewNop())
	require.NoError(t, err)

	err = client.Call(context.Background(), http.MethodGet, "x", nil, nil)
	require.Error(t, err)

	_, ok, _ := cache.Get(context.Background(), tokenCacheKey)
	assert.False(t, ok)
}

func TestTransportFailures(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		fake := newFakeTanda(t)
		fake.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}
		cfg := testConfig(fake.server.URL)
		cfg.Timeout = 100 * time.Millisecond

		client, err := NewClient(cfg, memory.NewTokenCache(), zap.NewNop())
		require.NoError(t, err)

		err = client.Call(context.Background(), http.MethodGet, "x", nil, nil)
		pe, ok := errors.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, errors.CodeTimeout, pe.Code)
		assert.Zero(t, pe.StatusCode)
	})

	t.Run("connection refused", func(t *testing.T) {
		fake := newFakeTanda(t)
		url := fake.server.URL
		fake.server.Close()

		client, err := NewClient(testConfig(url), memory.NewTokenCache(), zap.NewNop())
		require.NoError(t, err)

		_, err = client.Token(context.Background())
		pe, ok := errors.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, errors.CodeTransport, pe.Code)
	})
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	fake := newFakeTanda(t)
	fake.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}

	client, err := NewClient(testConfig(fake.server.URL), memory.NewTokenCache(), zap.NewNop(),
		WithBreaker(config.Breaker{FailureThreshold: 2, Timeout: time.Minute}))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err = client.Call(ctx, http.MethodGet, "x", nil, nil)
		pe, ok := errors.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
	}

	err = client.Call(ctx, http.MethodGet, "x", nil, nil)
	pe, ok := errors.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeCircuitOpen, pe.Code)
	assert.Equal(t, int32(2), fake.apiCalls.Load())
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	fake := newFakeTanda(t)
	fake.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}

	client, err := NewClient(testConfig(fake.server.URL), memory.NewTokenCache(), zap.NewNop(),
		WithBreaker(config.Breaker{FailureThreshold: 1}))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err = client.Call(context.Background(), http.MethodGet, "x", nil, nil)
		pe, ok := errors.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	}
	assert.Equal(t, int32(3), fake.apiCalls.Load())
}

func TestTokenTTL(t *testing.T) {
	c := &Client{cfg: config.Tanda{TokenTTLMargin: 2 * time.Minute}}
	assert.Equal(t, 58*time.Minute, c.tokenTTL(3600))
	assert.Equal(t, defaultTokenTTL, c.tokenTTL(0))
	assert.Equal(t, 30*time.Second, c.tokenTTL(60))
}
