package api

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	// Local Packages
	config "tanda-go/config"
	models "tanda-go/models"
	memory "tanda-go/repositories/memory"
	results "tanda-go/services/results"

	// External Packages
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.CreateTransaction(context.Background(), &models.Transaction{
		Reference:       "ref-1",
		ServiceProvider: "MPESA",
		Outcome:         models.Outcome{TrackingID: "trk-1"},
	}))

	h := NewHandler(results.NewReconciler(store, store, nil), zap.NewNop(), prometheus.NewRegistry())
	server := httptest.NewServer(h.Routes(config.Tanda{
		ResultURL:    "tanda/payout/result",
		C2BResultURL: "https://app.test/tanda/c2b/result",
		P2PResultURL: "/tanda/p2p/result/",
		IPNURL:       "tanda/ipn",
	}))
	t.Cleanup(server.Close)
	return server, store
}

func post(t *testing.T, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestPayoutCallback(t *testing.T) {
	server, store := newServer(t)

	resp, body := post(t, server.URL+"/tanda/payout/result",
		`{"trackingId":"trk-1","transactionId":"TX1","status":"S000000","message":"ok","result":{"ref":"R1"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var tx models.Transaction
	require.NoError(t, json.Unmarshal([]byte(body), &tx))
	assert.Equal(t, "ref-1", tx.Reference)
	assert.Equal(t, "TX1", tx.ReceiptNumber)

	stored, err := store.FindTransactionByReference(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "R1", stored.TransactionReference)
}

func TestCallbackResponses(t *testing.T) {
	server, store := newServer(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unmatched c2b", "/tanda/c2b/result", `{"trackingId":"none","status":"S000000"}`, http.StatusNotFound},
		{"unmatched p2p", "/tanda/p2p/result", `{"reference":"none","status":"S000000"}`, http.StatusNotFound},
		{"missing status", "/tanda/payout/result", `{"trackingId":"trk-1"}`, http.StatusBadRequest},
		{"broken json", "/tanda/payout/result", `{`, http.StatusBadRequest},
		{"ipn creates", "/tanda/ipn", `{"trackingId":"trk-9","reference":"ACC","status":"S000000"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, server.URL+tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode, body)
		})
	}
	assert.Len(t, store.Fundings(), 1)
}

func TestHealthAndMetrics(t *testing.T) {
	server, _ := newServer(t)
	post(t, server.URL+"/tanda/c2b/result", `{"trackingId":"none","status":"S000000"}`)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `tanda_callbacks_total{kind="c2b",outcome="unmatched"} 1`)
}

func TestSharedCallbackPathKeepsFirstKind(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.CreateTransaction(context.Background(), &models.Transaction{
		Reference:       "ref-1",
		ServiceProvider: "TANDA",
		Outcome:         models.Outcome{TrackingID: "trk-1"},
	}))

	h := NewHandler(results.NewReconciler(store, store, nil), zap.NewNop(), nil)
	server := httptest.NewServer(h.Routes(config.Tanda{
		ResultURL:    "tanda/result",
		P2PResultURL: "https://app.test/tanda/result/",
	}))
	defer server.Close()

	// a p2p handler would match on reference and find nothing for this body
	for i := 0; i < 5; i++ {
		resp, _ := post(t, server.URL+"/tanda/result", `{"trackingId":"trk-1","reference":"other","status":"S000000"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}
