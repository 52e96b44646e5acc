package results

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"testing"
	"time"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"
	memory "tanda-go/repositories/memory"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func notification(t *testing.T, raw string) models.Notification {
	t.Helper()
	var n models.Notification
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	return n
}

func seedTransaction(t *testing.T, store *memory.Store, reference, trackingID string) {
	t.Helper()
	require.NoError(t, store.CreateTransaction(context.Background(), &models.Transaction{
		Reference:       reference,
		ServiceProvider: "MPESA",
		Outcome:         models.Outcome{ResponseStatus: "P202000", TrackingID: trackingID},
	}))
}

func TestPayoutSuccess(t *testing.T) {
	store := memory.NewStore()
	seedTransaction(t, store, "ref-1", "trk-1")
	r := NewReconciler(store, store, zap.NewNop())

	raw := `{"trackingId":"trk-1","transactionId":"M95VBZ","reference":"ref-1","status":"S000000","message":"Successfully processed","timestamp":"2024-06-12T13:30:29.258Z","result":{"ref":"SFC99M93DD"}}`
	tx, err := r.Payout(context.Background(), notification(t, raw), []byte(raw))
	require.NoError(t, err)
	require.NotNil(t, tx)

	stored, err := store.FindTransactionByReference(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "S000000", stored.RequestStatus)
	assert.Equal(t, "Successfully processed", stored.RequestMessage)
	assert.Equal(t, "M95VBZ", stored.ReceiptNumber)
	assert.Equal(t, "SFC99M93DD", stored.TransactionReference)
	assert.Equal(t, "2024-06-12T13:30:29.258Z", stored.Timestamp)
	assert.JSONEq(t, raw, string(stored.JSONResult))
}

func TestPayoutFailureLeavesReceipt(t *testing.T) {
	store := memory.NewStore()
	seedTransaction(t, store, "ref-1", "trk-1")
	r := NewReconciler(store, store, nil)

	raw := `{"trackingId":"trk-1","status":"E422006","message":"Insufficient balance"}`
	tx, err := r.Payout(context.Background(), notification(t, raw), []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "E422006", tx.RequestStatus)
	assert.Empty(t, tx.ReceiptNumber)
	assert.Empty(t, tx.TransactionReference)
}

func TestSuccessWithoutIdentifiersUsesPlaceholder(t *testing.T) {
	store := memory.NewStore()
	seedTransaction(t, store, "ref-1", "trk-1")
	r := NewReconciler(store, store, nil)

	raw := `{"trackingId":"trk-1","status":"S000000"}`
	tx, err := r.Payout(context.Background(), notification(t, raw), []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, models.NotAvailable, tx.ReceiptNumber)
	assert.Equal(t, models.NotAvailable, tx.TransactionReference)
}

func TestUnmatchedCallbacksAreNoOps(t *testing.T) {
	store := memory.NewStore()
	seedTransaction(t, store, "ref-1", "trk-1")
	r := NewReconciler(store, store, nil)
	ctx := context.Background()

	raw := `{"trackingId":"unknown","reference":"unknown","status":"S000000"}`
	n := notification(t, raw)

	tx, err := r.Payout(ctx, n, []byte(raw))
	require.NoError(t, err)
	assert.Nil(t, tx)

	tx, err = r.P2P(ctx, n, []byte(raw))
	require.NoError(t, err)
	assert.Nil(t, tx)

	f, err := r.C2B(ctx, n, []byte(raw))
	require.NoError(t, err)
	assert.Nil(t, f)

	tx, err = r.P2P(ctx, models.Notification{Status: "S000000"}, nil)
	require.NoError(t, err)
	assert.Nil(t, tx)

	stored, err := store.FindTransactionByReference(ctx, "ref-1")
	require.NoError(t, err)
	assert.Empty(t, stored.RequestStatus)
	assert.Empty(t, store.Fundings())
}

func TestP2PMatchesReference(t *testing.T) {
	store := memory.NewStore()
	seedTransaction(t, store, "ref-p2p", "trk-p2p")
	r := NewReconciler(store, store, nil)

	raw := `{"trackingId":"other","reference":"ref-p2p","status":"S000000","transactionId":"TX1","result":{"ref":"R1"}}`
	tx, err := r.P2P(context.Background(), notification(t, raw), []byte(raw))
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "ref-p2p", tx.Reference)
	assert.Equal(t, "TX1", tx.ReceiptNumber)
}

func TestC2BMatchesTrackingID(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.CreateFunding(context.Background(), &models.Funding{
		Reference: "fund-1",
		Outcome:   models.Outcome{TrackingID: "trk-c2b"},
	}))
	r := NewReconciler(store, store, nil)

	raw := `{"trackingId":"trk-c2b","transactionId":"QWE","status":"S000000","result":{"ref":"RCPT"}}`
	f, err := r.C2B(context.Background(), notification(t, raw), []byte(raw))
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "fund-1", f.Reference)
	assert.Equal(t, "QWE", f.ReceiptNumber)
	assert.Equal(t, "RCPT", f.TransactionReference)
}

func TestIPNAlwaysCreates(t *testing.T) {
	store := memory.NewStore()
	r := NewReconciler(store, store, nil)
	r.now = func() time.Time { return time.Date(2024, 6, 12, 13, 30, 29, 0, time.UTC) }

	raw := `{"trackingId":"108c7c01","transactionId":"M95VBZRTM7A","reference":"XNDEERI1","status":"S000000","message":"Successfully processed","timestamp":"2024-06-12T13:30:29.258Z","result":{"ref":"SFC99M93DD"}}`
	n := notification(t, raw)

	first, err := r.IPN(context.Background(), n, []byte(raw))
	require.NoError(t, err)
	second, err := r.IPN(context.Background(), n, []byte(raw))
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
	assert.Len(t, store.Fundings(), 2)

	assert.Equal(t, "XNDEERI1", first.AccountReference)
	assert.Equal(t, "108c7c01", first.TrackingID)
	assert.Equal(t, "M95VBZRTM7A", first.ReceiptNumber)
	assert.Equal(t, "SFC99M93DD", first.TransactionReference)
	assert.Equal(t, "2024-06-12 13:30:29", first.Timestamp)
	assert.Equal(t, "S000000", first.RequestStatus)
	assert.JSONEq(t, raw, string(first.JSONResult))
}

func TestDecode(t *testing.T) {
	_, err := Decode(models.CallbackPayout, nil)
	assert.True(t, errors.IsKind(err, errors.Invalid))

	_, err = Decode(models.CallbackPayout, []byte(`{"trackingId":`))
	assert.True(t, errors.IsKind(err, errors.Invalid))

	_, err = Decode(models.CallbackC2B, []byte(`{"trackingId":"t"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status")

	n, err := Decode(models.CallbackPayout, []byte(`{"trackingId":"t","status":"S000000","result":[{"id":"ref","value":"R"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "t", n.TrackingID)
}

func TestHandleRoutesByKind(t *testing.T) {
	store := memory.NewStore()
	seedTransaction(t, store, "ref-1", "trk-1")
	r := NewReconciler(store, store, nil)
	ctx := context.Background()
	raw := []byte(`{"trackingId":"trk-1","reference":"ref-1","status":"S000000"}`)
	n, err := Decode(models.CallbackPayout, raw)
	require.NoError(t, err)

	rec, err := r.Handle(ctx, models.CallbackPayout, n, raw)
	require.NoError(t, err)
	assert.IsType(t, &models.Transaction{}, rec)

	rec, err = r.Handle(ctx, models.CallbackC2B, n, raw)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = r.Handle(ctx, models.CallbackIPN, n, raw)
	require.NoError(t, err)
	assert.IsType(t, &models.Funding{}, rec)

	_, err = r.Handle(ctx, "refund", n, raw)
	assert.True(t, errors.IsKind(err, errors.Invalid))
}

func TestIPNWithoutStatusIsRecorded(t *testing.T) {
	store := memory.NewStore()
	r := NewReconciler(store, store, nil)
	raw := []byte(`{"trackingId":"trk-7","reference":"ACC7","transactionId":"TX7"}`)

	_, err := Decode(models.CallbackIPN, nil)
	assert.True(t, errors.IsKind(err, errors.Invalid))

	n, err := Decode(models.CallbackIPN, raw)
	require.NoError(t, err)

	rec, err := r.Handle(context.Background(), models.CallbackIPN, n, raw)
	require.NoError(t, err)
	f, ok := rec.(*models.Funding)
	require.True(t, ok)
	assert.Equal(t, "ACC7", f.AccountReference)
	assert.Equal(t, "TX7", f.ReceiptNumber)
	assert.Len(t, store.Fundings(), 1)
}
