package gormdb

import (
	// Go Internal Packages
	"context"
	"fmt"
	"strings"
	"testing"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"

	// External Packages
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newRepo(t *testing.T) *RecordsRepository {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRecordsRepository(db)
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	tx := &models.Transaction{
		Reference:       "ref-1",
		ServiceProvider: "MPESA",
		MerchantWallet:  "500100",
		AccountNumber:   "0712345678",
		Amount:          decimal.RequireFromString("100.50"),
		Outcome:         models.Outcome{JSONRequest: datatypes.JSON(`{"commandId":"x"}`)},
	}
	require.NoError(t, repo.CreateTransaction(ctx, tx))
	assert.NotZero(t, tx.ID)

	tx.ApplyResponse(models.ProviderResponse{Status: "P202000", Message: "ok", TrackingID: "trk-1"})
	require.NoError(t, repo.SaveTransaction(ctx, tx))

	byRef, err := repo.FindTransactionByReference(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "trk-1", byRef.TrackingID)
	assert.True(t, byRef.Amount.Equal(decimal.RequireFromString("100.5")))
	assert.JSONEq(t, `{"commandId":"x"}`, string(byRef.JSONRequest))

	byTracking, err := repo.FindTransactionByTrackingID(ctx, "trk-1")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, byTracking.ID)
}

func TestDuplicateReferenceConflicts(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.CreateTransaction(ctx, &models.Transaction{Reference: "dup", ServiceProvider: "MPESA"}))
	err := repo.CreateTransaction(ctx, &models.Transaction{Reference: "dup", ServiceProvider: "MPESA"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.Conflict))

	require.NoError(t, repo.CreateFunding(ctx, &models.Funding{Reference: "dup"}))
	err = repo.CreateFunding(ctx, &models.Funding{Reference: "dup"})
	assert.True(t, errors.IsKind(err, errors.Conflict))
}

func TestMissingRecordsAreNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.FindTransactionByReference(ctx, "missing")
	assert.True(t, errors.IsKind(err, errors.NotFound))
	_, err = repo.FindTransactionByTrackingID(ctx, "")
	assert.True(t, errors.IsKind(err, errors.NotFound))
	_, err = repo.FindFundingByReference(ctx, "missing")
	assert.True(t, errors.IsKind(err, errors.NotFound))
	_, err = repo.FindFundingByTrackingID(ctx, "missing")
	assert.True(t, errors.IsKind(err, errors.NotFound))

	err = repo.SaveFunding(ctx, &models.Funding{Reference: "never-created"})
	assert.True(t, errors.IsKind(err, errors.NotFound))
}

func TestFundingByTrackingID(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	f := &models.Funding{Reference: "fund-1", ServiceProvider: "MPESA", Outcome: models.Outcome{TrackingID: "trk-f"}}
	require.NoError(t, repo.CreateFunding(ctx, f))

	found, err := repo.FindFundingByTrackingID(ctx, "trk-f")
	require.NoError(t, err)
	assert.Equal(t, "fund-1", found.Reference)

	found.ApplyNotification(models.Notification{Status: "S000000", TransactionID: "QWE", Result: models.ResultField{Ref: "R1"}})
	require.NoError(t, repo.SaveFunding(ctx, found))

	again, err := repo.FindFundingByReference(ctx, "fund-1")
	require.NoError(t, err)
	assert.Equal(t, "QWE", again.ReceiptNumber)
	assert.Equal(t, "R1", again.TransactionReference)
}
