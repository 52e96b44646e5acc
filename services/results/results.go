package results

import (
	// Go Internal Packages
	"context"
	"fmt"
	"time"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"
	utils "tanda-go/utils"

	// External Packages
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	FindTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindTransactionByTrackingID(ctx context.Context, trackingID string) (*models.Transaction, error)
}

type FundingStore interface {
	CreateFunding(ctx context.Context, f *models.Funding) error
	SaveFunding(ctx context.Context, f *models.Funding) error
	FindFundingByTrackingID(ctx context.Context, trackingID string) (*models.Funding, error)
}

// Reconciler applies provider callbacks to stored records. Payout, P2P and
// C2B callbacks only update a matching record and return nil when there is
// none; IPN callbacks always create a funding.
type Reconciler struct {
	transactions TransactionStore
	fundings     FundingStore
	logger       *zap.Logger
	now          func() time.Time
	newRef       func() string
}

func NewReconciler(transactions TransactionStore, fundings FundingStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		transactions: transactions,
		fundings:     fundings,
		logger:       logger,
		now:          time.Now,
		newRef:       func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Payout reconciles a B2C or B2B result by tracking id.
func (r *Reconciler) Payout(ctx context.Context, n models.Notification, raw []byte) (*models.Transaction, error) {
	tx, err := r.transactions.FindTransactionByTrackingID(ctx, n.TrackingID)
	return r.applyTransaction(ctx, "payout", tx, err, n, raw)
}

// P2P reconciles a wallet transfer result by the reference we generated.
func (r *Reconciler) P2P(ctx context.Context, n models.Notification, raw []byte) (*models.Transaction, error) {
	if n.Reference == "" {
		return nil, nil
	}
	tx, err := r.transactions.FindTransactionByReference(ctx, n.Reference)
	return r.applyTransaction(ctx, "p2p", tx, err, n, raw)
}

func (r *Reconciler) applyTransaction(ctx context.Context, kind string, tx *models.Transaction, err error,
	n models.Notification, raw []byte) (*models.Transaction, error) {
	if errors.IsKind(err, errors.NotFound) {
		r.logger.Info("no transaction for callback", zap.String("kind", kind),
			zap.String("tracking_id", n.TrackingID), zap.String("reference", n.Reference))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tx.JSONResult = datatypes.JSON(raw)
	tx.ApplyNotification(n)
	if err := r.transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("save transaction %s: %w", tx.Reference, err)
	}

	r.logger.Info("transaction reconciled", zap.String("kind", kind), zap.String("reference", tx.Reference),
		zap.String("status", tx.RequestStatus))
	return tx, nil
}

// C2B reconciles a customer payment result by tracking id.
func (r *Reconciler) C2B(ctx context.Context, n models.Notification, raw []byte) (*models.Funding, error) {
	f, err := r.fundings.FindFundingByTrackingID(ctx, n.TrackingID)
	if errors.IsKind(err, errors.NotFound) {
		r.logger.Info("no funding for callback", zap.String("tracking_id", n.TrackingID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f.JSONResult = datatypes.JSON(raw)
	f.ApplyNotification(n)
	if err := r.fundings.SaveFunding(ctx, f); err != nil {
		return nil, fmt.Errorf("save funding %s: %w", f.Reference, err)
	}

	r.logger.Info("funding reconciled", zap.String("reference", f.Reference), zap.String("status", f.RequestStatus))
	return f, nil
}

// IPN records an unsolicited payment. The provider reference is kept as the
// account reference since it is not guaranteed unique across notifications.
func (r *Reconciler) IPN(ctx context.Context, n models.Notification, raw []byte) (*models.Funding, error) {
	f := &models.Funding{
		Reference:        r.newRef(),
		AccountReference: n.Reference,
		Outcome: models.Outcome{
			TrackingID:           n.TrackingID,
			RequestStatus:        n.Status,
			RequestMessage:       n.Message,
			ReceiptNumber:        n.TransactionID,
			TransactionReference: n.Result.Ref,
			Timestamp:            utils.FormatTimestamp(r.now()),
			JSONResult:           datatypes.JSON(raw),
		},
	}
	if err := r.fundings.CreateFunding(ctx, f); err != nil {
		return nil, fmt.Errorf("create ipn funding: %w", err)
	}

	r.logger.Info("ipn recorded", zap.String("reference", f.Reference), zap.String("account_reference", n.Reference),
		zap.String("status", n.Status))
	return f, nil
}
