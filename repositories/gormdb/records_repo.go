package gormdb

import (
	// Go Internal Packages
	"context"
	stderrors "errors"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"

	// External Packages
	"gorm.io/gorm"
)

// RecordsRepository persists transactions and fundings in a relational database.
type RecordsRepository struct {
	db *gorm.DB
}

func NewRecordsRepository(db *gorm.DB) *RecordsRepository {
	return &RecordsRepository{db: db}
}

func (r *RecordsRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return createErr("transaction", tx.Reference, r.db.WithContext(ctx).Create(tx).Error)
}

func (r *RecordsRepository) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == 0 {
		return errors.NotFoundErr("transaction", tx.Reference)
	}
	return r.db.WithContext(ctx).Save(tx).Error
}

func (r *RecordsRepository) FindTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("payment_reference = ?", reference).First(&tx).Error
	return findResult(&tx, "transaction", reference, err)
}

// FindTransactionByTrackingID returns the latest transaction carrying trackingID.
func (r *RecordsRepository) FindTransactionByTrackingID(ctx context.Context, trackingID string) (*models.Transaction, error) {
	if trackingID == "" {
		return nil, errors.NotFoundErr("transaction", trackingID)
	}
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).Order("id desc").First(&tx).Error
	return findResult(&tx, "transaction", trackingID, err)
}

func (r *RecordsRepository) CreateFunding(ctx context.Context, f *models.Funding) error {
	return createErr("funding", f.Reference, r.db.WithContext(ctx).Create(f).Error)
}

func (r *RecordsRepository) SaveFunding(ctx context.Context, f *models.Funding) error {
	if f.ID == 0 {
		return errors.NotFoundErr("funding", f.Reference)
	}
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *RecordsRepository) FindFundingByReference(ctx context.Context, reference string) (*models.Funding, error) {
	var f models.Funding
	err := r.db.WithContext(ctx).Where("fund_reference = ?", reference).First(&f).Error
	return findResult(&f, "funding", reference, err)
}

func (r *RecordsRepository) FindFundingByTrackingID(ctx context.Context, trackingID string) (*models.Funding, error) {
	if trackingID == "" {
		return nil, errors.NotFoundErr("funding", trackingID)
	}
	var f models.Funding
	err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).Order("id desc").First(&f).Error
	return findResult(&f, "funding", trackingID, err)
}

func createErr(entity, reference string, err error) error {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.E(errors.Conflict, "duplicate "+entity+" reference "+reference, err)
	}
	return err
}

func findResult[T any](record *T, entity, key string, err error) (*T, error) {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundErr(entity, key)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}
