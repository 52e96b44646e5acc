package mongodb

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"time"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	transactionsCollection = "tanda_transactions"
	fundingsCollection     = "tanda_fundings"
)

// RecordsRepository stores transactions and fundings as documents keyed by
// their reference.
type RecordsRepository struct {
	transactions *mongo.Collection
	fundings     *mongo.Collection
}

func NewRecordsRepository(client *mongo.Client, database string) *RecordsRepository {
	db := client.Database(database)
	return &RecordsRepository{
		transactions: db.Collection(transactionsCollection),
		fundings:     db.Collection(fundingsCollection),
	}
}

// EnsureIndexes creates the tracking id lookups used by callbacks.
func (r *RecordsRepository) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "outcome.tracking_id", Value: 1}}}
	if _, err := r.transactions.Indexes().CreateOne(ctx, idx); err != nil {
		return err
	}
	_, err := r.fundings.Indexes().CreateOne(ctx, idx)
	return err
}

func (r *RecordsRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	stamp(&tx.CreatedAt, &tx.UpdatedAt)
	_, err := r.transactions.InsertOne(ctx, tx.Transform())
	return insertErr("transaction", tx.Reference, err)
}

func (r *RecordsRepository) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now()
	res, err := r.transactions.ReplaceOne(ctx, bson.M{"_id": tx.Reference}, tx.Transform())
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.NotFoundErr("transaction", tx.Reference)
	}
	return nil
}

func (r *RecordsRepository) FindTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return r.findTransaction(ctx, bson.M{"_id": reference}, reference)
}

func (r *RecordsRepository) FindTransactionByTrackingID(ctx context.Context, trackingID string) (*models.Transaction, error) {
	if trackingID == "" {
		return nil, errors.NotFoundErr("transaction", trackingID)
	}
	return r.findTransaction(ctx, bson.M{"outcome.tracking_id": trackingID}, trackingID)
}

func (r *RecordsRepository) findTransaction(ctx context.Context, filter bson.M, key string) (*models.Transaction, error) {
	var doc models.MongoTransaction
	err := r.transactions.FindOne(ctx, filter, latest()).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.NotFoundErr("transaction", key)
	}
	if err != nil {
		return nil, err
	}
	tx := doc.Record()
	return &tx, nil
}

func (r *RecordsRepository) CreateFunding(ctx context.Context, f *models.Funding) error {
	stamp(&f.CreatedAt, &f.UpdatedAt)
	_, err := r.fundings.InsertOne(ctx, f.Transform())
	return insertErr("funding", f.Reference, err)
}

func (r *RecordsRepository) SaveFunding(ctx context.Context, f *models.Funding) error {
	f.UpdatedAt = time.Now()
	res, err := r.fundings.ReplaceOne(ctx, bson.M{"_id": f.Reference}, f.Transform())
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.NotFoundErr("funding", f.Reference)
	}
	return nil
}

func (r *RecordsRepository) FindFundingByReference(ctx context.Context, reference string) (*models.Funding, error) {
	return r.findFunding(ctx, bson.M{"_id": reference}, reference)
}

func (r *RecordsRepository) FindFundingByTrackingID(ctx context.Context, trackingID string) (*models.Funding, error) {
	if trackingID == "" {
		return nil, errors.NotFoundErr("funding", trackingID)
	}
	return r.findFunding(ctx, bson.M{"outcome.tracking_id": trackingID}, trackingID)
}

func (r *RecordsRepository) findFunding(ctx context.Context, filter bson.M, key string) (*models.Funding, error) {
	var doc models.MongoFunding
	err := r.fundings.FindOne(ctx, filter, latest()).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.NotFoundErr("funding", key)
	}
	if err != nil {
		return nil, err
	}
	f := doc.Record()
	return &f, nil
}

func latest() *options.FindOneOptions {
	return options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	*created = now
	*updated = now
}

func insertErr(entity, reference string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.E(errors.Conflict, "duplicate "+entity+" reference "+reference, err)
	}
	return err
}
