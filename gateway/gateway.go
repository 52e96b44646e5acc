package gateway

import (
	// Go Internal Packages
	"context"

	// Local Packages
	config "tanda-go/config"
	helpers "tanda-go/helpers"
	models "tanda-go/models"
	requests "tanda-go/services/requests"
	results "tanda-go/services/results"

	// External Packages
	"go.uber.org/zap"
)

// Store is everything the gateway persists through.
type Store interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	FindTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindTransactionByTrackingID(ctx context.Context, trackingID string) (*models.Transaction, error)
	CreateFunding(ctx context.Context, f *models.Funding) error
	SaveFunding(ctx context.Context, f *models.Funding) error
	FindFundingByReference(ctx context.Context, reference string) (*models.Funding, error)
	FindFundingByTrackingID(ctx context.Context, trackingID string) (*models.Funding, error)
}

// Gateway is the single entry point to every Tanda flow.
type Gateway struct {
	conf       config.Tanda
	caller     requests.Caller
	store      Store
	logger     *zap.Logger
	status     *requests.Status
	reconciler *results.Reconciler
}

func New(conf config.Tanda, caller requests.Caller, store Store, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		conf:       conf,
		caller:     caller,
		store:      store,
		logger:     logger,
		status:     requests.NewStatus(caller, store, store, conf.OrganisationID, logger),
		reconciler: results.NewReconciler(store, store, logger),
	}
}

// B2B uses the payout result URL unless resultURL overrides it. The same
// rule applies to B2C, C2B and P2P with their own defaults.
func (g *Gateway) B2B(resultURL ...string) *requests.B2B {
	return requests.NewB2B(g.caller, g.store, g.conf.OrganisationID, pick(resultURL, g.conf.PaymentResultURL()), g.logger)
}

func (g *Gateway) B2C(resultURL ...string) *requests.B2C {
	return requests.NewB2C(g.caller, g.store, g.conf.OrganisationID, pick(resultURL, g.conf.PaymentResultURL()), g.logger)
}

func (g *Gateway) C2B(resultURL ...string) *requests.C2B {
	return requests.NewC2B(g.caller, g.store, g.conf.OrganisationID, pick(resultURL, g.conf.FundingResultURL()), g.logger)
}

func (g *Gateway) P2P(resultURL ...string) *requests.P2P {
	return requests.NewP2P(g.caller, g.store, g.conf.OrganisationID, pick(resultURL, g.conf.P2PCallbackURL()), g.logger)
}

func (g *Gateway) Status() *requests.Status {
	return g.status
}

func (g *Gateway) Results() *results.Reconciler {
	return g.reconciler
}

// ServiceProvider classifies a local mobile number.
func (g *Gateway) ServiceProvider(mobileNumber string, airtime bool) string {
	return helpers.ServiceProvider(mobileNumber, airtime)
}

func pick(override []string, fallback string) string {
	if len(override) > 0 && override[0] != "" {
		return override[0]
	}
	return fallback
}
