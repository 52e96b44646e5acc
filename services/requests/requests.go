package requests

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"

	// External Packages
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Caller is the part of the Tanda client the initiators need.
type Caller interface {
	Call(ctx context.Context, method, endpoint string, payload any, out any) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	FindTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
}

type FundingStore interface {
	CreateFunding(ctx context.Context, f *models.Funding) error
	SaveFunding(ctx context.Context, f *models.Funding) error
	FindFundingByReference(ctx context.Context, reference string) (*models.Funding, error)
}

// NewReference returns a time-ordered unique reference for a new record.
func NewReference() string {
	return uuid.Must(uuid.NewV7()).String()
}

func requestEndpoint(orgID string) string {
	return fmt.Sprintf("io/v3/organizations/%s/request", orgID)
}

// Option sets caller-owned fields on a transaction before it is created.
type Option func(*models.Transaction)

func WithPaymentID(id uint) Option {
	return func(tx *models.Transaction) { tx.PaymentID = &id }
}

func WithContact(contact string) Option {
	return func(tx *models.Transaction) { tx.Contact = contact }
}

func WithRegisteredName(name string) Option {
	return func(tx *models.Transaction) { tx.RegisteredName = name }
}

// WithTransactable links the transaction to the caller's owning entity.
func WithTransactable(kind string, id uint) Option {
	return func(tx *models.Transaction) {
		tx.TransactableType = kind
		tx.TransactableID = id
	}
}

func WithShortCode(code string) Option {
	return func(tx *models.Transaction) { tx.ShortCode = code }
}

// FundingOption sets caller-owned fields on a funding before it is created.
type FundingOption func(*models.Funding)

func WithFundingID(id uint) FundingOption {
	return func(f *models.Funding) { f.FundingID = &id }
}

// initiator holds what every request type shares.
type initiator struct {
	caller    Caller
	logger    *zap.Logger
	endpoint  string
	resultURL string
	newRef    func() string
}

func newInitiator(caller Caller, orgID, resultURL string, logger *zap.Logger) initiator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return initiator{
		caller:    caller,
		logger:    logger,
		endpoint:  requestEndpoint(orgID),
		resultURL: resultURL,
		newRef:    NewReference,
	}
}

func (i initiator) request(commandID, serviceProviderID string, params ...models.Parameter) models.ProviderRequest {
	return models.ProviderRequest{
		CommandID:         commandID,
		ServiceProviderID: serviceProviderID,
		Reference:         i.newRef(),
		Request:           params,
	}
}

// submit posts the request. Failures are folded into the returned response
// so the record still gets an error status.
func (i initiator) submit(ctx context.Context, req models.ProviderRequest) (json.RawMessage, models.ProviderResponse) {
	var raw json.RawMessage
	if err := i.caller.Call(ctx, http.MethodPost, i.endpoint, req, &raw); err != nil {
		i.logger.Error("tanda request failed", zap.String("command", req.CommandID),
			zap.String("reference", req.Reference), zap.Error(err))
		return nil, responseFromError(err)
	}

	resp, err := models.DecodeProviderResponse(raw)
	if err != nil {
		i.logger.Error("cannot decode tanda response", zap.String("reference", req.Reference), zap.Error(err))
		return raw, models.ProviderResponse{Status: models.UnknownErrorStatus, Message: err.Error()}
	}
	if resp.Status != "" && !models.StatusCode(resp.Status).Known() {
		i.logger.Warn("unmapped tanda status code", zap.String("status", resp.Status))
	}
	return raw, resp
}

func (i initiator) initiateTransaction(ctx context.Context, store TransactionStore, tx *models.Transaction,
	req models.ProviderRequest, opts []Option) (*models.Transaction, error) {
	for _, opt := range opts {
		opt(tx)
	}

	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, errors.E(errors.Internal, "cannot encode tanda request", err)
	}
	tx.Reference = req.Reference
	tx.JSONRequest = datatypes.JSON(encoded)

	if err := store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction %s: %w", tx.Reference, err)
	}

	raw, resp := i.submit(ctx, req)
	if raw != nil {
		tx.JSONResponse = datatypes.JSON(raw)
	}
	tx.ApplyResponse(resp)

	if err := store.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("save transaction %s: %w", tx.Reference, err)
	}

	i.logger.Info("tanda transaction submitted", zap.String("command", req.CommandID),
		zap.String("reference", tx.Reference), zap.String("status", tx.ResponseStatus))
	return tx, nil
}

func responseFromError(err error) models.ProviderResponse {
	if pe, ok := errors.AsProviderError(err); ok {
		return models.ProviderResponse{Status: pe.Code, Message: pe.Error()}
	}
	return models.ProviderResponse{Status: models.UnknownErrorStatus, Message: err.Error()}
}

func param(id, label, value string) models.Parameter {
	return models.Parameter{ID: id, Label: label, Value: models.ParamValue(value)}
}

// parseAmount accepts a positive decimal amount and returns it with the
// trimmed text that is sent to the provider.
func parseAmount(amount string) (decimal.Decimal, string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, "", errors.EmptyParamErr("amount")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, "", errors.InvalidParamsErr(fmt.Errorf("amount %q: %w", amount, err))
	}
	if !d.IsPositive() {
		return decimal.Zero, "", errors.InvalidParamsErr(fmt.Errorf("amount %q must be positive", amount))
	}
	return d, amount, nil
}

// requireParams reports every empty field as one validation error.
func requireParams(fields ...[2]string) error {
	ve := errors.ValidationErrs()
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			ve.Add(f[0], "cannot be empty")
		}
	}
	if err := ve.Err(); err != nil {
		return errors.ValidationFailedErr(err)
	}
	return nil
}
