package requests

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	// Local Packages
	models "tanda-go/models"
	utils "tanda-go/utils"

	// External Packages
	"go.uber.org/zap"
)

// Status queries the provider for the state of earlier requests.
type Status struct {
	caller       Caller
	transactions TransactionStore
	fundings     FundingStore
	endpoint     string
	logger       *zap.Logger
}

func NewStatus(caller Caller, transactions TransactionStore, fundings FundingStore, orgID string, logger *zap.Logger) *Status {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Status{
		caller:       caller,
		transactions: transactions,
		fundings:     fundings,
		endpoint:     requestEndpoint(orgID),
		logger:       logger,
	}
}

// Check fetches the current state of reference. Provider failures are
// returned as an error status rather than an error.
func (s *Status) Check(ctx context.Context, reference, shortCode string) models.StatusResult {
	path := fmt.Sprintf("%s/%s?shortCode=%s", s.endpoint, url.PathEscape(reference), url.QueryEscape(shortCode))

	var raw json.RawMessage
	if err := s.caller.Call(ctx, http.MethodGet, path, nil, &raw); err != nil {
		s.logger.Error("tanda status check failed", zap.String("reference", reference), zap.Error(err))
		resp := responseFromError(err)
		return models.StatusResult{RequestStatus: resp.Status, RequestMessage: resp.Message}
	}

	resp, err := models.DecodeProviderResponse(raw)
	if err != nil {
		s.logger.Error("cannot decode tanda status", zap.String("reference", reference), zap.Error(err))
		return models.StatusResult{RequestStatus: models.UnknownStatus, RequestMessage: err.Error()}
	}

	code := models.StatusCode(resp.Status)
	if resp.Status != "" && !code.Known() {
		s.logger.Warn("unmapped tanda status code", zap.String("status", resp.Status))
	}

	result := models.StatusResult{
		RequestStatus:  orDefault(resp.Status, models.UnknownStatus),
		RequestMessage: orDefault(resp.Message, models.NoStatusMessage),
	}
	if code.IsSuccessful() {
		result.Receipt = resp.Receipt()
		result.CompletedAt = utils.ReformatTimestamp(resp.DatetimeCompleted)
	}
	return result
}

// PaymentCheck refreshes a transaction from the provider.
func (s *Status) PaymentCheck(ctx context.Context, reference string) (*models.Transaction, error) {
	tx, err := s.transactions.FindTransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	tx.ApplyStatus(s.Check(ctx, reference, orDefault(tx.MerchantWallet, tx.ShortCode)))
	if err := s.transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("save transaction %s: %w", reference, err)
	}
	return tx, nil
}

// FundingCheck refreshes a funding from the provider.
func (s *Status) FundingCheck(ctx context.Context, reference string) (*models.Funding, error) {
	f, err := s.fundings.FindFundingByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	f.ApplyStatus(s.Check(ctx, reference, orDefault(f.MerchantWallet, f.ShortCode)))
	if err := s.fundings.SaveFunding(ctx, f); err != nil {
		return nil, fmt.Errorf("save funding %s: %w", reference, err)
	}
	return f, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
