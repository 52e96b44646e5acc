package requests

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"

	// External Packages
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const commandC2B = "CustomerToMerchantMobileMoneyPayment"

// C2B asks a customer to pay into a merchant wallet (STK push style).
type C2B struct {
	initiator
	store FundingStore
}

func NewC2B(caller Caller, store FundingStore, orgID, resultURL string, logger *zap.Logger) *C2B {
	return &C2B{initiator: newInitiator(caller, orgID, resultURL, logger), store: store}
}

func (c *C2B) Request(ctx context.Context, serviceProviderID, merchantWallet, mobileNumber, amount string, opts ...FundingOption) (*models.Funding, error) {
	if err := requireParams(
		[2]string{"service_provider_id", serviceProviderID},
		[2]string{"merchant_wallet", merchantWallet},
		[2]string{"mobile_number", mobileNumber},
	); err != nil {
		return nil, err
	}
	value, text, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	req := c.request(commandC2B, serviceProviderID,
		param("amount", "Amount", text),
		param("narration", "Narration", "customer payment"),
		param("ipnUrl", "Notification URL", c.resultURL),
		param("shortCode", "Short Code", merchantWallet),
		param("accountNumber", "Phone Number", mobileNumber),
	)
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, errors.E(errors.Internal, "cannot encode tanda request", err)
	}

	funding := &models.Funding{
		Reference:       req.Reference,
		ServiceProvider: serviceProviderID,
		AccountNumber:   mobileNumber,
		MerchantWallet:  merchantWallet,
		ShortCode:       merchantWallet,
		Amount:          value,
		Outcome:         models.Outcome{JSONRequest: datatypes.JSON(encoded)},
	}
	for _, opt := range opts {
		opt(funding)
	}

	if err := c.store.CreateFunding(ctx, funding); err != nil {
		return nil, fmt.Errorf("create funding %s: %w", funding.Reference, err)
	}

	raw, resp := c.submit(ctx, req)
	if raw != nil {
		funding.JSONResponse = datatypes.JSON(raw)
	}
	funding.ApplyResponse(resp)

	if err := c.store.SaveFunding(ctx, funding); err != nil {
		return nil, fmt.Errorf("save funding %s: %w", funding.Reference, err)
	}

	c.logger.Info("tanda funding requested", zap.String("reference", funding.Reference),
		zap.String("status", funding.ResponseStatus))
	return funding, nil
}
