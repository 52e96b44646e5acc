package requests

import (
	// Go Internal Packages
	"context"

	// Local Packages
	models "tanda-go/models"

	// External Packages
	"go.uber.org/zap"
)

const (
	commandBuyGoods = "MerchantTo3rdPartyMerchantPayment"
	commandPaybill  = "MerchantTo3rdPartyBusinessPayment"

	providerMpesa = "MPESA"
)

// B2B pays other businesses from a merchant wallet.
type B2B struct {
	initiator
	store TransactionStore
}

func NewB2B(caller Caller, store TransactionStore, orgID, resultURL string, logger *zap.Logger) *B2B {
	return &B2B{initiator: newInitiator(caller, orgID, resultURL, logger), store: store}
}

// BuyGoods pays a till number.
func (b *B2B) BuyGoods(ctx context.Context, merchantWallet, amount, till string, opts ...Option) (*models.Transaction, error) {
	if err := requireParams(
		[2]string{"merchant_wallet", merchantWallet},
		[2]string{"till", till},
	); err != nil {
		return nil, err
	}
	value, text, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	req := b.request(commandBuyGoods, providerMpesa,
		param("amount", "amount", text),
		param("narration", "Narration", "payment to till"),
		param("ipnUrl", "Notification", b.resultURL),
		param("partyA", "Short Code", merchantWallet),
		param("partyB", "Till Number", till),
	)
	tx := &models.Transaction{
		ServiceProvider:   providerMpesa,
		ServiceProviderID: providerMpesa,
		MerchantWallet:    merchantWallet,
		AccountNumber:     till,
		Amount:            value,
	}
	return b.initiateTransaction(ctx, b.store, tx, req, opts)
}

// Paybill pays a business number with an account reference.
func (b *B2B) Paybill(ctx context.Context, merchantWallet, amount, paybill, accountNumber string, opts ...Option) (*models.Transaction, error) {
	if err := requireParams(
		[2]string{"merchant_wallet", merchantWallet},
		[2]string{"paybill", paybill},
		[2]string{"account_number", accountNumber},
	); err != nil {
		return nil, err
	}
	value, text, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	req := b.request(commandPaybill, providerMpesa,
		param("amount", "amount", text),
		param("narration", "Narration", "payment to paybill"),
		param("ipnUrl", "Notification", b.resultURL),
		param("shortCode", "Short Code", merchantWallet),
		param("businessNumber", "Business Number", paybill),
		param("accountReference", "Account reference", accountNumber),
	)
	tx := &models.Transaction{
		ServiceProvider:   providerMpesa,
		ServiceProviderID: providerMpesa,
		MerchantWallet:    merchantWallet,
		AccountNumber:     paybill,
		Contact:           accountNumber,
		Amount:            value,
	}
	return b.initiateTransaction(ctx, b.store, tx, req, opts)
}
