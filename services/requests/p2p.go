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
	commandP2P    = "MerchantToMerchantTandaPayment"
	providerTanda = "TANDA"
)

// P2P moves money between Tanda sub-wallets.
type P2P struct {
	initiator
	store TransactionStore
}

func NewP2P(caller Caller, store TransactionStore, orgID, resultURL string, logger *zap.Logger) *P2P {
	return &P2P{initiator: newInitiator(caller, orgID, resultURL, logger), store: store}
}

func (p *P2P) Send(ctx context.Context, senderWallet, receiverWallet, amount string, opts ...Option) (*models.Transaction, error) {
	if err := requireParams(
		[2]string{"sender_wallet", senderWallet},
		[2]string{"receiver_wallet", receiverWallet},
	); err != nil {
		return nil, err
	}
	value, text, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	req := p.request(commandP2P, providerTanda,
		param("amount", "amount", text),
		param("narration", "Narration", "wallet transfer"),
		param("ipnUrl", "Notification", p.resultURL),
		param("partyA", "Short code", senderWallet),
		param("partyB", "Short code", receiverWallet),
	)
	tx := &models.Transaction{
		ServiceProvider:   providerTanda,
		ServiceProviderID: providerTanda,
		MerchantWallet:    senderWallet,
		AccountNumber:     receiverWallet,
		Amount:            value,
	}
	return p.initiateTransaction(ctx, p.store, tx, req, opts)
}
