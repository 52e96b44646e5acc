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
	commandB2CMobile        = "MerchantToCustomerMobileMoneyPayment"
	commandB2CBank          = "MerchantToCustomerBankPayment"
	commandB2CInternational = "InternationalMoneyTransferBank"

	providerPesalink = "PESALINK"
)

// B2C pays out from a merchant wallet to customers.
type B2C struct {
	initiator
	store TransactionStore
}

func NewB2C(caller Caller, store TransactionStore, orgID, resultURL string, logger *zap.Logger) *B2C {
	return &B2C{initiator: newInitiator(caller, orgID, resultURL, logger), store: store}
}

// Mobile sends money to a mobile money account.
func (b *B2C) Mobile(ctx context.Context, merchantWallet, serviceProviderID, amount, mobileNumber string, opts ...Option) (*models.Transaction, error) {
	if err := requireParams(
		[2]string{"merchant_wallet", merchantWallet},
		[2]string{"service_provider_id", serviceProviderID},
		[2]string{"mobile_number", mobileNumber},
	); err != nil {
		return nil, err
	}
	value, text, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	req := b.request(commandB2CMobile, serviceProviderID,
		param("amount", "Amount", text),
		param("narration", "Narration", "Mobile payment"),
		param("ipnUrl", "Result URL", b.resultURL),
		param("shortCode", "Merchant Wallet", merchantWallet),
		param("accountNumber", "Mobile Number", mobileNumber),
	)
	tx := &models.Transaction{
		ServiceProvider:   serviceProviderID,
		ServiceProviderID: serviceProviderID,
		MerchantWallet:    merchantWallet,
		AccountNumber:     mobileNumber,
		Amount:            value,
	}
	return b.initiateTransaction(ctx, b.store, tx, req, opts)
}

// Bank sends money to a local bank account over Pesalink.
func (b *B2C) Bank(ctx context.Context, merchantWallet, bankCode, amount, accountName, accountNumber string, opts ...Option) (*models.Transaction, error) {
	if err := requireParams(
		[2]string{"merchant_wallet", merchantWallet},
		[2]string{"bank_code", bankCode},
		[2]string{"account_name", accountName},
		[2]string{"account_number", accountNumber},
	); err != nil {
		return nil, err
	}
	value, text, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	req := b.request(commandB2CBank, providerPesalink,
		param("amount", "Amount", text),
		param("narration", "Narration", "Bank payment"),
		param("ipnUrl", "Result URL", b.resultURL),
		param("shortCode", "Merchant Wallet", merchantWallet),
		param("accountNumber", "Bank Account Number", accountNumber),
		param("bankCode", "Bank Code", bankCode),
		param("accountName", "Account Name", accountName),
	)
	tx := &models.Transaction{
		ServiceProvider:   providerPesalink,
		ServiceProviderID: providerPesalink,
		MerchantWallet:    merchantWallet,
		AccountNumber:     accountNumber,
		Amount:            value,
		RegisteredName:    accountName,
	}
	return b.initiateTransaction(ctx, b.store, tx, req, opts)
}

// InternationalTransfer describes a cross-border bank payout.
type InternationalTransfer struct {
	Amount                     string
	MobileNumber               string
	AccountNumber              string
	BankCode                   string
	SenderType                 string
	BeneficiaryType            string
	BeneficiaryAddress         string
	BeneficiaryActivity        string
	BeneficiaryCountry         string
	Currency                   string
	BeneficiaryEmailAddress    string
	DocumentType               string
	DocumentNumber             string
	AccountName                string
	Narration                  string
	SenderName                 string
	SenderAddress              string
	SenderPhoneNumber          string
	SenderDocumentType         string
	SenderDocumentNumber       string
	SenderCountry              string
	SenderCurrency             string
	SenderSourceOfFunds        string
	SenderPrincipalActivity    string
	SenderBankCode             string
	SenderEmailAddress         string
	SenderPrimaryAccountNumber string
	SenderDateOfBirth          string
	ShortCode                  string
}

func (t InternationalTransfer) parameters(resultURL, amount string) []models.Parameter {
	return []models.Parameter{
		param("amount", "Amount", amount),
		param("mobileNumber", "Beneficiary Mobile number", t.MobileNumber),
		param("accountNumber", "Beneficiary Account Number", t.AccountNumber),
		param("bankCode", "Beneficiary Bank code", t.BankCode),
		param("senderType", "Sender Type", t.SenderType),
		param("beneficiaryType", "Beneficiary Type", t.BeneficiaryType),
		param("beneficiaryAddress", "Beneficiary address", t.BeneficiaryAddress),
		param("beneficiaryActivity", "Beneficiary Activity", t.BeneficiaryActivity),
		param("beneficiaryCountry", "Beneficiary country", t.BeneficiaryCountry),
		param("currency", "Sender Currency currency", t.Currency),
		param("beneficiaryEmailAddress", "Beneficiary email address", t.BeneficiaryEmailAddress),
		param("documentType", "Beneficiary document type", t.DocumentType),
		param("documentNumber", "Beneficiary document number", t.DocumentNumber),
		param("accountName", "Account Name", t.AccountName),
		param("narration", "Narration", t.Narration),
		param("senderName", "Sender Name", t.SenderName),
		param("senderAddress", "Sender Address", t.SenderAddress),
		param("senderPhoneNumber", "Sender Phone Number", t.SenderPhoneNumber),
		param("senderDocumentType", "Sender document type", t.SenderDocumentType),
		param("senderDocumentNumber", "Sender document number", t.SenderDocumentNumber),
		param("senderCountry", "Sender country", t.SenderCountry),
		param("senderCurrency", "Sender currency", t.SenderCurrency),
		param("senderSourceOfFunds", "Sender source of funds", t.SenderSourceOfFunds),
		param("senderPrincipalActivity", "Sender principal activity", t.SenderPrincipalActivity),
		param("senderBankCode", "Sender bank code", t.SenderBankCode),
		param("senderEmailAddress", "Sender email address", t.SenderEmailAddress),
		param("senderPrimaryAccountNumber", "Sender primary account number", t.SenderPrimaryAccountNumber),
		param("senderDateOfBirth", "Sender date of birth", t.SenderDateOfBirth),
		param("ipnUrl", "Notification URL", resultURL),
		param("shortCode", "Short code", t.ShortCode),
	}
}

// InternationalBank sends money to a bank account abroad.
func (b *B2C) InternationalBank(ctx context.Context, transfer InternationalTransfer, opts ...Option) (*models.Transaction, error) {
	if err := requireParams(
		[2]string{"short_code", transfer.ShortCode},
		[2]string{"account_number", transfer.AccountNumber},
		[2]string{"bank_code", transfer.BankCode},
		[2]string{"currency", transfer.Currency},
		[2]string{"beneficiary_country", transfer.BeneficiaryCountry},
		[2]string{"sender_name", transfer.SenderName},
	); err != nil {
		return nil, err
	}
	value, text, err := parseAmount(transfer.Amount)
	if err != nil {
		return nil, err
	}

	req := b.request(commandB2CInternational, providerPesalink, transfer.parameters(b.resultURL, text)...)
	tx := &models.Transaction{
		ServiceProvider:   providerPesalink,
		ServiceProviderID: providerPesalink,
		MerchantWallet:    transfer.ShortCode,
		ShortCode:         transfer.ShortCode,
		AccountNumber:     transfer.AccountNumber,
		Amount:            value,
		Contact:           transfer.MobileNumber,
		RegisteredName:    transfer.AccountName,
	}
	return b.initiateTransaction(ctx, b.store, tx, req, opts)
}
