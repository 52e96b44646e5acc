package models

import (
	// Go Internal Packages
	"time"

	// External Packages
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MongoOutcome is Outcome as stored in a document. Raw payloads are kept as
// strings so arbitrary provider JSON never clashes with bson field rules.
type MongoOutcome struct {
	ResponseStatus       string `bson:"response_status"`
	ResponseMessage      string `bson:"response_message"`
	TrackingID           string `bson:"tracking_id"`
	RequestStatus        string `bson:"request_status"`
	RequestMessage       string `bson:"request_message"`
	ReceiptNumber        string `bson:"receipt_number"`
	TransactionReference string `bson:"transaction_reference"`
	Timestamp            string `bson:"timestamp"`
	JSONRequest          string `bson:"json_request,omitempty"`
	JSONResponse         string `bson:"json_response,omitempty"`
	JSONResult           string `bson:"json_result,omitempty"`
}

type MongoTransaction struct {
	Reference         string       `bson:"_id"`
	PaymentID         *uint        `bson:"payment_id,omitempty"`
	ServiceProvider   string       `bson:"service_provider"`
	ServiceProviderID string       `bson:"service_provider_id"`
	MerchantWallet    string       `bson:"merchant_wallet"`
	ShortCode         string       `bson:"short_code"`
	AccountNumber     string       `bson:"account_number"`
	Amount            string       `bson:"amount"`
	Contact           string       `bson:"contact,omitempty"`
	RegisteredName    string       `bson:"registered_name,omitempty"`
	TransactableType  string       `bson:"transactable_type,omitempty"`
	TransactableID    uint         `bson:"transactable_id,omitempty"`
	Outcome           MongoOutcome `bson:"outcome"`
	CreatedAt         time.Time    `bson:"created_at"`
	UpdatedAt         time.Time    `bson:"updated_at"`
}

type MongoFunding struct {
	Reference        string       `bson:"_id"`
	FundingID        *uint        `bson:"funding_id,omitempty"`
	ServiceProvider  string       `bson:"service_provider"`
	AccountNumber    string       `bson:"account_number"`
	MerchantWallet   string       `bson:"merchant_wallet"`
	ShortCode        string       `bson:"short_code"`
	Amount           string       `bson:"amount"`
	AccountReference string       `bson:"account_reference,omitempty"`
	Outcome          MongoOutcome `bson:"outcome"`
	CreatedAt        time.Time    `bson:"created_at"`
	UpdatedAt        time.Time    `bson:"updated_at"`
}

func (o Outcome) Transform() MongoOutcome {
	return MongoOutcome{
		ResponseStatus:       o.ResponseStatus,
		ResponseMessage:      o.ResponseMessage,
		TrackingID:           o.TrackingID,
		RequestStatus:        o.RequestStatus,
		RequestMessage:       o.RequestMessage,
		ReceiptNumber:        o.ReceiptNumber,
		TransactionReference: o.TransactionReference,
		Timestamp:            o.Timestamp,
		JSONRequest:          string(o.JSONRequest),
		JSONResponse:         string(o.JSONResponse),
		JSONResult:           string(o.JSONResult),
	}
}

func (m MongoOutcome) outcome() Outcome {
	return Outcome{
		ResponseStatus:       m.ResponseStatus,
		ResponseMessage:      m.ResponseMessage,
		TrackingID:           m.TrackingID,
		RequestStatus:        m.RequestStatus,
		RequestMessage:       m.RequestMessage,
		ReceiptNumber:        m.ReceiptNumber,
		TransactionReference: m.TransactionReference,
		Timestamp:            m.Timestamp,
		JSONRequest:          jsonOrNil(m.JSONRequest),
		JSONResponse:         jsonOrNil(m.JSONResponse),
		JSONResult:           jsonOrNil(m.JSONResult),
	}
}

// Transform converts the transaction into its document form.
func (t Transaction) Transform() MongoTransaction {
	return MongoTransaction{
		Reference:         t.Reference,
		PaymentID:         t.PaymentID,
		ServiceProvider:   t.ServiceProvider,
		ServiceProviderID: t.ServiceProviderID,
		MerchantWallet:    t.MerchantWallet,
		ShortCode:         t.ShortCode,
		AccountNumber:     t.AccountNumber,
		Amount:            t.Amount.String(),
		Contact:           t.Contact,
		RegisteredName:    t.RegisteredName,
		TransactableType:  t.TransactableType,
		TransactableID:    t.TransactableID,
		Outcome:           t.Outcome.Transform(),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func (m MongoTransaction) Record() Transaction {
	return Transaction{
		Reference:         m.Reference,
		PaymentID:         m.PaymentID,
		ServiceProvider:   m.ServiceProvider,
		ServiceProviderID: m.ServiceProviderID,
		MerchantWallet:    m.MerchantWallet,
		ShortCode:         m.ShortCode,
		AccountNumber:     m.AccountNumber,
		Amount:            parseAmount(m.Amount),
		Contact:           m.Contact,
		RegisteredName:    m.RegisteredName,
		TransactableType:  m.TransactableType,
		TransactableID:    m.TransactableID,
		Outcome:           m.Outcome.outcome(),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// Transform converts the funding into its document form.
func (f Funding) Transform() MongoFunding {
	return MongoFunding{
		Reference:        f.Reference,
		FundingID:        f.FundingID,
		ServiceProvider:  f.ServiceProvider,
		AccountNumber:    f.AccountNumber,
		MerchantWallet:   f.MerchantWallet,
		ShortCode:        f.ShortCode,
		Amount:           f.Amount.String(),
		AccountReference: f.AccountReference,
		Outcome:          f.Outcome.Transform(),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func (m MongoFunding) Record() Funding {
	return Funding{
		Reference:        m.Reference,
		FundingID:        m.FundingID,
		ServiceProvider:  m.ServiceProvider,
		AccountNumber:    m.AccountNumber,
		MerchantWallet:   m.MerchantWallet,
		ShortCode:        m.ShortCode,
		Amount:           parseAmount(m.Amount),
		AccountReference: m.AccountReference,
		Outcome:          m.Outcome.outcome(),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func jsonOrNil(s string) datatypes.JSON {
	if s == "" {
		return nil
	}
	return datatypes.JSON(s)
}
