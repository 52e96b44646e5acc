package models

import (
	// Go Internal Packages
	"time"

	// External Packages
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Placeholders stored when the provider leaves a field out.
const (
	UnknownErrorStatus = "UNKNOWN_ERROR"
	NoResponseMessage  = "No response message"
	UnknownStatus      = "UNKNOWN"
	NoStatusMessage    = "No response message provided."
	NotAvailable       = "N/A"
)

// Outcome is the provider-driven part of a record. The response fields come
// from the initiation call, the request fields from status checks and callbacks.
type Outcome struct {
	ResponseStatus       string         `gorm:"column:response_status" json:"response_status"`
	ResponseMessage      string         `gorm:"column:response_message" json:"response_message"`
	TrackingID           string         `gorm:"column:tracking_id;index" json:"tracking_id"`
	RequestStatus        string         `gorm:"column:request_status" json:"request_status"`
	RequestMessage       string         `gorm:"column:request_message" json:"request_message"`
	ReceiptNumber        string         `gorm:"column:receipt_number" json:"receipt_number"`
	TransactionReference string         `gorm:"column:transaction_reference" json:"transaction_reference"`
	Timestamp            string         `gorm:"column:timestamp" json:"timestamp"`
	JSONRequest          datatypes.JSON `gorm:"column:json_request" json:"json_request,omitempty"`
	JSONResponse         datatypes.JSON `gorm:"column:json_response" json:"json_response,omitempty"`
	JSONResult           datatypes.JSON `gorm:"column:json_result" json:"json_result,omitempty"`
}

// Transaction is an outbound payment (B2B, B2C or P2P).
type Transaction struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Reference         string          `gorm:"column:payment_reference;uniqueIndex;not null" json:"payment_reference"`
	PaymentID         *uint           `gorm:"column:payment_id" json:"payment_id,omitempty"`
	ServiceProvider   string          `gorm:"column:service_provider;not null" json:"service_provider"`
	ServiceProviderID string          `gorm:"column:service_provider_id" json:"service_provider_id"`
	MerchantWallet    string          `gorm:"column:merchant_wallet" json:"merchant_wallet"`
	ShortCode         string          `gorm:"column:short_code" json:"short_code"`
	AccountNumber     string          `gorm:"column:account_number" json:"account_number"`
	Amount            decimal.Decimal `gorm:"column:amount;type:numeric(15,2)" json:"amount"`
	Contact           string          `gorm:"column:contact" json:"contact,omitempty"`
	RegisteredName    string          `gorm:"column:registered_name" json:"registered_name,omitempty"`
	TransactableType  string          `gorm:"column:transactable_type" json:"transactable_type,omitempty"`
	TransactableID    uint            `gorm:"column:transactable_id" json:"transactable_id,omitempty"`
	Outcome           `gorm:"embedded"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Transaction) TableName() string { return "tanda_transactions" }

// Funding is an inbound payment, either requested (C2B) or pushed by an IPN.
type Funding struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Reference        string          `gorm:"column:fund_reference;uniqueIndex;not null" json:"fund_reference"`
	FundingID        *uint           `gorm:"column:funding_id" json:"funding_id,omitempty"`
	ServiceProvider  string          `gorm:"column:service_provider" json:"service_provider"`
	AccountNumber    string          `gorm:"column:account_number" json:"account_number"`
	MerchantWallet   string          `gorm:"column:merchant_wallet" json:"merchant_wallet"`
	ShortCode        string          `gorm:"column:short_code" json:"short_code"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(15,2)" json:"amount"`
	AccountReference string          `gorm:"column:account_reference;index" json:"account_reference,omitempty"`
	Outcome          `gorm:"embedded"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Funding) TableName() string { return "tanda_fundings" }

// ApplyResponse derives the local status from an initiation response.
// The tracking id is only kept once the provider accepted the request.
func (o *Outcome) ApplyResponse(resp ProviderResponse) {
	o.ResponseStatus = orDefault(resp.Status, UnknownErrorStatus)
	o.ResponseMessage = orDefault(resp.Message, NoResponseMessage)
	if StatusCode(resp.Status).IsProcessing() {
		o.TrackingID = resp.TrackingID
	}
}

// ApplyStatus copies a status check result onto the record.
func (o *Outcome) ApplyStatus(res StatusResult) {
	o.RequestStatus = res.RequestStatus
	o.RequestMessage = res.RequestMessage
	if !StatusCode(res.RequestStatus).IsSuccessful() {
		return
	}
	o.ReceiptNumber = res.Receipt
	o.TransactionReference = res.Receipt
	o.Timestamp = res.CompletedAt
}

// ApplyNotification copies a callback payload onto the record.
func (o *Outcome) ApplyNotification(n Notification) {
	o.RequestStatus = n.Status
	o.RequestMessage = n.Message
	o.Timestamp = n.Timestamp
	if !StatusCode(n.Status).IsSuccessful() {
		return
	}
	o.ReceiptNumber = orDefault(n.TransactionID, NotAvailable)
	o.TransactionReference = orDefault(n.Result.Ref, NotAvailable)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
