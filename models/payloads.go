package models

import (
	// Go Internal Packages
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ReceiptParameterID is the result parameter carrying the provider receipt.
const ReceiptParameterID = "ref"

// Parameter is one entry of the request/result parameter lists.
type Parameter struct {
	ID    string     `json:"id"`
	Label string     `json:"label,omitempty"`
	Value ParamValue `json:"value"`
}

// ParamValue accepts strings, numbers and booleans and keeps their text form.
type ParamValue string

func (v *ParamValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ParamValue(s)
		return nil
	}
	*v = ParamValue(data)
	return nil
}

// ProviderRequest is the body posted to the request endpoint.
type ProviderRequest struct {
	CommandID         string      `json:"commandId"`
	ServiceProviderID string      `json:"serviceProviderId"`
	Reference         string      `json:"reference"`
	Request           []Parameter `json:"request"`
}

// ResultField is the provider's "result" member. Callbacks send an object
// with a ref, status queries may send a parameter list; both land here.
type ResultField struct {
	Ref        string
	Parameters []Parameter
}

func (r *ResultField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = ResultField{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '[':
		return json.Unmarshal(data, &r.Parameters)
	case '{':
		var obj struct {
			Ref ParamValue `json:"ref"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		r.Ref = string(obj.Ref)
		return nil
	case '"':
		return json.Unmarshal(data, &r.Ref)
	default:
		return fmt.Errorf("unexpected result payload: %s", data)
	}
}

func (r ResultField) MarshalJSON() ([]byte, error) {
	if len(r.Parameters) > 0 {
		return json.Marshal(r.Parameters)
	}
	if r.Ref == "" {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]string{"ref": r.Ref})
}

// ProviderResponse is the normalised body returned by the request endpoints.
type ProviderResponse struct {
	Status            string      `json:"status"`
	Message           string      `json:"message"`
	TrackingID        string      `json:"trackingId"`
	Reference         string      `json:"reference,omitempty"`
	Result            ResultField `json:"result"`
	ResultParameters  []Parameter `json:"resultParameters,omitempty"`
	DatetimeCompleted string      `json:"datetimeCompleted,omitempty"`
}

// DecodeProviderResponse decodes a raw provider body.
func DecodeProviderResponse(raw []byte) (ProviderResponse, error) {
	var resp ProviderResponse
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}
	err := json.Unmarshal(raw, &resp)
	return resp, err
}

// Receipt scans the result parameters for the receipt entry.
// It falls back to NotAvailable when the provider did not send one.
func (p ProviderResponse) Receipt() string {
	for _, list := range [][]Parameter{p.ResultParameters, p.Result.Parameters} {
		for _, param := range list {
			if strings.EqualFold(param.ID, ReceiptParameterID) && param.Value != "" {
				return string(param.Value)
			}
		}
	}
	return orDefault(p.Result.Ref, NotAvailable)
}

// Notification is an inbound callback (payout result, C2B result, P2P result or IPN).
type Notification struct {
	TrackingID    string      `json:"trackingId"`
	TransactionID string      `json:"transactionId"`
	Reference     string      `json:"reference"`
	Status        string      `json:"status" validate:"required"`
	Message       string      `json:"message"`
	Timestamp     string      `json:"timestamp"`
	Result        ResultField `json:"result"`
}

// StatusResult is what a status query contributes to a record.
type StatusResult struct {
	RequestStatus  string `json:"request_status"`
	RequestMessage string `json:"request_message"`
	Receipt        string `json:"receipt,omitempty"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

// TokenResponse is the body of the client-credentials exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
