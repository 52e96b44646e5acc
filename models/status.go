package models

// StatusCode is a Tanda response code. Values outside the known set are kept
// as-is and reported as unknown.
type StatusCode string

const (
	StatusSuccessful              StatusCode = "S000000"
	StatusProcessing              StatusCode = "P202000"
	StatusBadRequest              StatusCode = "E400000"
	StatusUnauthorized            StatusCode = "E401000"
	StatusForbidden               StatusCode = "E403000"
	StatusNotFound                StatusCode = "E404000"
	StatusDuplicateResource       StatusCode = "E409000"
	StatusProductNotFound         StatusCode = "E422005"
	StatusInsufficientBalance     StatusCode = "E422006"
	StatusPaymentValidationFailed StatusCode = "E422022"
	StatusServerError             StatusCode = "E500000"
	StatusNotImplemented          StatusCode = "E501000"
	StatusServiceUnavailable      StatusCode = "E503000"
)

const unknownStatusDescription = "Unknown status"

var statusDescriptions = map[StatusCode]string{
	StatusSuccessful:              "Successfully processed.",
	StatusProcessing:              "Request has been received and is currently being processed.",
	StatusBadRequest:              "Bad request",
	StatusUnauthorized:            "Unauthorized",
	StatusForbidden:               "Access denied",
	StatusNotFound:                "Not found",
	StatusDuplicateResource:       "Duplicate resource found",
	StatusProductNotFound:         "Request failed. Product not found",
	StatusInsufficientBalance:     "Request failed. Insufficient Wallet balance",
	StatusPaymentValidationFailed: "Payment Request Validation Failed",
	StatusServerError:             "Internal Server Error",
	StatusNotImplemented:          "Not implemented",
	StatusServiceUnavailable:      "Service unavailable. Product / service is disabled or unavailable",
}

func (s StatusCode) Known() bool {
	_, ok := statusDescriptions[s]
	return ok
}

func (s StatusCode) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return unknownStatusDescription
}

func (s StatusCode) IsSuccessful() bool {
	return s == StatusSuccessful
}

func (s StatusCode) IsProcessing() bool {
	return s == StatusProcessing
}

func (s StatusCode) String() string {
	return string(s)
}
