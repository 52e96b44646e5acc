package results

import (
	// Go Internal Packages
	"bytes"
	"context"
	"encoding/json"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"

	// External Packages
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Decode parses and validates a callback body of the given kind. An IPN is
// recorded whatever it carries, so only its JSON has to be valid.
func Decode(kind string, raw []byte) (models.Notification, error) {
	var n models.Notification
	if len(bytes.TrimSpace(raw)) == 0 {
		return n, errors.InvalidBodyErr(errors.E(errors.Invalid, "empty body", nil))
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return n, errors.InvalidBodyErr(err)
	}
	if kind == models.CallbackIPN {
		return n, nil
	}
	if err := validate.Struct(n); err != nil {
		return n, errors.ValidationFailedErr(err)
	}
	return n, nil
}

// Handle routes a decoded callback by kind. A nil record with a nil error
// means nothing matched.
func (r *Reconciler) Handle(ctx context.Context, kind string, n models.Notification, raw []byte) (any, error) {
	switch kind {
	case models.CallbackPayout:
		tx, err := r.Payout(ctx, n, raw)
		if tx == nil {
			return nil, err
		}
		return tx, nil
	case models.CallbackP2P:
		tx, err := r.P2P(ctx, n, raw)
		if tx == nil {
			return nil, err
		}
		return tx, nil
	case models.CallbackC2B:
		f, err := r.C2B(ctx, n, raw)
		if f == nil {
			return nil, err
		}
		return f, nil
	case models.CallbackIPN:
		f, err := r.IPN(ctx, n, raw)
		if f == nil {
			return nil, err
		}
		return f, nil
	}
	return nil, errors.E(errors.Invalid, "unknown callback kind "+kind, nil)
}
