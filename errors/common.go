package errors

import "fmt"

func InvalidParamsErr(err error) error {
	return E(Invalid, "invalid params", err)
}

func InvalidBodyErr(err error) error {
	return E(Invalid, "invalid request body", err)
}

func ValidationFailedErr(err error) error {
	return E(Invalid, "validation failed", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

// NotFoundErr returns a formatted error for a record missing from the store
func NotFoundErr(entity, reference string) error {
	return E(NotFound, fmt.Sprintf("%s with reference %s not found", entity, reference), nil)
}

// ConfigErr wraps configuration validation failures, these are fatal at start-up
func ConfigErr(err error) error {
	return E(Config, "invalid configuration", err)
}
