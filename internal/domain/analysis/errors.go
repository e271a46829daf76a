package analysis

import "errors"

// ErrUnauthenticated indicates the request carried no verifiable principal.
var ErrUnauthenticated = errors.New("authentication required")

// ErrQuotaExceeded indicates the principal has no analysis quota left.
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrInvalidInput indicates the submitted content was empty after trimming.
var ErrInvalidInput = errors.New("input text is required")

// ErrEmptyResponse indicates the model returned no text at all.
var ErrEmptyResponse = errors.New("model returned empty response")

// ErrMalformedResponse indicates the model output was not valid JSON.
var ErrMalformedResponse = errors.New("model returned malformed response")

// ErrSchemaViolation indicates the model output parsed but did not match the
// result contract (missing fields, wrong types, inconsistent signal flags).
var ErrSchemaViolation = errors.New("model response violates result schema")
