package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorTenantMismatch marks a lookup that found the row but under a different
// tenant. Handlers collapse it to the same not-found response as
// ErrorRecordNotFound; it exists so the denial can be logged distinctly.
var ErrorTenantMismatch = errors.New("record belongs to another tenant")

var ErrorDuplicate = errors.New("duplicate record")

var ErrorForbidden = errors.New("forbidden")

// ErrorUpstream wraps object-storage / OCR failures.
var ErrorUpstream = errors.New("upstream service failed")

// ErrorInternal masks unexpected data-layer failures. The HTTP layer returns
// a generic 500 for it; the wrapped detail only reaches the logs.
var ErrorInternal = errors.New("internal server error")
