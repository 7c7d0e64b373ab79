// services/errors.go
package services

import "errors"

// Error taxonomy shared by all services, matched with errors.Is in the
// handlers. Conflict is an expected outcome under concurrent claiming,
// not an anomaly.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)
