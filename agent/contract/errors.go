package contract

import "errors"

var (
	ErrModelInvoke         = errors.New("model invoke failed")
	ErrModelUnconfigured   = errors.New("language model is not configured")
	ErrProviderUnavailable = errors.New("catalog provider unavailable")
	ErrSessionCorrupt      = errors.New("persisted session state is corrupt")
	ErrValidation          = errors.New("validation failed")
)
