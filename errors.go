package lazyroute

import (
	"errors"
	"fmt"
)

// Sentinel errors for route and loader operations.
var (
	ErrNoLoader         = errors.New("lazyroute: render must be a loader function")
	ErrLoaderPanic      = errors.New("lazyroute: loader panicked")
	ErrDisposed         = errors.New("lazyroute: bundle disposed")
	ErrNoReferrer       = errors.New("lazyroute: no referrer state")
	ErrDecryptFailed    = errors.New("lazyroute: state decryption failed")
	ErrSignatureInvalid = errors.New("lazyroute: state signature verification failed")
	ErrInvalidFormat    = errors.New("lazyroute: invalid state format")
)

// ConfigError reports a programmer mistake detected while wiring a route.
// It is raised at setup and is never recovered internally.
type ConfigError struct {
	Route string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Route == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (route %q)", e.Err, e.Route)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError checks if err is a setup-time configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}
