package lazyroute

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/lazyroute/lib/encoding"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{
		ErrNoLoader,
		ErrLoaderPanic,
		ErrDisposed,
		ErrNoReferrer,
		ErrDecryptFailed,
		ErrSignatureInvalid,
		ErrInvalidFormat,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Route: "/admin", Err: ErrNoLoader}

	if !errors.Is(err, ErrNoLoader) {
		t.Error("ConfigError should unwrap to ErrNoLoader")
	}
	if got, want := err.Error(), `lazyroute: render must be a loader function (route "/admin")`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := (&ConfigError{Err: ErrNoLoader}).Error(); got != ErrNoLoader.Error() {
		t.Errorf("Error() without route = %q, want %q", got, ErrNoLoader.Error())
	}
}

func TestIsConfigError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"config error", &ConfigError{Err: ErrNoLoader}, true},
		{"wrapped config error", fmt.Errorf("setup: %w", &ConfigError{Err: ErrNoLoader}), true},
		{"bare ErrNoLoader", ErrNoLoader, false},
		{"other error", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigError(tt.err); got != tt.expect {
				t.Errorf("IsConfigError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsDecryptionError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrDecryptFailed", ErrDecryptFailed, true},
		{"ErrSignatureInvalid", ErrSignatureInvalid, true},
		{"wrapped ErrDecryptFailed", fmt.Errorf("wrapped: %w", ErrDecryptFailed), true},
		{"ErrInvalidFormat", ErrInvalidFormat, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDecryptionError(tt.err); got != tt.expect {
				t.Errorf("IsDecryptionError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestWrapCodecError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"invalid format", encoding.ErrInvalidFormat, ErrInvalidFormat},
		{"signature", encoding.ErrSignatureInvalid, ErrSignatureInvalid},
		{"decrypt", encoding.ErrDecryptFailed, ErrDecryptFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapCodecError(tt.err); got != tt.want {
				t.Errorf("wrapCodecError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	other := errors.New("boom")
	if got := wrapCodecError(other); got != other {
		t.Errorf("wrapCodecError(other) = %v, want passthrough", got)
	}
}
