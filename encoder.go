package lazyroute

import (
	"errors"

	"github.com/pthm/lazyroute/lib/encoding"
)

// Codec is an alias for encoding.Codec for convenience.
type Codec = encoding.Codec

// NewCodec creates the codec used to seal referrer state. Pass sealed=true
// to encrypt state instead of signing it.
func NewCodec(key []byte, sealed bool) (*Codec, error) {
	if sealed {
		return encoding.NewCodec(key, encoding.Sealed())
	}
	return encoding.NewCodec(key)
}

// wrapCodecError maps encoding package errors onto lazyroute sentinels.
func wrapCodecError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) {
		return ErrInvalidFormat
	}
	if errors.Is(err, encoding.ErrSignatureInvalid) {
		return ErrSignatureInvalid
	}
	if errors.Is(err, encoding.ErrDecryptFailed) {
		return ErrDecryptFailed
	}
	return err
}
