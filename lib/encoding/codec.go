// Package encoding seals small values (navigation state, referrers) into
// URL-safe strings so they can travel through a redirect or an HX-Location
// header and be trusted when they come back.
package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrInvalidFormat    = errors.New("encoding: invalid format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: decryption failed")
)

// sigLen is the truncated HMAC length in bytes (128 bits).
const sigLen = 16

// Codec packs values with msgpack and protects them in one of two modes:
//   - Signed (default): base64 payload + HMAC, readable but tamper-proof
//   - Sealed: AES-256-GCM, opaque to clients
type Codec struct {
	key    []byte
	gcm    cipher.AEAD
	sealed bool
}

// Option configures a Codec.
type Option func(*Codec)

// Sealed switches the codec to encrypted mode.
func Sealed() Option {
	return func(c *Codec) {
		c.sealed = true
	}
}

// NewCodec creates a codec from key. Keys shorter than 32 bytes are
// stretched with SHA-256.
func NewCodec(key []byte, opts ...Option) (*Codec, error) {
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, fmt.Errorf("encoding: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("encoding: gcm: %w", err)
	}

	c := &Codec{key: key, gcm: gcm}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IsSealed reports whether the codec encrypts its output.
func (c *Codec) IsSealed() bool {
	return c.sealed
}

// Encode serializes v and returns a URL-safe token.
func (c *Codec) Encode(v any) (string, error) {
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding: marshal: %w", err)
	}
	if c.sealed {
		return c.encrypt(packed)
	}
	return c.sign(packed), nil
}

// Decode verifies (or decrypts) token and unpacks it into v.
func (c *Codec) Decode(token string, v any) error {
	var (
		packed []byte
		err    error
	)
	if c.sealed {
		packed, err = c.decrypt(token)
	} else {
		packed, err = c.verify(token)
	}
	if err != nil {
		return err
	}

	if err := msgpack.Unmarshal(packed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

func (c *Codec) mac(data []byte) []byte {
	m := hmac.New(sha256.New, c.key)
	m.Write(data)
	return m.Sum(nil)[:sigLen]
}

// sign produces payload.signature
func (c *Codec) sign(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(c.mac(data))
}

func (c *Codec) verify(token string) ([]byte, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrInvalidFormat
	}

	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	if !hmac.Equal(got, c.mac(data)) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

func (c *Codec) encrypt(data []byte) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("encoding: nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(c.gcm.Seal(nonce, nonce, data, nil)), nil
}

func (c *Codec) decrypt(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	n := c.gcm.NonceSize()
	if len(raw) < n {
		return nil, ErrDecryptFailed
	}

	data, err := c.gcm.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return data, nil
}
