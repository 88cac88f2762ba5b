// Package service implements the token codec and the issue/verify service
// for the bearer token scheme.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	authDomain "github.com/sentimeter/sentimeter/internal/auth/domain"
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
)

// tokenCodec implements TokenCodec with JSON structures, URL-safe unpadded
// base64 segments and HMAC-SHA256 signatures.
type tokenCodec struct{}

// NewTokenCodec creates a new TokenCodec instance.
func NewTokenCodec() TokenCodec {
	return &tokenCodec{}
}

// EncodeSegment serializes v to JSON and encodes it as unpadded URL-safe
// base64. encoding/json emits struct fields in declaration order with no
// whitespace, so the output is deterministic and the signature reproducible.
func (c *tokenCodec) EncodeSegment(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode segment")
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeSegment decodes a base64 segment and parses the bytes into v.
// Returns ErrMalformedSegment on invalid base64 or unparsable content.
func (c *tokenCodec) DecodeSegment(segment string, v any) error {
	data, err := c.DecodeRawSegment(segment)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return authDomain.ErrMalformedSegment
	}
	return nil
}

// DecodeRawSegment decodes a base64 segment into raw bytes. Trailing '='
// padding is tolerated on input even though issued segments never carry it.
// Decoding is strict: non-zero trailing bits are rejected, so two distinct
// segment strings never alias to the same byte sequence.
func (c *tokenCodec) DecodeRawSegment(segment string) ([]byte, error) {
	data, err := base64.RawURLEncoding.Strict().DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return nil, authDomain.ErrMalformedSegment
	}
	return data, nil
}

// Sign computes HMAC-SHA256 over headerSegment + "." + payloadSegment using
// secret as the key. Pure function, no side effects.
func (c *tokenCodec) Sign(headerSegment, payloadSegment string, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(headerSegment))
	mac.Write([]byte("."))
	mac.Write([]byte(payloadSegment))
	return mac.Sum(nil)
}

// VerifySignature recomputes the expected signature and compares it with
// hmac.Equal. The comparison cost is independent of where the first
// mismatching byte occurs; an early-exit byte comparison here would leak
// timing information usable to forge signatures byte by byte.
func (c *tokenCodec) VerifySignature(headerSegment, payloadSegment string, signature, secret []byte) bool {
	expected := c.Sign(headerSegment, payloadSegment, secret)
	return hmac.Equal(expected, signature)
}
