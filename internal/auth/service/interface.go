package service

import (
	"time"

	authDomain "github.com/sentimeter/sentimeter/internal/auth/domain"
)

// TokenCodec handles the deterministic, reversible encoding of token segments
// and the computation and verification of the signature segment. It carries
// no notion of a user or an expiry policy; that belongs to AuthService.
type TokenCodec interface {
	// EncodeSegment serializes v to canonical JSON (struct field order,
	// no whitespace) and encodes it with URL-safe base64 without padding.
	// Identical input always yields identical output.
	EncodeSegment(v any) (string, error)

	// DecodeSegment is the inverse of EncodeSegment. It tolerates padded
	// base64 input from third-party clients. Returns ErrMalformedSegment
	// when the input is not valid URL-safe base64 or the decoded bytes do
	// not parse into v.
	DecodeSegment(segment string, v any) error

	// DecodeRawSegment decodes a segment into its raw bytes without any
	// structure expectation. Used for the signature segment.
	DecodeRawSegment(segment string) ([]byte, error)

	// Sign computes HMAC-SHA256 over the ASCII bytes of
	// headerSegment + "." + payloadSegment keyed by secret.
	Sign(headerSegment, payloadSegment string, secret []byte) []byte

	// VerifySignature recomputes the expected signature and compares it to
	// signature using a constant-time equality check.
	VerifySignature(headerSegment, payloadSegment string, signature, secret []byte) bool
}

// AuthService issues tokens for an authenticated identity and verifies
// incoming tokens against the shared secret.
type AuthService interface {
	// Issue builds and signs a token for subject with the configured
	// lifetime. It only fails on a serialization error, which indicates a
	// programming fault rather than bad input.
	Issue(subject string) (string, error)

	// Verify checks a token string and returns its claims. Failures are one
	// of the enumerated kinds in the auth domain package, all of which wrap
	// apperrors.ErrUnauthorized.
	Verify(tokenString string) (*authDomain.Claims, error)

	// Lifetime returns the configured token lifetime.
	Lifetime() time.Duration
}
