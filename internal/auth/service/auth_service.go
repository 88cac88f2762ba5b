package service

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	authDomain "github.com/sentimeter/sentimeter/internal/auth/domain"
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
)

// DefaultTokenLifetime is used when no lifetime override is configured.
const DefaultTokenLifetime = time.Hour

// authService implements AuthService. It holds only immutable configuration
// (secret, lifetime, clock) established at construction, so concurrent Issue
// and Verify calls need no coordination.
type authService struct {
	codec    TokenCodec
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// AuthServiceOption configures optional AuthService behavior.
type AuthServiceOption func(*authService)

// WithClock overrides the time source. Used by tests to pin expiry behavior.
func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *authService) {
		s.now = now
	}
}

// NewAuthService creates an AuthService with an explicit secret and token
// lifetime. The secret is injected here and never read from global state; an
// empty secret is a configuration fault and fails construction. A
// non-positive lifetime falls back to DefaultTokenLifetime.
func NewAuthService(secret []byte, lifetime time.Duration, opts ...AuthServiceOption) (AuthService, error) {
	if len(secret) == 0 {
		return nil, apperrors.New("auth secret must not be empty")
	}
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	svc := &authService{
		codec:    NewTokenCodec(),
		secret:   secret,
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue builds a signed token for subject. The header pins the algorithm the
// service signs with; verification never honors an algorithm supplied by the
// caller. Claims carry issued-at and expiry in seconds since epoch.
func (s *authService) Issue(subject string) (string, error) {
	headerSegment, err := s.codec.EncodeSegment(authDomain.Header{
		Algorithm: authDomain.SigningAlgorithm,
		Type:      authDomain.TokenType,
	})
	if err != nil {
		return "", err
	}

	issuedAt := s.now().Unix()
	payloadSegment, err := s.codec.EncodeSegment(authDomain.Claims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + int64(s.lifetime.Seconds()),
	})
	if err != nil {
		return "", err
	}

	signature := s.codec.Sign(headerSegment, payloadSegment, s.secret)
	signatureSegment := base64.RawURLEncoding.EncodeToString(signature)

	return headerSegment + "." + payloadSegment + "." + signatureSegment, nil
}

// Verify checks tokenString and returns its claims. Checks run in a fixed
// order and the first failure wins: split, header decode, algorithm pin,
// signature, claims decode, claim presence, expiry. Segment decode failures
// inside a full token surface as ErrMalformedToken; the more specific
// ErrMalformedSegment stays at the codec level.
func (s *authService) Verify(tokenString string) (*authDomain.Claims, error) {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 || segments[0] == "" || segments[1] == "" || segments[2] == "" {
		return nil, authDomain.ErrMalformedToken
	}
	headerSegment, payloadSegment, signatureSegment := segments[0], segments[1], segments[2]

	var header authDomain.Header
	if err := s.codec.DecodeSegment(headerSegment, &header); err != nil {
		return nil, authDomain.ErrMalformedToken
	}

	// Hardcoded algorithm check: dispatching on the header value is the
	// classical algorithm-confusion attack surface.
	if header.Algorithm != authDomain.SigningAlgorithm {
		return nil, authDomain.ErrUnsupportedAlgorithm
	}

	signature, err := s.codec.DecodeRawSegment(signatureSegment)
	if err != nil {
		return nil, authDomain.ErrMalformedToken
	}
	if !s.codec.VerifySignature(headerSegment, payloadSegment, signature, s.secret) {
		return nil, authDomain.ErrInvalidSignature
	}

	claims, err := s.decodeClaims(payloadSegment)
	if err != nil {
		return nil, err
	}

	// Expiry boundary is inclusive: a token is rejected from the exact
	// expiry second onward.
	if s.now().Unix() >= claims.ExpiresAt {
		return nil, authDomain.ErrTokenExpired
	}

	return claims, nil
}

// Lifetime returns the configured token lifetime.
func (s *authService) Lifetime() time.Duration {
	return s.lifetime
}

// decodeClaims parses the payload segment and validates claim presence and
// types. The payload must be a JSON object; sub must be a non-empty string
// and iat/exp must be numbers. Signature verification already ran, so these
// are semantic checks on trusted-but-possibly-old token contents.
func (s *authService) decodeClaims(payloadSegment string) (*authDomain.Claims, error) {
	var payload map[string]json.RawMessage
	if err := s.codec.DecodeSegment(payloadSegment, &payload); err != nil {
		return nil, authDomain.ErrMalformedToken
	}

	subject, ok := stringClaim(payload, "sub")
	if !ok || subject == "" {
		return nil, authDomain.ErrMissingClaim
	}
	issuedAt, ok := intClaim(payload, "iat")
	if !ok {
		return nil, authDomain.ErrMissingClaim
	}
	expiresAt, ok := intClaim(payload, "exp")
	if !ok {
		return nil, authDomain.ErrMissingClaim
	}

	return &authDomain.Claims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// stringClaim extracts a JSON string claim from the payload.
func stringClaim(payload map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := payload[name]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// intClaim extracts a JSON number claim as an int64 from the payload.
func intClaim(payload map[string]json.RawMessage, name string) (int64, bool) {
	raw, ok := payload[name]
	if !ok {
		return 0, false
	}
	var value json.Number
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, false
	}
	parsed, err := value.Int64()
	if err != nil {
		// Timestamps are whole seconds; accept a float representation by
		// truncation rather than rejecting well-meaning clients.
		f, ferr := value.Float64()
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return parsed, true
}
