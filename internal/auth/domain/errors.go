package domain

import (
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
)

// Token verification failure kinds. Each wraps apperrors.ErrUnauthorized so
// the HTTP layer collapses all of them into a single generic 401 response;
// the specific kind is preserved for logs and for callers that need to react
// to a particular failure.
var (
	// ErrMalformedToken indicates the token does not split into exactly
	// three non-empty dot-separated segments, or a segment failed to decode.
	ErrMalformedToken = apperrors.Wrap(apperrors.ErrUnauthorized, "malformed token")

	// ErrMalformedSegment indicates a segment is not valid URL-safe base64
	// or its decoded bytes do not parse as the expected structure.
	ErrMalformedSegment = apperrors.Wrap(apperrors.ErrUnauthorized, "malformed segment")

	// ErrUnsupportedAlgorithm indicates the header algorithm field names
	// anything other than the one algorithm this service signs with.
	ErrUnsupportedAlgorithm = apperrors.Wrap(apperrors.ErrUnauthorized, "unsupported algorithm")

	// ErrInvalidSignature indicates the signature segment does not match the
	// recomputed HMAC over the header and payload segments.
	ErrInvalidSignature = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid signature")

	// ErrMissingClaim indicates a required claim (sub, iat, exp) is absent
	// or has the wrong type.
	ErrMissingClaim = apperrors.Wrap(apperrors.ErrUnauthorized, "missing claim")

	// ErrTokenExpired indicates the current time is at or past the token's
	// expiry claim.
	ErrTokenExpired = apperrors.Wrap(apperrors.ErrUnauthorized, "token expired")
)
