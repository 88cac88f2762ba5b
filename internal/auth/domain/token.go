// Package domain defines the authentication token entities and failure kinds.
package domain

// SigningAlgorithm is the only algorithm this service signs and verifies with.
// The verifier never dispatches on the header value; it requires an exact match.
const SigningAlgorithm = "HS256"

// TokenType is the fixed value of the header "typ" field on issued tokens.
const TokenType = "JWT"

// Header describes the signed structure of a token. Field order is the wire
// order: encoding/json preserves struct order, which keeps the encoded
// segment deterministic so signatures are reproducible.
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// Claims is the decoded payload of a token.
//
// ExpiresAt is always strictly greater than IssuedAt for tokens produced by
// this service. A decoded token violating that is still untrusted input and
// goes through the normal expiry check on the field value.
type Claims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
