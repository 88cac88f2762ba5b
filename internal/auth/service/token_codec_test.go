package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/sentimeter/sentimeter/internal/auth/domain"
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
)

func TestTokenCodec_EncodeSegment(t *testing.T) {
	codec := NewTokenCodec()

	t.Run("Success_Deterministic", func(t *testing.T) {
		header := authDomain.Header{Algorithm: "HS256", Type: "JWT"}

		first, err := codec.EncodeSegment(header)
		require.NoError(t, err)
		second, err := codec.EncodeSegment(header)
		require.NoError(t, err)

		assert.Equal(t, first, second, "identical input must yield identical output")
	})

	t.Run("Success_NoPaddingAndURLSafe", func(t *testing.T) {
		claims := authDomain.Claims{Subject: "user-42", IssuedAt: 1000, ExpiresAt: 4600}

		segment, err := codec.EncodeSegment(claims)
		require.NoError(t, err)

		assert.NotContains(t, segment, "=")
		assert.NotContains(t, segment, "+")
		assert.NotContains(t, segment, "/")
	})

	t.Run("Success_CanonicalFieldOrder", func(t *testing.T) {
		segment, err := codec.EncodeSegment(authDomain.Header{Algorithm: "HS256", Type: "JWT"})
		require.NoError(t, err)

		data, err := codec.DecodeRawSegment(segment)
		require.NoError(t, err)
		assert.Equal(t, `{"alg":"HS256","typ":"JWT"}`, string(data))
	})
}

func TestTokenCodec_DecodeSegment(t *testing.T) {
	codec := NewTokenCodec()

	t.Run("Success_RoundTrip", func(t *testing.T) {
		original := authDomain.Claims{Subject: "someone@example.com", IssuedAt: 1700000000, ExpiresAt: 1700003600}

		segment, err := codec.EncodeSegment(original)
		require.NoError(t, err)

		var decoded authDomain.Claims
		require.NoError(t, codec.DecodeSegment(segment, &decoded))
		assert.Equal(t, original, decoded)
	})

	t.Run("Success_ToleratesPaddedInput", func(t *testing.T) {
		segment, err := codec.EncodeSegment(authDomain.Header{Algorithm: "HS256", Type: "JWT"})
		require.NoError(t, err)

		// Re-pad the segment the way a strict third-party encoder would.
		padded := segment + strings.Repeat("=", (4-len(segment)%4)%4)

		var decoded authDomain.Header
		require.NoError(t, codec.DecodeSegment(padded, &decoded))
		assert.Equal(t, "HS256", decoded.Algorithm)
	})

	t.Run("Failure_InvalidBase64", func(t *testing.T) {
		var decoded authDomain.Header
		err := codec.DecodeSegment("not base64 at all!!!", &decoded)

		assert.ErrorIs(t, err, authDomain.ErrMalformedSegment)
	})

	t.Run("Failure_StandardAlphabetRejected", func(t *testing.T) {
		// '+' and '/' belong to the standard alphabet, not the URL-safe one.
		var decoded authDomain.Header
		err := codec.DecodeSegment("ab+/cd", &decoded)

		assert.ErrorIs(t, err, authDomain.ErrMalformedSegment)
	})

	t.Run("Failure_ValidBase64InvalidStructure", func(t *testing.T) {
		segment := "bm90LWpzb24" // "not-json"

		var decoded authDomain.Header
		err := codec.DecodeSegment(segment, &decoded)

		assert.ErrorIs(t, err, authDomain.ErrMalformedSegment)
	})

	t.Run("Failure_WrapsUnauthorized", func(t *testing.T) {
		var decoded authDomain.Header
		err := codec.DecodeSegment("!!!", &decoded)

		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})
}

func TestTokenCodec_Sign(t *testing.T) {
	codec := NewTokenCodec()
	secret := []byte("s3cr3t")

	t.Run("Success_MatchesManualHMAC", func(t *testing.T) {
		signature := codec.Sign("header", "payload", secret)

		mac := hmac.New(sha256.New, secret)
		mac.Write([]byte("header.payload"))
		assert.Equal(t, mac.Sum(nil), signature)
		assert.Len(t, signature, sha256.Size)
	})

	t.Run("Success_Deterministic", func(t *testing.T) {
		first := codec.Sign("h", "p", secret)
		second := codec.Sign("h", "p", secret)
		assert.Equal(t, first, second)
	})

	t.Run("Success_SecretChangesSignature", func(t *testing.T) {
		first := codec.Sign("h", "p", []byte("secret-a"))
		second := codec.Sign("h", "p", []byte("secret-b"))
		assert.NotEqual(t, first, second)
	})
}

func TestTokenCodec_VerifySignature(t *testing.T) {
	codec := NewTokenCodec()
	secret := []byte("s3cr3t")

	t.Run("Success_ValidSignature", func(t *testing.T) {
		signature := codec.Sign("header", "payload", secret)
		assert.True(t, codec.VerifySignature("header", "payload", signature, secret))
	})

	t.Run("Failure_TamperedPayload", func(t *testing.T) {
		signature := codec.Sign("header", "payload", secret)
		assert.False(t, codec.VerifySignature("header", "payl0ad", signature, secret))
	})

	t.Run("Failure_FlippedSignatureBit", func(t *testing.T) {
		signature := codec.Sign("header", "payload", secret)
		signature[0] ^= 0x01
		assert.False(t, codec.VerifySignature("header", "payload", signature, secret))
	})

	t.Run("Failure_WrongSecret", func(t *testing.T) {
		signature := codec.Sign("header", "payload", secret)
		assert.False(t, codec.VerifySignature("header", "payload", signature, []byte("other")))
	})

	t.Run("Failure_TruncatedSignature", func(t *testing.T) {
		signature := codec.Sign("header", "payload", secret)
		assert.False(t, codec.VerifySignature("header", "payload", signature[:16], secret))
	})
}
