package service

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that token operations never leave goroutines behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
