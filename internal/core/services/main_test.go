package services

import (
	"testing"

	"go.uber.org/goleak"
)

// Pool and coalescer tests spawn workers; verify none outlive their
// test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
