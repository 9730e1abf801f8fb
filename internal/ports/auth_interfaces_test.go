package ports_test

import (
	"testing"

	mocks "github.com/vetdesk/vetdesk/internal/mocks/auth"
	"github.com/vetdesk/vetdesk/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mocks.MockAuthProvider)(nil)
	var _ ports.SessionSigner = (*mocks.StaticSigner)(nil)
	var _ ports.PasswordHasher = (*mocks.PlainHasher)(nil)
}
