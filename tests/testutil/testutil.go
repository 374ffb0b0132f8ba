package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testNamespace anchors deterministic UUID generation so fixtures keep the
// same IDs across runs.
var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable UUID from the given seed string
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}

// TestUserID returns the staff actor ID shared by tests that need one
func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

// RequireUUID parses s as a UUID, failing the test on bad input
func RequireUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("invalid UUID %q: %v", s, err)
	}
	return id
}
