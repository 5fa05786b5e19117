package bus

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewClientID returns a fresh session identity of the form <prefix>-<8 hex>.
// Uniqueness is best effort; a collision only costs one rejected session.
func NewClientID(prefix string) string {
	random, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("%s-%s", prefix, random)
}
