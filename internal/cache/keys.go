package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionResultsKey is the cache key of a session results view
func SessionResultsKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s:results", sessionID)
}
