package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewDocumentID produces a collection-unique document key. The wall-clock
// nanosecond prefix keeps generated IDs roughly sortable by insertion
// time; the random suffix separates IDs minted in the same nanosecond.
func NewDocumentID() string {
	return fmt.Sprintf("%d_%d", time.Now().UnixNano(), rand.Uint32())
}
