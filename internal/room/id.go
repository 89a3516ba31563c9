package room

import (
	crand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	tokenEntropy   = ulid.Monotonic(crand.Reader, 0)
	tokenEntropyMu sync.Mutex
)

// NewToken returns an opaque reconnection credential. Possession of the
// token is the only proof of room membership, so entropy comes from
// crypto/rand.
func NewToken() string {
	tokenEntropyMu.Lock()
	defer tokenEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), tokenEntropy).String()
}
