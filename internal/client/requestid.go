package client

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

var newUUID = uuid.NewRandom

// NewRequestID returns a random UUID, or "<unix-nanos>-<hex>" when the system
// random source is unavailable.
func NewRequestID() string {
	if id, err := newUUID(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("%d-%08x", time.Now().UnixNano(), rand.Uint32())
}
