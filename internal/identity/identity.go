package identity

import (
	"fmt"
	"sync/atomic"
	"time"
)

var counter atomic.Uint64

// New returns a prefixed identifier that is unique within the process.
// Wall-clock millis alone can collide under rapid repeated actions, so a
// monotonic counter is appended.
func New(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixMilli(), counter.Add(1))
}
