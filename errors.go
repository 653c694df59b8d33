package memofetch

import (
	"fmt"
)

// UpstreamError wraps any failure raised by the wrapped fetch. The wrapper
// performs no recovery or retries of its own; the key stays unresolved so a
// later Get attempts the fetch again.
type UpstreamError struct {
	Key string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fetch %q failed: %v", e.Key, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
