package memofetch

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The wrapper calls them on hot paths.
type Hooks interface {
	// Get found a stored value; the fetch was not invoked.
	Hit(key string)

	// Get missed; a fetch follows.
	Miss(key string)

	// The wrapped fetch failed; nothing was stored for key.
	UpstreamError(key string, err error)

	// An entry was deleted by the wrapper on read.
	// reason ∈ {"corrupt", "max_age", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Store returned ok=false on Set (backpressure/eviction).
	StoreSetRejected(storageKey string)

	// A Get shared an in-flight fetch started by a concurrent caller.
	CoalescedWaiter(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                  {}
func (NopHooks) Miss(string)                 {}
func (NopHooks) UpstreamError(string, error) {}
func (NopHooks) SelfHeal(string, string)     {}
func (NopHooks) StoreSetRejected(string)     {}
func (NopHooks) CoalescedWaiter(string)      {}
