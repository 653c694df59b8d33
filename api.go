package memofetch

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/memofetch/codec"
	st "github.com/unkn0wn-root/memofetch/store"
)

// Fetcher is the underlying retrieval operation being memoized.
// It receives the caller's context and may block (network I/O etc.).
type Fetcher[V any] func(ctx context.Context, key string) (V, error)

// SetCostFunc lets cost-based stores (e.g. Ristretto) weigh entries.
type SetCostFunc func(storageKey string, raw []byte) int64

// Memo is the memoizing wrapper around a Fetcher. The store behind it is
// created by New and reachable only through this interface.
type Memo[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get returns the stored value for key, or invokes the fetch on a miss,
	// storing the result on success. Fetch failures are returned as
	// *UpstreamError and leave the key unresolved.
	Get(ctx context.Context, key string) (V, error)

	// Peek reads the store without ever invoking the fetch.
	Peek(ctx context.Context, key string) (v V, ok bool, err error)

	// Forget drops a key so the next Get fetches again.
	Forget(ctx context.Context, key string) error
}

// Options tune the wrapper. Namespace and Codec are required; a nil Store
// falls back to an in-process store.NewLocal(0).
type Options[V any] struct {
	// Required
	Namespace string // isolates instances sharing one store backend. e.g. "profile", "geo"
	Codec     c.Codec[V]

	Store  st.Store // nil => store.NewLocal(0)
	Logger Logger   // nil => NopLogger
	Hooks  Hooks    // nil => NopHooks

	// TTL is handed to the store per Set; 0 => entries never expire.
	// MaxAge rejects entries older than the given age on read; 0 => never.
	// Both default to 0, which keeps the hit-never-refetches guarantee exact.
	TTL    time.Duration
	MaxAge time.Duration

	Disabled          bool        // pass-through mode: every Get goes to the fetch
	DisableCoalescing bool        // one fetch per caller instead of shared in-flight calls
	ComputeSetCost    SetCostFunc // default 1
}

// New builds a wrapper around fetch with a freshly created, empty store.
func New[V any](fetch Fetcher[V], opts Options[V]) (Memo[V], error) {
	return newMemo[V](fetch, opts)
}
