// Package memofetch wraps an asynchronous fetch function with a private
// per-instance store: repeated calls for a key the wrapper has already
// resolved return the stored value without invoking the fetch again.
//
// Components:
//   - Fetcher[V]: the wrapped retrieval operation (key -> value, may fail).
//   - Store: byte store with TTL (Local by default; Ristretto, BigCache,
//     Redis adapters under store/).
//   - Codec[V]: (de)serializes V <-> []byte for the store.
//
// Contract:
//   - A hit never invokes the fetch.
//   - A successful fetch is stored before the value is returned.
//   - A failed fetch is propagated as *UpstreamError and never stored, so
//     the next call for that key retries.
//   - Concurrent misses for one key share a single in-flight fetch unless
//     coalescing is disabled.
//
// Keys:
//
//	memo:<ns>:<key> - storage keys, namespaced per wrapper instance
package memofetch
