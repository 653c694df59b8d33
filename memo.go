package memofetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/memofetch/codec"
	"github.com/unkn0wn-root/memofetch/internal/wire"
	st "github.com/unkn0wn-root/memofetch/store"
)

type memo[V any] struct {
	ns    string
	fetch Fetcher[V]
	store st.Store
	codec c.Codec[V]
	log   Logger
	hooks Hooks

	enabled bool

	ttl            time.Duration
	maxAge         time.Duration
	computeSetCost SetCostFunc

	// nil when coalescing is disabled
	flight *singleflight.Group
}

func newMemo[V any](fetch Fetcher[V], opts Options[V]) (*memo[V], error) {
	if fetch == nil {
		return nil, fmt.Errorf("memofetch: fetcher is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("memofetch: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("memofetch: namespace is required")
	}

	m := &memo[V]{
		ns:    opts.Namespace,
		fetch: fetch,
		codec: opts.Codec,
	}

	defaultCost := SetCostFunc(func(_ string, _ []byte) int64 { return 1 })
	if opts.ComputeSetCost != nil {
		m.computeSetCost = opts.ComputeSetCost
	} else {
		m.computeSetCost = defaultCost
	}

	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	m.ttl = opts.TTL
	m.maxAge = opts.MaxAge

	if opts.Store != nil {
		m.store = opts.Store
	} else {
		m.store = st.NewLocal(0)
	}

	m.enabled = !opts.Disabled

	if !opts.DisableCoalescing {
		m.flight = new(singleflight.Group)
	}
	return m, nil
}

func (m *memo[V]) Enabled() bool { return m.enabled }

func (m *memo[V]) Close(ctx context.Context) error {
	if m.store != nil {
		return m.store.Close(ctx)
	}
	return nil
}

func (m *memo[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	if !m.enabled {
		v, err := m.fetch(ctx, key)
		if err != nil {
			m.hooks.UpstreamError(key, err)
			return zero, &UpstreamError{Key: key, Err: err}
		}
		return v, nil
	}

	if v, ok := m.lookup(ctx, key); ok {
		m.hooks.Hit(key)
		return v, nil
	}
	m.hooks.Miss(key)

	if m.flight == nil {
		return m.fetchAndStore(ctx, key)
	}

	// Coalesce concurrent misses for the same key into one fetch.
	res, err, shared := m.flight.Do(m.storageKey(key), func() (any, error) {
		v, err := m.fetchAndStore(ctx, key)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if shared {
		m.hooks.CoalescedWaiter(key)
	}
	if err != nil {
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

func (m *memo[V]) Peek(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !m.enabled {
		return zero, false, nil
	}
	k := m.storageKey(key)
	raw, ok, err := m.store.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	fetchedAt, payload, err := wire.Decode(raw)
	if err != nil {
		m.selfHeal(ctx, k, "corrupt")
		return zero, false, nil
	}
	if m.stale(fetchedAt) {
		m.selfHeal(ctx, k, "max_age")
		return zero, false, nil
	}
	v, err := m.codec.Decode(payload)
	if err != nil {
		m.selfHeal(ctx, k, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}

func (m *memo[V]) Forget(ctx context.Context, key string) error {
	if !m.enabled {
		return nil
	}
	k := m.storageKey(key)
	if err := m.store.Del(ctx, k); err != nil {
		return err
	}
	m.log.Debug("forgot key", Fields{"key": key})
	return nil
}

// lookup is the read half of Get. Store errors are treated as misses so a
// flaky backend degrades to extra fetches instead of failed reads.
func (m *memo[V]) lookup(ctx context.Context, key string) (V, bool) {
	var zero V
	k := m.storageKey(key)
	raw, ok, err := m.store.Get(ctx, k)
	if err != nil {
		m.log.Warn("store get error; treating as miss", Fields{"key": key, "err": err})
		return zero, false
	}
	if !ok {
		return zero, false
	}
	fetchedAt, payload, err := wire.Decode(raw)
	if err != nil {
		m.selfHeal(ctx, k, "corrupt")
		return zero, false
	}
	if m.stale(fetchedAt) {
		m.selfHeal(ctx, k, "max_age")
		return zero, false
	}
	v, err := m.codec.Decode(payload)
	if err != nil {
		m.selfHeal(ctx, k, "value_decode")
		return zero, false
	}
	return v, true
}

func (m *memo[V]) fetchAndStore(ctx context.Context, key string) (V, error) {
	var zero V
	v, err := m.fetch(ctx, key)
	if err != nil {
		m.hooks.UpstreamError(key, err)
		return zero, &UpstreamError{Key: key, Err: err}
	}
	// A store failure must not fail the call; the value was fetched fine.
	if err := m.storeValue(ctx, key, v); err != nil {
		m.log.Warn("store skipped", Fields{"key": key, "err": err})
	}
	return v, nil
}

func (m *memo[V]) storeValue(ctx context.Context, key string, v V) error {
	payload, err := m.codec.Encode(v)
	if err != nil {
		return err
	}
	k := m.storageKey(key)
	raw := wire.Encode(time.Now(), payload)
	ok, err := m.store.Set(ctx, k, raw, m.computeSetCost(k, raw), m.ttl)
	if err != nil {
		return err
	}
	if !ok {
		m.hooks.StoreSetRejected(k)
		m.log.Debug("set rejected by store (pressure)", Fields{"key": key})
	}
	return nil
}

func (m *memo[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	_ = m.store.Del(ctx, storageKey)
	m.hooks.SelfHeal(storageKey, reason)
}

func (m *memo[V]) stale(fetchedAt time.Time) bool {
	return m.maxAge > 0 && time.Since(fetchedAt) > m.maxAge
}

func (m *memo[V]) storageKey(userKey string) string {
	// isolate by namespace
	return "memo:" + m.ns + ":" + userKey
}
