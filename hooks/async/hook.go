// Package asynchook decorates a memofetch.Hooks so that events are handed to
// the inner implementation on worker goroutines. Events are dropped when the
// queue is full; the wrapper's hot paths never block on observation.
//
// usage:
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	m, _ := memofetch.New[Profile](fetchProfile, memofetch.Options[Profile]{
//	    Namespace: "profile",
//	    Codec:     codec.JSON[Profile]{},
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/memofetch"
)

type Hooks struct {
	inner memofetch.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ memofetch.Hooks = (*Hooks)(nil)

func New(inner memofetch.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(k string)              { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)             { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) CoalescedWaiter(k string)  { h.try(func() { h.inner.CoalescedWaiter(k) }) }
func (h *Hooks) StoreSetRejected(k string) { h.try(func() { h.inner.StoreSetRejected(k) }) }
func (h *Hooks) UpstreamError(k string, err error) {
	h.try(func() { h.inner.UpstreamError(k, err) })
}
func (h *Hooks) SelfHeal(k, reason string) {
	h.try(func() { h.inner.SelfHeal(k, reason) })
}
