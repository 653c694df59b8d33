package store

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

// Local keeps entries in-process behind a mutex (default).
// It never evicts: an entry stays until it expires or is deleted, which is
// what makes memofetch's "a stored key is never fetched again" guarantee
// exact. Optional janitor loop to prune expired entries.
type Local struct {
	mu      sync.RWMutex
	entries map[string]localEntry

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Store = (*Local)(nil)

// NewLocal builds an in-process store. cleanupInterval > 0 starts a janitor
// that prunes expired entries; 0 disables it (expired entries are still
// dropped lazily on Get).
func NewLocal(cleanupInterval time.Duration) *Local {
	s := &Local{entries: make(map[string]localEntry)}
	if cleanupInterval > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.prune()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		s.mu.Lock()
		// re-check under the write lock; a fresh Set may have replaced it
		if cur, ok := s.entries[key]; ok && !cur.exp.IsZero() && time.Now().After(cur.exp) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

func (s *Local) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = localEntry{v: value, exp: exp}
	s.mu.Unlock()
	return true, nil
}

func (s *Local) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *Local) Close(_ context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop()
			s.wg.Wait()
		}
	})
	return nil
}

// Len reports the number of live entries (expired-but-unpruned included).
func (s *Local) Len() int {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return n
}

func (s *Local) prune() {
	now := time.Now()
	s.mu.Lock()
	for k, e := range s.entries {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}
