package store

import (
	"context"
	"testing"
	"time"
)

func TestLocalSetGetDel(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	if ok, err := s.Set(ctx, "k", []byte("v"), 1, 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("Get: b=%q ok=%v err=%v", b, ok, err)
	}

	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("entry should be gone after Del")
	}
}

func TestLocalZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Set(ctx, "k", []byte("v"), 1, 0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("ttl=0 entry must not expire")
	}
}

func TestLocalTTLExpiresLazily(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0) // no janitor; expiry happens on Get
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Set(ctx, "k", []byte("v"), 1, 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expired entry should miss")
	}
	if s.Len() != 0 {
		t.Fatalf("lazy expiry should remove the entry, len=%d", s.Len())
	}
}

func TestLocalJanitorPrunes(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(20 * time.Millisecond)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Set(ctx, "old", []byte("v"), 1, 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set(ctx, "keep", []byte("v"), 1, 0); err != nil {
		t.Fatal(err)
	}

	time.Sleep(120 * time.Millisecond)
	if s.Len() != 1 {
		t.Fatalf("janitor should prune expired entries, len=%d", s.Len())
	}
	if _, ok, _ := s.Get(ctx, "keep"); !ok {
		t.Fatalf("unexpired entry should survive the janitor")
	}
}

func TestLocalCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(10 * time.Millisecond)
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
}
