// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package autorefresher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vaultkit/vault/encryption"
	"github.com/vaultkit/vault/source"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vault"
)

// fakeTicker lets a test drive ticks deterministically instead of waiting
// on a real clock.
type fakeTicker struct {
	c      chan time.Time
	stopCh chan struct{}
	once   sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{c: make(chan time.Time, 1), stopCh: make(chan struct{})}
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()                  { f.once.Do(func() { close(f.stopCh) }) }
func (f *fakeTicker) tick()                  { f.c <- time.Now() }

type countingRefresher struct {
	mu       sync.Mutex
	calls    int
	gotPreds []bool // predicate(ref with AutoRefresh=true) result, per call
}

func (r *countingRefresher) RefreshOnly(_ context.Context, predicate func(types.SecretRef) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.gotPreds = append(r.gotPreds, predicate(types.NewSecretRef(types.NewVaultKey("x")).WithAutoRefresh()))
	return nil
}

func (r *countingRefresher) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestAutoRefresher_TicksTriggerRefreshOnlyWithAutoRefreshPredicate(t *testing.T) {
	ticker := newFakeTicker()
	refresher := &countingRefresher{}
	a := New(Config{
		Vault:     refresher,
		Interval:  time.Second,
		NewTicker: func(time.Duration) Ticker { return ticker },
	})

	a.Start(context.Background())
	defer a.Shutdown()

	for i := 0; i < 5; i++ {
		ticker.tick()
		waitForCallCount(t, refresher, i+1)
	}

	if got := refresher.callCount(); got != 5 {
		t.Fatalf("callCount = %d, want 5", got)
	}
	for _, matched := range refresher.gotPreds {
		if !matched {
			t.Error("predicate did not select an AutoRefresh=true ref")
		}
	}
}

func waitForCallCount(t *testing.T, r *countingRefresher, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if r.callCount() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("callCount did not reach %d in time (got %d)", want, r.callCount())
}

func TestAutoRefresher_ShutdownStopsLoopPromptly(t *testing.T) {
	ticker := newFakeTicker()
	refresher := &countingRefresher{}
	a := New(Config{
		Vault:     refresher,
		Interval:  time.Second,
		NewTicker: func(time.Duration) Ticker { return ticker },
	})

	a.Start(context.Background())
	ticker.tick()
	waitForCallCount(t, refresher, 1)

	done := make(chan struct{})
	go func() {
		a.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return promptly")
	}
}

func TestAutoRefresher_StartIsIdempotent(t *testing.T) {
	ticker := newFakeTicker()
	refresher := &countingRefresher{}
	a := New(Config{
		Vault:     refresher,
		Interval:  time.Second,
		NewTicker: func(time.Duration) Ticker { return ticker },
	})

	a.Start(context.Background())
	a.Start(context.Background()) // no-op: must not spawn a second loop
	defer a.Shutdown()

	ticker.tick()
	waitForCallCount(t, refresher, 1)
	time.Sleep(20 * time.Millisecond)
	if got := refresher.callCount(); got != 1 {
		t.Fatalf("callCount = %d, want 1 (second Start must be a no-op)", got)
	}
}

func TestAutoRefresher_ShutdownBeforeStartIsSafe(t *testing.T) {
	a := New(Config{Vault: &countingRefresher{}})
	a.Shutdown() // must not panic or block
	a.Shutdown() // repeated shutdown is also safe
}

func TestAutoRefresher_EndToEndWithRealVault(t *testing.T) {
	seed := make(map[types.VaultKey][]byte, 5)
	refs := make([]types.SecretRef, 0, 5)
	for i := 0; i < 5; i++ {
		key := types.NewVaultKey(types.SecretName(string(rune('a' + i))))
		seed[key] = []byte("v0")
		refs = append(refs, types.NewSecretRef(key).WithAutoRefresh())
	}
	src := source.NewMockSource(seed)
	enc, err := encryption.NewInMemoryAEAD()
	if err != nil {
		t.Fatalf("NewInMemoryAEAD: %v", err)
	}
	v, err := vault.NewBuilder().WithSource(src).WithEncryption(enc).WithSecretRefs(refs).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("initial Refresh: %v", err)
	}

	a := New(Config{Vault: v, Interval: 50 * time.Millisecond})
	a.Start(context.Background())
	defer a.Shutdown()

	// Mutate the source; within a few 50ms cycles the auto-refreshed
	// secrets should pick up the new value without any explicit refresh.
	for key := range seed {
		src.Add(key, []byte("v1"))
	}

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		secret, ok, err := v.GetSecret(context.Background(), "a")
		if err == nil && ok {
			str, _ := secret.Value.AsString()
			secret.Close()
			if str == "v1" {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("secret was not auto-refreshed to v1 within 300ms")
}

func TestAutoRefresher_ShutdownIsIdempotent(t *testing.T) {
	ticker := newFakeTicker()
	refresher := &countingRefresher{}
	a := New(Config{
		Vault:     refresher,
		Interval:  time.Second,
		NewTicker: func(time.Duration) Ticker { return ticker },
	})
	a.Start(context.Background())
	a.Shutdown()
	a.Shutdown() // must not panic or double-close anything
}
