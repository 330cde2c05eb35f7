// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package autorefresher runs a background task that periodically refreshes
// a vault's AutoRefresh-flagged secrets. The polling loop and its Ticker
// abstraction mirror the update poller in this stack's other secret-store
// client.
package autorefresher

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/types"
)

// Refresher is the subset of *vault.Vault the AutoRefresher depends on.
// Defining it as an interface keeps this package independent of the vault
// package for testing purposes.
type Refresher interface {
	RefreshOnly(ctx context.Context, predicate func(types.SecretRef) bool) error
}

// Ticker abstracts the timer source driving the refresh loop, so tests can
// supply a fake one instead of waiting on a real clock.
type Ticker interface {
	// Chan returns a channel on which a value is delivered each time a
	// refresh should run.
	Chan() <-chan time.Time
	// Stop releases the ticker's resources.
	Stop()
}

type stdTicker struct{ *time.Ticker }

func (s stdTicker) Chan() <-chan time.Time { return s.Ticker.C }

// Config configures an AutoRefresher.
type Config struct {
	// Vault is the vault whose AutoRefresh-flagged secrets are kept
	// current. Required.
	Vault Refresher

	// Interval is how often to refresh. If zero, a default of one minute
	// is used.
	Interval time.Duration

	// Logf receives diagnostic lines. If nil, the standard logger is used.
	Logf logger.Logf

	// NewTicker, if set, overrides the ticker construction. Tests use this
	// to supply a fake Ticker instead of a real time.Ticker.
	NewTicker func(time.Duration) Ticker

	// BackgroundContext, if non-nil, is the parent context for the
	// refresh loop instead of context.Background.
	BackgroundContext context.Context
}

func (c Config) logger() logger.Logf {
	if c.Logf == nil {
		return log.Printf
	}
	return c.Logf
}

func (c Config) interval() time.Duration {
	if c.Interval <= 0 {
		return time.Minute
	}
	return c.Interval
}

func (c Config) newTicker() func(time.Duration) Ticker {
	if c.NewTicker != nil {
		return c.NewTicker
	}
	return func(d time.Duration) Ticker {
		return stdTicker{Ticker: time.NewTicker(d)}
	}
}

// AutoRefresher periodically calls RefreshOnly against the secrets a vault
// has marked AutoRefresh. Start and Shutdown are each idempotent: a second
// Start is a no-op, and Shutdown may be called any number of times,
// including before Start or after a prior Shutdown.
type AutoRefresher struct {
	vault     Refresher
	interval  time.Duration
	logf      logger.Logf
	newTicker func(time.Duration) Ticker

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New constructs an AutoRefresher from cfg. The returned value is inert
// until Start is called.
func New(cfg Config) *AutoRefresher {
	return &AutoRefresher{
		vault:     cfg.Vault,
		interval:  cfg.interval(),
		logf:      cfg.logger(),
		newTicker: cfg.newTicker(),
	}
}

// Start launches the background refresh loop. Calling Start more than once
// has no effect beyond the first call.
func (a *AutoRefresher) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return
	}
	a.started = true

	pctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(pctx, a.done)
}

// Shutdown signals the refresh loop to stop and waits for it to exit. It is
// safe to call Shutdown multiple times, and safe to call it without a
// preceding Start.
func (a *AutoRefresher) Shutdown() {
	a.mu.Lock()
	if a.cancel == nil {
		a.mu.Unlock()
		return
	}
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	cancel()
	<-done
}

func (a *AutoRefresher) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	// Jitter by up to ±10% of the interval to avert a thundering herd
	// across many vaults refreshing on the same schedule.
	jitter := time.Duration(rand.Intn(2*int(a.interval)/10) - (int(a.interval) / 10))
	t := a.newTicker(a.interval + jitter)
	defer t.Stop()

	a.logf("autorefresher: starting (interval=%v)", a.interval+jitter)
	for {
		select {
		case <-ctx.Done():
			a.logf("autorefresher: stopping")
			return
		case <-t.Chan():
			err := a.vault.RefreshOnly(ctx, func(ref types.SecretRef) bool { return ref.AutoRefresh })
			if err != nil {
				a.logf("autorefresher: refresh failed: %v (continuing)", err)
			}
		}
	}
}
