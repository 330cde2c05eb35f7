// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package vaulttest

import (
	"sync"
	"time"

	"github.com/vaultkit/vault/autorefresher"
)

// FakeTicker implements autorefresher.Ticker so that tests can drive
// refresh cycles deterministically instead of waiting on a real clock.
type FakeTicker struct {
	c    chan time.Time
	once sync.Once
	stop chan struct{}
}

// NewFakeTicker returns a FakeTicker with no pending ticks.
func NewFakeTicker() *FakeTicker {
	return &FakeTicker{c: make(chan time.Time, 1), stop: make(chan struct{})}
}

// Chan implements the Ticker interface.
func (f *FakeTicker) Chan() <-chan time.Time { return f.c }

// Stop implements the Ticker interface.
func (f *FakeTicker) Stop() { f.once.Do(func() { close(f.stop) }) }

// Tick delivers one tick to the channel Chan returns, as if the interval
// had elapsed.
func (f *FakeTicker) Tick() { f.c <- time.Now() }

// NewTickerFunc returns a constructor suitable for autorefresher.Config's
// NewTicker field, always returning this same FakeTicker regardless of the
// requested interval.
func (f *FakeTicker) NewTickerFunc() func(time.Duration) autorefresher.Ticker {
	return func(time.Duration) autorefresher.Ticker { return f }
}
