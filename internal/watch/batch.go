// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"slices"
	"sync"
	"time"
)

// batch collects changed paths until the debounce window closes. At most
// one flush runs at a time; paths that arrive meanwhile wait for the next.
type batch struct {
	delay time.Duration
	flush func(changed []string)
	busy  func()

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	running bool
}

func newBatch(delay time.Duration, flush func([]string), busy func()) *batch {
	return &batch{delay: delay, flush: flush, busy: busy, pending: make(map[string]struct{})}
}

// add records rel and restarts the debounce window.
func (b *batch) add(rel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[rel] = struct{}{}
	b.arm()
}

// arm starts or restarts the timer. b.mu must be held.
func (b *batch) arm() {
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.fire)
		return
	}
	b.timer.Reset(b.delay)
}

// fire runs on the timer goroutine.
func (b *batch) fire() {
	b.mu.Lock()
	if b.running {
		// Retry later so the pending paths are not lost when no further
		// events arrive.
		b.arm()
		b.mu.Unlock()
		if b.busy != nil {
			b.busy()
		}
		return
	}
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(b.pending))
	for rel := range b.pending {
		changed = append(changed, rel)
	}
	clear(b.pending)
	b.running = true
	b.mu.Unlock()

	slices.Sort(changed)
	b.flush(changed)

	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// stop cancels a scheduled flush.
func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}
