/***************************************************************
 *
 * Copyright (C) 2025, URL Relay Project
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

package transfer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// How many status emissions may be in flight at once before further
// updates are dropped
const maxInflightEmissions = 4

type (
	// A StatusHandle identifies the live status message one transfer keeps
	// editing in place.
	StatusHandle int64

	// Messenger posts and edits the status messages a transfer emits.
	// EditStatus may fail (message deleted, rate-limited); callers fall
	// back to SendStatus and adopt the new handle.
	Messenger interface {
		SendStatus(ctx context.Context, text string) (StatusHandle, error)
		EditStatus(ctx context.Context, handle StatusHandle, text string) error
	}

	// progressState tracks one phase (the download or the upload of the
	// current part).  It is reset at the start of each phase and mutated
	// only under the reporter's lock.
	progressState struct {
		label    string
		total    int64
		current  int64
		started  time.Time
		lastEmit time.Time
	}

	// A Reporter turns unthrottled byte-progress callbacks into periodic
	// status-message edits.  At most one emission happens per interval and
	// emissions run on a bounded background group, so message I/O latency
	// never blocks the copy loop.  A failed emission is logged and
	// swallowed.
	Reporter struct {
		messenger Messenger
		interval  time.Duration

		mu        sync.Mutex
		phase     progressState
		handle    StatusHandle
		hasHandle bool

		egrp *errgroup.Group
	}
)

// NewReporter builds a reporter that posts through messenger at most once
// per interval.
func NewReporter(messenger Messenger, interval time.Duration) *Reporter {
	egrp := &errgroup.Group{}
	egrp.SetLimit(maxInflightEmissions)
	return &Reporter{
		messenger: messenger,
		interval:  interval,
		egrp:      egrp,
	}
}

// StartPhase resets the progress state for a new download or upload phase.
// The first progress callback of the phase emits immediately.
func (r *Reporter) StartPhase(label string, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = progressState{label: label, total: total, started: time.Now()}
}

// Update is the unthrottled progress callback wired into the copy loops.
// It records the cumulative byte count and, when the throttle interval has
// elapsed since the last emission for this phase, fires a background
// status edit.
func (r *Reporter) Update(ctx context.Context, current int64) {
	r.mu.Lock()
	now := time.Now()
	r.phase.current = current
	if now.Sub(r.phase.lastEmit) < r.interval {
		r.mu.Unlock()
		return
	}
	r.phase.lastEmit = now
	text := r.phase.render()
	r.mu.Unlock()

	if !r.egrp.TryGo(func() error {
		r.emit(ctx, text)
		return nil
	}) {
		// Only the throttle timestamp matters; a dropped update is
		// replaced by a fresher one within one interval.
		log.Debugln("Dropping status update; previous emissions still in flight")
	}
}

// Post synchronously emits a status message, bypassing the throttle.  Used
// for the initial, terminal failure, and summary messages.
func (r *Reporter) Post(ctx context.Context, text string) {
	r.emit(ctx, text)
}

// Wait blocks until all in-flight background emissions have finished.
func (r *Reporter) Wait() {
	_ = r.egrp.Wait()
}

// emit edits the existing status message in place, falling back to sending
// a fresh message (and adopting its handle) when the edit fails for any
// reason.
func (r *Reporter) emit(ctx context.Context, text string) {
	r.mu.Lock()
	handle, ok := r.handle, r.hasHandle
	r.mu.Unlock()

	if ok {
		if err := r.messenger.EditStatus(ctx, handle, text); err == nil {
			return
		} else {
			log.Debugln("Failed to edit status message; sending a new one:", err)
		}
	}
	newHandle, err := r.messenger.SendStatus(ctx, text)
	if err != nil {
		log.Warningln("Failed to send status message:", err)
		return
	}
	r.mu.Lock()
	r.handle, r.hasHandle = newHandle, true
	r.mu.Unlock()
}

// render rebuilds the status text from scratch: phase label, percent,
// bytes moved in binary units, rate, and ETA.  The ETA is omitted until
// there is enough signal to compute one.
func (ps *progressState) render() string {
	var sb strings.Builder
	sb.WriteString(ps.label)
	if ps.total > 0 {
		percent := float64(ps.current) / float64(ps.total) * 100
		fmt.Fprintf(&sb, "\n%.1f%% (%s of %s)", percent, ByteCountIEC(ps.current), ByteCountIEC(ps.total))
	} else {
		fmt.Fprintf(&sb, "\n%s so far", ByteCountIEC(ps.current))
	}

	elapsed := time.Since(ps.started)
	if elapsed > 0 && ps.current > 0 {
		bytesPerSecond := int64(float64(ps.current) / elapsed.Seconds())
		fmt.Fprintf(&sb, "\n%s/s", ByteCountIEC(bytesPerSecond))
		if bytesPerSecond > 0 && ps.total > ps.current {
			eta := time.Duration(float64(ps.total-ps.current)/float64(bytesPerSecond)) * time.Second
			fmt.Fprintf(&sb, ", ETA %s", eta.Round(time.Second))
		}
	}
	return sb.String()
}
