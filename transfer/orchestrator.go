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

// Package transfer implements the large-file relay pipeline: probe a
// remote HTTP(S) object for its size and name, split it into parts bounded
// by the destination's maximum object size, and move each part
// source → temporary storage → destination strictly in sequence while a
// throttled reporter keeps a single status message up to date.
package transfer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/VividCortex/ewma"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type (
	// A Request asks for one URL to be relayed to the destination.
	// Immutable once created; consumed by exactly one TransferJob.
	Request struct {
		Url         string
		RequestedAt time.Time
	}

	// TransferStats summarize one completed transfer.  Computed for
	// display only, never persisted.
	TransferStats struct {
		TotalBytes     int64
		Parts          int
		Elapsed        time.Duration
		BytesPerSecond int64
	}

	// TransferCallbackFunc is invoked periodically during a part's
	// download with the part name, the current bytes moved, the total
	// part size, and whether the part's download has completed.
	TransferCallbackFunc = func(name string, downloaded int64, totalSize int64, completed bool)

	// An Engine drives whole transfers.  It is long-lived and safe for
	// use by concurrent jobs, which share only the HTTP client's
	// connection pool and the engine-wide rate average.
	Engine struct {
		client *http.Client
		cfg    Config

		rateMu   sync.Mutex
		partRate ewma.MovingAverage
	}

	// Config carries the pipeline tunables.  It is constructed once at
	// startup and passed into the engine; components never consult global
	// configuration themselves.
	Config struct {
		MaxPartSize      int64
		StatusInterval   time.Duration
		TempDirectory    string
		MaxDownloadSpeed int64
	}

	// A TransferJob binds one request to its destination sink and status
	// messenger.  Jobs are single-use.
	TransferJob struct {
		engine    *Engine
		request   Request
		sink      Sink
		messenger Messenger
		callback  TransferCallbackFunc
		id        uuid.UUID
	}

	// Option customizes a TransferJob.
	Option func(*TransferJob)
)

const (
	DefaultMaxPartSize    = int64(4) * 1024 * 1024 * 1024
	DefaultStatusInterval = 5 * time.Second
)

// WithCallback provides a callback that is invoked periodically with
// download progress, in addition to the job's status messenger.  Used by
// the CLI to drive console progress bars.
func WithCallback(callback TransferCallbackFunc) Option {
	return func(tj *TransferJob) {
		tj.callback = callback
	}
}

// NewEngine builds an engine around the shared HTTP client.  Zero-valued
// config fields fall back to the defaults.
func NewEngine(client *http.Client, cfg Config) *Engine {
	if cfg.MaxPartSize <= 0 {
		cfg.MaxPartSize = DefaultMaxPartSize
	}
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = DefaultStatusInterval
	}
	if cfg.TempDirectory == "" {
		cfg.TempDirectory = os.TempDir()
	}
	return &Engine{
		client:   client,
		cfg:      cfg,
		partRate: ewma.NewMovingAverage(),
	}
}

// NewJob creates a single-use job relaying the request to sink, with
// status messages going through messenger.
func (e *Engine) NewJob(request Request, sink Sink, messenger Messenger, options ...Option) *TransferJob {
	tj := &TransferJob{
		engine:    e,
		request:   request,
		sink:      sink,
		messenger: messenger,
		id:        uuid.New(),
	}
	for _, option := range options {
		option(tj)
	}
	return tj
}

// AverageRate returns the engine-wide smoothed transfer rate in bytes per
// second, aggregated over completed jobs.
func (e *Engine) AverageRate() int64 {
	e.rateMu.Lock()
	defer e.rateMu.Unlock()
	return int64(e.partRate.Value())
}

func (e *Engine) recordRate(bytesPerSecond int64) {
	e.rateMu.Lock()
	defer e.rateMu.Unlock()
	e.partRate.Add(float64(bytesPerSecond))
}

// Run performs the whole transfer: probe, plan, then per part download,
// upload, and cleanup, strictly in sequence.  Every failure — including a
// panic in a collaborator — is reported to the user as a single status
// message; the returned error carries the same cause for callers that need
// to inspect it.
func (tj *TransferJob) Run(ctx context.Context) (stats TransferStats, err error) {
	e := tj.engine
	fields := log.Fields{"transfer": tj.id.String(), "url": tj.request.Url}
	reporter := NewReporter(tj.messenger, e.cfg.StatusInterval)
	defer reporter.Wait()

	delivered, totalParts := 0, 0
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(fields).Errorln("Panic occurred during transfer:", r)
			err = errors.Errorf("unrecoverable error (panic) during transfer: %v", r)
		}
		if err != nil {
			log.WithFields(fields).Errorln("Transfer failed:", err)
			msg := "Transfer failed: " + userFacingMessage(err)
			if delivered > 0 {
				msg += fmt.Sprintf(" (%d of %d parts were already delivered)", delivered, totalParts)
			}
			reporter.Post(ctx, msg)
		}
	}()

	if !IsSupportedURL(tj.request.Url) {
		return stats, &InvalidInputError{Input: tj.request.Url}
	}

	start := time.Now()
	log.WithFields(fields).Infoln("Starting transfer")
	reporter.Post(ctx, fmt.Sprintf("Processing %s ...", tj.request.Url))

	meta, err := Probe(ctx, e.client, tj.request.Url)
	if err != nil {
		return stats, err
	}
	if meta.Size <= 0 {
		return stats, &UnreachableSourceError{Url: tj.request.Url}
	}

	plan := Plan(meta.Name, meta.Size, e.cfg.MaxPartSize)
	totalParts = len(plan.Parts)
	log.WithFields(fields).Infof("Transferring %s (%s) in %d part(s)", meta.Name, ByteCountIEC(meta.Size), totalParts)

	for _, part := range plan.Parts {
		if err = tj.runPart(ctx, reporter, plan, part); err != nil {
			return stats, err
		}
		delivered++
		stats.Parts++
		stats.TotalBytes += part.Length()
	}

	stats.Elapsed = time.Since(start)
	if stats.Elapsed > 0 {
		stats.BytesPerSecond = int64(float64(stats.TotalBytes) / stats.Elapsed.Seconds())
	}
	e.recordRate(stats.BytesPerSecond)
	log.WithFields(fields).Infof("Transfer complete: %s in %s (%s/s); engine average is %s/s",
		ByteCountIEC(stats.TotalBytes), stats.Elapsed.Round(time.Millisecond), ByteCountIEC(stats.BytesPerSecond), ByteCountIEC(e.AverageRate()))

	reporter.Post(ctx, fmt.Sprintf("Done: %s — %s in %s (%s/s, %d part(s))",
		meta.Name, ByteCountIEC(stats.TotalBytes), stats.Elapsed.Round(time.Second), ByteCountIEC(stats.BytesPerSecond), stats.Parts))
	return stats, nil
}

// runPart moves one planned part source → temp → destination.  The
// temporary object is released on every exit path, including panics in the
// download or upload.
func (tj *TransferJob) runPart(ctx context.Context, reporter *Reporter, plan PartPlan, part Part) error {
	e := tj.engine
	fields := log.Fields{"transfer": tj.id.String(), "part": part.Name}

	tmp, err := newTempObject(e.cfg.TempDirectory, part.Name)
	if err != nil {
		return err
	}
	defer tmp.Release()

	label := plan.Label(part)

	reporter.StartPhase("Downloading "+label, part.Length())
	downloadStart := time.Now()
	written, err := downloadRange(ctx, e.client, tj.request.Url, part, tmp, e.cfg.MaxDownloadSpeed, func(current, total int64) {
		reporter.Update(ctx, current)
		if tj.callback != nil {
			tj.callback(part.Name, current, total, false)
		}
	})
	if err != nil {
		return err
	}
	if tj.callback != nil {
		tj.callback(part.Name, written, part.Length(), true)
	}
	log.WithFields(fields).Debugf("Downloaded %s in %s", ByteCountIEC(written), time.Since(downloadStart).Round(time.Millisecond))

	reporter.StartPhase("Uploading "+label, part.Length())
	uploadStart := time.Now()
	if err := uploadPart(ctx, tj.sink, tmp, part.Name, plan.Caption(part), func(current, total int64) {
		reporter.Update(ctx, current)
	}); err != nil {
		return err
	}
	log.WithFields(fields).Debugf("Uploaded %s in %s", ByteCountIEC(part.Length()), time.Since(uploadStart).Round(time.Millisecond))
	return nil
}

// userFacingMessage reduces err to a short description safe to show the
// user.  Unanticipated errors collapse into a generic message; the full
// cause has already been logged for diagnosis.
func userFacingMessage(err error) string {
	var invalid *InvalidInputError
	var unreachable *UnreachableSourceError
	var rangeErr *RangeRequestError
	var sinkErr *SinkRejectedError
	switch {
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &unreachable):
		return unreachable.Error()
	case errors.As(err, &rangeErr):
		return rangeErr.Error()
	case errors.As(err, &sinkErr):
		return sinkErr.Error()
	}
	return "an internal error occurred"
}
