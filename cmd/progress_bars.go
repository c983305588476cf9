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

package main

import (
	"context"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"
)

const displayTick = 200 * time.Millisecond

type (
	partProgress struct {
		xfer      int64
		size      int64
		completed bool
	}

	partBar struct {
		partProgress
		bar *mpb.Bar
	}

	// transferDisplay renders one terminal progress bar per part, fed by
	// the engine's progress callback.  Parts run strictly in sequence, so
	// a bar is added when its part first reports and finalized when the
	// part's download completes; bars are never reclaimed mid-run.
	transferDisplay struct {
		lock      sync.RWMutex
		done      chan struct{}
		closeOnce sync.Once
		status    map[string]partProgress
		egrp      *errgroup.Group
	}
)

func newTransferDisplay() *transferDisplay {
	return &transferDisplay{
		done:   make(chan struct{}),
		status: make(map[string]partProgress),
	}
}

func (td *transferDisplay) callback(name string, xfer int64, size int64, completed bool) {
	td.lock.Lock()
	defer td.lock.Unlock()
	stat := td.status[name]
	stat.completed = completed
	stat.size = size
	stat.xfer = xfer
	td.status[name] = stat
}

// shutdown stops the display and waits for the render goroutine.  Safe to
// call after the launch context was canceled, and safe to call twice.
func (td *transferDisplay) shutdown() {
	if td.egrp == nil {
		return
	}
	td.closeOnce.Do(func() { close(td.done) })
	if err := td.egrp.Wait(); err != nil {
		log.Debugln("Failure to shut down the progress display:", err)
	}
}

// refresh applies the latest callback snapshots to the bars, creating a
// bar the first time its part reports and closing it out on completion.
func (td *transferDisplay) refresh(progressCtr *mpb.Progress, bars map[string]*partBar) {
	td.lock.RLock()
	defer td.lock.RUnlock()
	for name, stat := range td.status {
		pb := bars[name]
		if pb == nil {
			pb = &partBar{bar: newPartBar(progressCtr, name)}
			bars[name] = pb
		}
		if pb.size == 0 && stat.size > 0 {
			pb.bar.SetTotal(stat.size, false)
		}
		pb.bar.EwmaSetCurrent(stat.xfer, displayTick)
		if stat.completed && !pb.completed {
			pb.bar.SetTotal(stat.size, true)
		}
		pb.partProgress = stat
	}
}

func newPartBar(progressCtr *mpb.Progress, name string) *mpb.Bar {
	return progressCtr.AddBar(0,
		mpb.PrependDecorators(
			decor.Name(name, decor.WCSyncSpaceR),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 15), ""),
			decor.OnComplete(decor.Name(" ] "), ""),
			decor.OnComplete(decor.EwmaSpeed(decor.SizeB1024(0), "% .2f", 15), "Done!"),
		),
	)
}

func (td *transferDisplay) launch(ctx context.Context) {
	progressCtr := mpb.NewWithContext(ctx)
	log.SetOutput(progressCtr)
	td.egrp, _ = errgroup.WithContext(ctx)

	td.egrp.Go(func() error {
		defer func() {
			log.SetOutput(os.Stdout)
			progressCtr.Wait()
		}()

		ticker := time.NewTicker(displayTick)
		defer ticker.Stop()
		bars := make(map[string]*partBar)
		for {
			select {
			case <-ctx.Done():
				abortBars(bars)
				return ctx.Err()
			case <-td.done:
				abortBars(bars)
				return nil
			case <-ticker.C:
				td.refresh(progressCtr, bars)
			}
		}
	})
}

func abortBars(bars map[string]*partBar) {
	for _, pb := range bars {
		pb.bar.Abort(true)
		pb.bar.Wait()
	}
}
