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
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/urlrelay/urlrelay/config"
	"github.com/urlrelay/urlrelay/transfer"
	"github.com/urlrelay/urlrelay/transfer/sink"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch {source_url} [destination_dir]",
	Short: "Relay a single URL into a local directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  fetchMain,
}

// logMessenger routes transfer status text to the process log so fetch
// works without any chat backend.
type logMessenger struct{}

func (logMessenger) SendStatus(ctx context.Context, text string) (transfer.StatusHandle, error) {
	log.Infoln(strings.ReplaceAll(text, "\n", "; "))
	return 0, nil
}

func (logMessenger) EditStatus(ctx context.Context, handle transfer.StatusHandle, text string) error {
	log.Infoln(strings.ReplaceAll(text, "\n", "; "))
	return nil
}

func fetchMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dest := "."
	if len(args) == 2 {
		dest = args[1]
	}

	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	engine := transfer.NewEngine(config.GetClient(), cfg)

	display := newTransferDisplay()
	display.launch(ctx)
	defer display.shutdown()

	job := engine.NewJob(
		transfer.Request{Url: args[0], RequestedAt: time.Now()},
		&sink.FilesystemSink{Dir: dest},
		logMessenger{},
		transfer.WithCallback(display.callback),
	)
	stats, err := job.Run(ctx)
	if err != nil {
		return err
	}
	log.Infof("Fetched %s in %s (%s/s, %d part(s))",
		transfer.ByteCountIEC(stats.TotalBytes), stats.Elapsed.Round(time.Millisecond),
		transfer.ByteCountIEC(stats.BytesPerSecond), stats.Parts)
	return nil
}
