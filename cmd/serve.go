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
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/urlrelay/urlrelay/config"
	"github.com/urlrelay/urlrelay/param"
	"github.com/urlrelay/urlrelay/telegram"
	"github.com/urlrelay/urlrelay/transfer"
	"github.com/urlrelay/urlrelay/transfer/sink"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot: watch a Telegram bot account and relay requested URLs",
	RunE:  serveMain,
}

// engineConfig assembles the transfer engine configuration from the
// process parameters.
func engineConfig() (transfer.Config, error) {
	maxPartSize, err := config.MaxPartSize()
	if err != nil {
		return transfer.Config{}, err
	}
	return transfer.Config{
		MaxPartSize:      maxPartSize,
		StatusInterval:   param.Transfer_StatusInterval.GetDuration(),
		TempDirectory:    param.Transfer_TempDirectory.GetString(),
		MaxDownloadSpeed: param.Transfer_MaximumDownloadSpeed.GetInt64(),
	}, nil
}

// buildSink constructs the configured destination for a request arriving
// from the given chat.
func buildSink(client *telegram.Client, chatID int64) (transfer.Sink, error) {
	switch sinkType := param.Sink_Type.GetString(); sinkType {
	case "telegram":
		return &sink.TelegramSink{Client: client, ChatID: chatID}, nil
	case "webdav":
		return sink.NewWebDavSink(
			param.WebDav_Url.GetString(),
			param.WebDav_Username.GetString(),
			param.WebDav_Password.GetString(),
			param.Transfer_SinkTimeout.GetDuration(),
		)
	case "filesystem":
		return &sink.FilesystemSink{Dir: param.Sink_Directory.GetString()}, nil
	default:
		return nil, errors.Errorf("unknown value %q for %s", sinkType, param.Sink_Type.GetName())
	}
}

// extractRequest pulls a source URL out of an incoming chat message.  We
// accept "/upload <url>" (with or without a @botname suffix on the
// command) as well as a bare URL sent on its own.
func extractRequest(text string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "", false
	}
	command := fields[0]
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	if command == "/upload" {
		if len(fields) != 2 {
			return "", false
		}
		return fields[1], true
	}
	if len(fields) == 1 && strings.HasPrefix(command, "/") {
		return "", false
	}
	if len(fields) == 1 {
		return fields[0], true
	}
	return "", false
}

func handleMessage(ctx context.Context, engine *transfer.Engine, client *telegram.Client, msg *telegram.Message) {
	rawUrl, ok := extractRequest(msg.Text)
	if !ok {
		log.Debugln("Ignoring chat message that is not a transfer request:", msg.Text)
		return
	}
	if !transfer.IsSupportedURL(rawUrl) {
		if _, err := client.SendMessage(ctx, msg.Chat.ID, fmt.Sprintf("%s is not a valid http(s) URL", rawUrl)); err != nil {
			log.Errorln("Failed to reject invalid request:", err)
		}
		return
	}
	destination, err := buildSink(client, msg.Chat.ID)
	if err != nil {
		log.Errorln("Failed to construct the destination:", err)
		if _, err := client.SendMessage(ctx, msg.Chat.ID, "The destination is misconfigured; see the server logs"); err != nil {
			log.Errorln("Failed to report the misconfiguration:", err)
		}
		return
	}

	job := engine.NewJob(
		transfer.Request{Url: rawUrl, RequestedAt: time.Now()},
		destination,
		&telegram.ChatMessenger{Client: client, ChatID: msg.Chat.ID},
	)
	if _, err := job.Run(ctx); err != nil {
		log.WithFields(log.Fields{"url": rawUrl, "chat": msg.Chat.ID}).Errorln("Transfer failed:", err)
	}
}

func serveMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := telegram.New(
		param.Telegram_ApiBase.GetString(),
		param.Telegram_BotToken.GetString(),
		param.Transfer_SinkTimeout.GetDuration(),
	)
	if err != nil {
		return err
	}

	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	engine := transfer.NewEngine(config.GetClient(), cfg)

	pollTimeout := param.Telegram_PollTimeout.GetDuration()
	log.Infoln("Watching for transfer requests")

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			log.Infoln("Shutting down")
			return nil
		}
		updates, err := client.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Infoln("Shutting down")
				return nil
			}
			log.Errorln("Failed to poll for updates:", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for idx := range updates {
			update := updates[idx]
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil {
				continue
			}
			go handleMessage(ctx, engine, client, update.Message)
		}
	}
}
