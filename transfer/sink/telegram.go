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

package sink

import (
	"context"
	"io"

	"github.com/urlrelay/urlrelay/telegram"
)

// TelegramSink delivers parts as bot documents into a single chat.
type TelegramSink struct {
	Client *telegram.Client
	ChatID int64
}

func (s *TelegramSink) Put(ctx context.Context, r io.Reader, size int64, name, caption string) error {
	return s.Client.SendDocument(ctx, s.ChatID, name, caption, r)
}
