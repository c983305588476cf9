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

package telegram

import (
	"context"

	"github.com/urlrelay/urlrelay/transfer"
)

// ChatMessenger adapts a bot client to a single chat so transfer status
// updates land where the request came from.
type ChatMessenger struct {
	Client *Client
	ChatID int64
}

func (m *ChatMessenger) SendStatus(ctx context.Context, text string) (transfer.StatusHandle, error) {
	id, err := m.Client.SendMessage(ctx, m.ChatID, text)
	return transfer.StatusHandle(id), err
}

func (m *ChatMessenger) EditStatus(ctx context.Context, handle transfer.StatusHandle, text string) error {
	return m.Client.EditMessageText(ctx, m.ChatID, int64(handle), text)
}
