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

// Package telegram is a minimal Bot API client covering the primitives the
// relay needs: plain messages, in-place edits, streamed document uploads,
// and long-poll updates.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/urlrelay/urlrelay/config"
)

type (
	// A Client talks to one bot's slice of the Bot API.
	Client struct {
		apiBase string
		token   string

		// Short-request client; shares the process-wide connection pool.
		http *http.Client

		// Client for document streaming and long polls, which both hold
		// connections far past the default response-header timeout.
		slow *http.Client
	}

	Chat struct {
		ID int64 `json:"id"`
	}

	Message struct {
		MessageID int64  `json:"message_id"`
		Chat      Chat   `json:"chat"`
		Text      string `json:"text"`
	}

	Update struct {
		UpdateID int64    `json:"update_id"`
		Message  *Message `json:"message"`
	}

	apiResponse struct {
		Ok          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
)

// New builds a client for the bot identified by token.  The ioTimeout is
// the per-operation budget for document uploads and long polls; it should
// be generous (minutes) to tolerate slow destinations.
func New(apiBase, token string, ioTimeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, errors.New("a bot token is required; set URLRELAY_TELEGRAM_BOTTOKEN")
	}
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	slowTransport := config.GetTransport().Clone()
	slowTransport.ResponseHeaderTimeout = ioTimeout
	return &Client{
		apiBase: strings.TrimSuffix(apiBase, "/"),
		token:   token,
		http:    config.GetClient(),
		slow:    &http.Client{Transport: slowTransport},
	}, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
}

// call posts form values to a Bot API method and decodes the result
// payload into out (which may be nil).
func (c *Client) call(ctx context.Context, client *http.Client, method string, values url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "bot API call %s failed", method)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, method, out)
}

func decodeResponse(resp *http.Response, method string, out interface{}) error {
	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return errors.Wrapf(err, "unparsable bot API response for %s", method)
	}
	if !parsed.Ok {
		return errors.Errorf("bot API call %s rejected: %s", method, parsed.Description)
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return errors.Wrapf(err, "unparsable result payload for %s", method)
		}
	}
	return nil
}

// SendMessage posts text to a chat and returns the new message's ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	values := url.Values{}
	values.Set("chat_id", strconv.FormatInt(chatID, 10))
	values.Set("text", text)
	var msg Message
	if err := c.call(ctx, c.http, "sendMessage", values, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditMessageText replaces the text of an existing message.  The API
// rejects edits of deleted messages and of unmodified text, so callers
// should be prepared to fall back to SendMessage.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	values := url.Values{}
	values.Set("chat_id", strconv.FormatInt(chatID, 10))
	values.Set("message_id", strconv.FormatInt(messageID, 10))
	values.Set("text", text)
	return c.call(ctx, c.http, "editMessageText", values, nil)
}

// SendDocument streams a document into a chat.  The multipart body is
// produced through a pipe so the document is never buffered in memory,
// regardless of size.
func (c *Client) SendDocument(ctx context.Context, chatID int64, name, caption string, r io.Reader) error {
	bodyReader, bodyWriter := io.Pipe()
	form := multipart.NewWriter(bodyWriter)
	go func() {
		bodyWriter.CloseWithError(writeDocumentBody(form, chatID, name, caption, r))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendDocument"), bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := c.slow.Do(req)
	if err != nil {
		return errors.Wrap(err, "document upload failed")
	}
	defer resp.Body.Close()
	return decodeResponse(resp, "sendDocument", nil)
}

func writeDocumentBody(form *multipart.Writer, chatID int64, name, caption string, r io.Reader) error {
	if err := form.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	if caption != "" {
		if err := form.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("document", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return form.Close()
}

// GetUpdates long-polls for updates with IDs at or after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	values := url.Values{}
	values.Set("offset", strconv.FormatInt(offset, 10))
	values.Set("timeout", strconv.Itoa(int(timeout/time.Second)))
	values.Set("allowed_updates", `["message"]`)
	var updates []Update
	if err := c.call(ctx, c.slow, "getUpdates", values, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
