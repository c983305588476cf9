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
	"time"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// A WebDavSink stores parts on a WebDAV share.  Captions have no WebDAV
// equivalent and are dropped.
type WebDavSink struct {
	client *gowebdav.Client
}

// NewWebDavSink connects to the share at rawUrl.  The timeout is the
// sink's whole-operation I/O budget per part.
func NewWebDavSink(rawUrl, username, password string, timeout time.Duration) (*WebDavSink, error) {
	if rawUrl == "" {
		return nil, errors.New("the webdav sink requires a URL; set WebDav.Url")
	}
	client := gowebdav.NewClient(rawUrl, username, password)
	client.SetTimeout(timeout)
	if err := client.Connect(); err != nil {
		return nil, errors.Wrapf(err, "failed to connect to the WebDAV share at %s", rawUrl)
	}
	return &WebDavSink{client: client}, nil
}

func (s *WebDavSink) Put(ctx context.Context, r io.Reader, size int64, name, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// gowebdav calls are not context-aware; the client timeout set at
	// construction bounds the operation instead.
	if err := s.client.WriteStream(name, r, 0644); err != nil {
		return errors.Wrapf(err, "WebDAV write of %s failed", name)
	}
	return nil
}
