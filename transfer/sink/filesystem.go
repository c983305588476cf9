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

// Package sink provides the destination backends a transfer can deliver
// parts to: Telegram documents, a WebDAV share, or a local directory.
package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// A FilesystemSink writes parts into a local directory.  Used by the fetch
// command and in tests.
type FilesystemSink struct {
	Dir string
}

func (s *FilesystemSink) Put(ctx context.Context, r io.Reader, size int64, name, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := filepath.Join(s.Dir, name)
	file, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dest)
	}
	written, err := io.Copy(file, r)
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to write %s", dest)
	}
	if size >= 0 && written != size {
		file.Close()
		return errors.Errorf("short write to %s: %d of %d bytes", dest, written, size)
	}
	if caption != "" {
		log.Debugln("Caption for", name, ":", caption)
	}
	return errors.Wrapf(file.Close(), "failed to close %s", dest)
}
