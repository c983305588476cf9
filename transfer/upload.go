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
	"io"
)

// Sink is the destination for completed parts.  Implementations own their
// I/O timeout budget; it is expected to be long (minutes) and independent
// of the status-reporting cadence so slow destinations don't spuriously
// fail mid-transfer.
type Sink interface {
	// Put streams size bytes from r to the destination as a single object
	// called name.  caption is empty except for multi-part transfers.
	Put(ctx context.Context, r io.Reader, size int64, name string, caption string) error
}

// progressReader invokes the unthrottled callback as the sink consumes
// bytes from the temporary object.
type progressReader struct {
	reader     io.Reader
	total      int64
	read       int64
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		if pr.onProgress != nil {
			pr.onProgress(pr.read, pr.total)
		}
	}
	return n, err
}

// uploadPart streams one temporary object's full contents to the sink.
func uploadPart(ctx context.Context, sink Sink, tmp *tempObject, name, caption string, onProgress ProgressFunc) error {
	size, err := tmp.Reset()
	if err != nil {
		return &SinkRejectedError{Name: name, Err: err}
	}
	reader := &progressReader{reader: tmp.file, total: size, onProgress: onProgress}
	if err := sink.Put(ctx, reader, size, name, caption); err != nil {
		return &SinkRejectedError{Name: name, Err: err}
	}
	return nil
}
