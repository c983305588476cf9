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
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// The copy loop's read granularity.  Memory use per transfer is bounded by
// this, independent of part size.
const downloadBufferSize = 64 * 1024

// ProgressFunc is invoked from inside a copy loop with the cumulative byte
// count for the current phase and the total expected.  Calls are not
// throttled at this layer; callbacks must be cheap.
type ProgressFunc = func(current int64, total int64)

// A writer that applies a rate limit before passing data through to the
// wrapped writer
type rateLimitWriter struct {
	ctx         context.Context
	rateLimiter *rate.Limiter
	writer      io.Writer
}

func (r *rateLimitWriter) Write(p []byte) (n int, err error) {
	bytesSoFar := 0
	if r.rateLimiter == nil {
		return r.writer.Write(p)
	}
	for len(p) > 0 {
		chunk := p
		if len(chunk) > downloadBufferSize {
			chunk = chunk[:downloadBufferSize]
		}
		if err = r.rateLimiter.WaitN(r.ctx, len(chunk)); err != nil {
			return bytesSoFar, err
		}
		if n, err = r.writer.Write(chunk); err != nil {
			return bytesSoFar + n, err
		}
		bytesSoFar += n
		p = p[n:]
	}
	return bytesSoFar, nil
}

// downloadRange streams exactly the byte range of part from sourceUrl into
// w.  The unthrottled onProgress callback fires after every buffered
// increment.  A source that ignores the Range header or truncates the body
// is a fatal error for the part.
func downloadRange(ctx context.Context, client *http.Client, sourceUrl string, part Part, w io.Writer, maxSpeed int64, onProgress ProgressFunc) (written int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceUrl, nil)
	if err != nil {
		return 0, &RangeRequestError{Url: sourceUrl, Err: err}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", part.Start, part.End))

	resp, err := client.Do(req)
	if err != nil {
		return 0, &RangeRequestError{Url: sourceUrl, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return 0, &RangeRequestError{Url: sourceUrl, StatusCode: resp.StatusCode}
	}

	if maxSpeed > 0 {
		w = &rateLimitWriter{
			ctx:         ctx,
			rateLimiter: rate.NewLimiter(rate.Limit(maxSpeed), downloadBufferSize),
			writer:      w,
		}
	}

	total := part.Length()
	buffer := make([]byte, downloadBufferSize)
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return written, &RangeRequestError{Url: sourceUrl, Err: ctxErr}
		}
		n, readErr := resp.Body.Read(buffer)
		if n > 0 {
			wn, writeErr := w.Write(buffer[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, errors.Wrap(writeErr, "failed to write to temporary storage")
			}
			if wn != n {
				return written, errors.Wrap(io.ErrShortWrite, "failed to write to temporary storage")
			}
			if onProgress != nil {
				onProgress(written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, &RangeRequestError{Url: sourceUrl, Err: readErr}
		}
	}

	if written != total {
		return written, &RangeRequestError{
			Url: sourceUrl,
			Err: errors.Errorf("short read: got %d bytes, expected %d", written, total),
		}
	}
	return written, nil
}
