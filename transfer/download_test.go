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
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// rangeServer serves byte ranges out of body, recording the Range headers
// it saw.
func rangeServer(t *testing.T, body []byte, ranges *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader := r.Header.Get("Range")
		if ranges != nil {
			*ranges = append(*ranges, rangeHeader)
		}
		var start, end int64
		_, err := fmt.Sscanf(rangeHeader, "bytes=%d-%d", &start, &end)
		require.NoError(t, err)
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(body)))
		w.WriteHeader(http.StatusPartialContent)
		_, err = w.Write(body[start : end+1])
		require.NoError(t, err)
	}))
}

func TestDownloadRange(t *testing.T) {
	body := bytes.Repeat([]byte("0123456789"), 100)
	var ranges []string
	server := rangeServer(t, body, &ranges)
	defer server.Close()

	var buf bytes.Buffer
	var lastCurrent, lastTotal int64
	part := Part{Index: 0, Start: 100, End: 599, Name: "obj.part001"}
	written, err := downloadRange(context.Background(), server.Client(), server.URL, part, &buf, 0, func(current, total int64) {
		lastCurrent, lastTotal = current, total
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), written)
	assert.Equal(t, body[100:600], buf.Bytes())
	assert.Equal(t, []string{"bytes=100-599"}, ranges)
	assert.Equal(t, int64(500), lastCurrent)
	assert.Equal(t, int64(500), lastTotal)
}

func TestDownloadRangeRejectsFullResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A server that ignores Range and replies 200 with the whole
		// object must be rejected, not silently re-sliced.
		_, err := w.Write([]byte("full body"))
		require.NoError(t, err)
	}))
	defer server.Close()

	var buf bytes.Buffer
	part := Part{Start: 0, End: 3, Name: "obj"}
	_, err := downloadRange(context.Background(), server.Client(), server.URL, part, &buf, 0, nil)
	require.Error(t, err)
	var rangeErr *RangeRequestError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, http.StatusOK, rangeErr.StatusCode)
}

func TestDownloadRangeShortBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		_, err := w.Write([]byte("short"))
		require.NoError(t, err)
	}))
	defer server.Close()

	var buf bytes.Buffer
	part := Part{Start: 0, End: 99, Name: "obj"}
	_, err := downloadRange(context.Background(), server.Client(), server.URL, part, &buf, 0, nil)
	require.Error(t, err)
	var rangeErr *RangeRequestError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestDownloadRangeWithSpeedLimit(t *testing.T) {
	body := bytes.Repeat([]byte("abcdefgh"), 4096) // 32 KiB
	server := rangeServer(t, body, nil)
	defer server.Close()

	var buf bytes.Buffer
	part := Part{Start: 0, End: int64(len(body)) - 1, Name: "obj"}
	written, err := downloadRange(context.Background(), server.Client(), server.URL, part, &buf, 10*1024*1024, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), written)
	assert.Equal(t, body, buf.Bytes())
}

func TestRateLimitWriterChunksLargeWrites(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 3*downloadBufferSize+17)
	var buf bytes.Buffer
	w := &rateLimitWriter{
		ctx:         context.Background(),
		rateLimiter: rate.NewLimiter(rate.Limit(100*1024*1024), downloadBufferSize),
		writer:      &buf,
	}
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestRateLimitWriterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	w := &rateLimitWriter{
		ctx:         ctx,
		rateLimiter: rate.NewLimiter(rate.Limit(1), downloadBufferSize),
		writer:      &buf,
	}
	_, err := w.Write([]byte("data"))
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestDownloadRangeCanceled(t *testing.T) {
	body := make([]byte, 1<<20)
	server := rangeServer(t, body, nil)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	part := Part{Start: 0, End: int64(len(body)) - 1, Name: "obj"}
	_, err := downloadRange(ctx, server.Client(), server.URL, part, &buf, 0, nil)
	require.Error(t, err)
}
