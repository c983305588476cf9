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
	"net/http"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// DefaultFileName is substituted when no file name can be derived from the
// source URL's path.
const DefaultFileName = "file.bin"

// SourceMetadata describes the remote object as reported by the probe.  A
// Size of 0 means the source did not report a usable size; such transfers
// are aborted before any part is planned.
type SourceMetadata struct {
	Size int64
	Name string
}

// Probe issues a metadata-only HEAD request against sourceUrl, following
// redirects, and returns the object's size and inferred file name.  No
// body bytes are transferred.
func Probe(ctx context.Context, client *http.Client, sourceUrl string) (meta SourceMetadata, err error) {
	parsed, err := url.Parse(sourceUrl)
	if err != nil {
		return meta, &UnreachableSourceError{Url: sourceUrl, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, sourceUrl, nil)
	if err != nil {
		return meta, &UnreachableSourceError{Url: sourceUrl, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return meta, &UnreachableSourceError{Url: sourceUrl, Err: err}
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		log.Debugln("Failed to read out probe response body:", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return meta, &UnreachableSourceError{
			Url: sourceUrl,
			Err: &statusError{StatusCode: resp.StatusCode},
		}
	}

	meta.Name = fileNameFromURL(parsed)
	if lengthStr := resp.Header.Get("Content-Length"); lengthStr != "" {
		size, convErr := strconv.ParseInt(lengthStr, 10, 64)
		if convErr != nil {
			log.Debugf("Source at %s gave unparsable Content-Length header (%s): %v", parsed.Host, lengthStr, convErr)
		} else if size > 0 {
			meta.Size = size
		}
	}
	return meta, nil
}

// statusError records a non-success HTTP status from the probe.
type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return "unexpected HTTP status " + strconv.Itoa(e.StatusCode)
}
