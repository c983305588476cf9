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
	"fmt"
)

type (
	// InvalidInputError indicates the request text was rejected before any
	// network activity took place.
	InvalidInputError struct {
		Input string
	}

	// UnreachableSourceError is returned when the metadata probe fails or
	// the source does not report a usable size.
	UnreachableSourceError struct {
		Url string
		Err error
	}

	// RangeRequestError is returned when the source refuses or truncates a
	// ranged download.  It is fatal for the whole transfer.
	RangeRequestError struct {
		Url        string
		StatusCode int
		Err        error
	}

	// SinkRejectedError is returned when the destination refuses a part.
	// It is fatal for the whole transfer.
	SinkRejectedError struct {
		Name string
		Err  error
	}
)

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("not a valid http:// or https:// URL: %q", e.Input)
}

func (e *UnreachableSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s is unreachable: %v", e.Url, e.Err)
	}
	return fmt.Sprintf("source %s did not report a usable size", e.Url)
}

func (e *UnreachableSourceError) Unwrap() error {
	return e.Err
}

func (e *RangeRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ranged request to %s failed (HTTP status %d)", e.Url, e.StatusCode)
	}
	return fmt.Sprintf("ranged request to %s failed: %v", e.Url, e.Err)
}

func (e *RangeRequestError) Unwrap() error {
	return e.Err
}

func (e *SinkRejectedError) Error() string {
	return fmt.Sprintf("destination rejected %s: %v", e.Name, e.Err)
}

func (e *SinkRejectedError) Unwrap() error {
	return e.Err
}
