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
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteCountIEC(t *testing.T) {
	assert.Equal(t, "0 B", ByteCountIEC(0))
	assert.Equal(t, "1023 B", ByteCountIEC(1023))
	assert.Equal(t, "2.0 KiB", ByteCountIEC(2048))
	assert.Equal(t, "1.5 MiB", ByteCountIEC(3*512*1024))
	assert.Equal(t, "4.0 GiB", ByteCountIEC(4*1024*1024*1024))
}

func TestIsSupportedURL(t *testing.T) {
	assert.True(t, IsSupportedURL("http://example.com/file"))
	assert.True(t, IsSupportedURL("https://example.com/file"))
	assert.False(t, IsSupportedURL("ftp://example.com/file"))
	assert.False(t, IsSupportedURL("example.com/file"))
	assert.False(t, IsSupportedURL("not a url"))
	assert.False(t, IsSupportedURL(""))
}

func TestFileNameFromURL(t *testing.T) {
	cases := []struct {
		url      string
		expected string
	}{
		{"https://example.com/pub/movie.mkv", "movie.mkv"},
		{"https://example.com/pub/movie.mkv?token=xyz", "movie.mkv"},
		{"https://example.com/a/b/c", "c"},
		{"https://example.com/", DefaultFileName},
		{"https://example.com", DefaultFileName},
	}
	for _, tc := range cases {
		parsed, err := url.Parse(tc.url)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, fileNameFromURL(parsed), tc.url)
	}
}
