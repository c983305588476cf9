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
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Length", strconv.Itoa(12345))
	}))
	defer server.Close()

	meta, err := Probe(context.Background(), server.Client(), server.URL+"/pub/archive.tar.gz?token=abc")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), meta.Size)
	assert.Equal(t, "archive.tar.gz", meta.Name)
}

func TestProbeDefaultName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
	}))
	defer server.Close()

	meta, err := Probe(context.Background(), server.Client(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, meta.Name)
}

func TestProbeMissingLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	meta, err := Probe(context.Background(), server.Client(), server.URL+"/stream")
	require.NoError(t, err)
	assert.Equal(t, int64(0), meta.Size)
}

func TestProbeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := Probe(context.Background(), server.Client(), server.URL+"/secret")
	require.Error(t, err)
	var unreachable *UnreachableSourceError
	assert.ErrorAs(t, err, &unreachable)
}

func TestProbeUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := Probe(context.Background(), http.DefaultClient, url+"/gone")
	require.Error(t, err)
	var unreachable *UnreachableSourceError
	assert.ErrorAs(t, err, &unreachable)
}
