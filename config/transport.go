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

package config

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"

	"github.com/urlrelay/urlrelay/param"
)

var (
	// Our global transport that only will get configured once
	transport *http.Transport

	// Once to ensure we only set up the transport once
	onceTransport sync.Once

	client     *http.Client
	onceClient sync.Once
)

// GetTransport returns the process-wide HTTP transport, setting it up on
// first use.  All outbound connections (source probes and downloads, status
// messaging, document uploads) share its connection pool.
func GetTransport() *http.Transport {
	onceTransport.Do(func() {
		setupTransport()
	})
	return transport
}

// GetClient returns the shared HTTP client built on the process-wide
// transport.  Redirects are followed.
func GetClient() *http.Client {
	onceClient.Do(func() {
		client = &http.Client{Transport: GetTransport()}
	})
	return client
}

func setupTransport() {
	maxIdleConns := param.Transport_MaxIdleConns.GetInt()
	idleConnTimeout := param.Transport_IdleConnTimeout.GetDuration()
	transportTLSHandshakeTimeout := param.Transport_TLSHandshakeTimeout.GetDuration()
	expectContinueTimeout := param.Transport_ExpectContinueTimeout.GetDuration()
	responseHeaderTimeout := param.Transport_ResponseHeaderTimeout.GetDuration()

	dialer := net.Dialer{
		Timeout:   param.Transport_DialerTimeout.GetDuration(),
		KeepAlive: param.Transport_DialerKeepAlive.GetDuration(),
	}

	transport = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   transportTLSHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
	}
	if param.TLSSkipVerify.GetBool() {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
}
