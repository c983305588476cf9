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
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlrelay/urlrelay/param"
)

func TestInitDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	require.NoError(t, Init())

	assert.Equal(t, "info", param.Logging_Level.GetString())
	assert.Equal(t, "telegram", param.Sink_Type.GetString())
	assert.Equal(t, "https://api.telegram.org", param.Telegram_ApiBase.GetString())
	assert.Equal(t, 5*time.Second, param.Transfer_StatusInterval.GetDuration())
	assert.Equal(t, 300*time.Second, param.Transfer_SinkTimeout.GetDuration())
	assert.Equal(t, int64(0), param.Transfer_MaximumDownloadSpeed.GetInt64())
	assert.NotEmpty(t, param.Transfer_TempDirectory.GetString())
}

func TestMaxPartSize(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	require.NoError(t, Init())

	size, err := MaxPartSize()
	require.NoError(t, err)
	assert.Equal(t, int64(4294967296), size)

	viper.Set("Transfer.MaxPartSize", "1900MiB")
	size, err = MaxPartSize()
	require.NoError(t, err)
	assert.Equal(t, int64(1900*1024*1024), size)

	viper.Set("Transfer.MaxPartSize", "1024B")
	size, err = MaxPartSize()
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)
}

func TestMaxPartSizeInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	require.NoError(t, Init())

	viper.Set("Transfer.MaxPartSize", "lots")
	_, err := MaxPartSize()
	require.Error(t, err)

	viper.Set("Transfer.MaxPartSize", "0")
	_, err = MaxPartSize()
	require.Error(t, err)
}

func TestSetLogging(t *testing.T) {
	require.NoError(t, SetLogging("debug"))
	require.NoError(t, SetLogging("info"))
	require.Error(t, SetLogging("noisier-than-debug"))
}

func TestEnvOverride(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	t.Setenv("URLRELAY_SINK_TYPE", "filesystem")
	require.NoError(t, Init())
	assert.Equal(t, "filesystem", param.Sink_Type.GetString())
}
