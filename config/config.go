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

// Package config owns process-wide initialization: configuration defaults,
// the URLRELAY_* environment bindings, logging, and the shared HTTP
// transport used by every outbound connection.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/alecthomas/units"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/urlrelay/urlrelay/param"
)

// Init sets configuration defaults, binds the URLRELAY_* environment, reads
// the optional config file ($HOME/.urlrelay/config.yaml, overridable with
// the --config flag or URLRELAY_CONFIGFILE), and configures logging.
func Init() error {
	viper.SetDefault("Logging.Level", "info")

	viper.SetDefault("Sink.Type", "telegram")
	viper.SetDefault("Sink.Directory", ".")

	viper.SetDefault("Telegram.ApiBase", "https://api.telegram.org")
	viper.SetDefault("Telegram.PollTimeout", 30*time.Second)

	viper.SetDefault("Transfer.MaxPartSize", "4GiB")
	viper.SetDefault("Transfer.MaximumDownloadSpeed", 0)
	viper.SetDefault("Transfer.SinkTimeout", 300*time.Second)
	viper.SetDefault("Transfer.StatusInterval", 5*time.Second)
	viper.SetDefault("Transfer.TempDirectory", os.TempDir())

	viper.SetDefault("Transport.DialerKeepAlive", 30*time.Second)
	viper.SetDefault("Transport.DialerTimeout", 10*time.Second)
	viper.SetDefault("Transport.ExpectContinueTimeout", 1*time.Second)
	viper.SetDefault("Transport.IdleConnTimeout", 90*time.Second)
	viper.SetDefault("Transport.MaxIdleConns", 30)
	viper.SetDefault("Transport.ResponseHeaderTimeout", 10*time.Second)
	viper.SetDefault("Transport.TLSHandshakeTimeout", 15*time.Second)

	viper.SetEnvPrefix("URLRELAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.urlrelay")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Do not fail if the config file is missing
	}
	if explicitConfig := viper.GetString("ConfigFile"); explicitConfig != "" {
		fp, err := os.Open(explicitConfig)
		if err != nil {
			return errors.Wrap(err, "failed to open the requested config file")
		}
		defer fp.Close()
		if err := viper.ReadConfig(fp); err != nil {
			return err
		}
	}

	return SetLogging(param.Logging_Level.GetString())
}

// MaxPartSize returns the configured destination object size limit in
// bytes.  The parameter accepts human-readable values such as "4GiB",
// "1900MiB", or "1024B".
func MaxPartSize() (int64, error) {
	raw := param.Transfer_MaxPartSize.GetString()
	size, err := units.ParseStrictBytes(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value %q for %s", raw, param.Transfer_MaxPartSize.GetName())
	}
	if size < 1 {
		return 0, errors.Errorf("%s must be at least one byte; got %q", param.Transfer_MaxPartSize.GetName(), raw)
	}
	return size, nil
}
