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

// Package param provides typed accessors for the process configuration.
//
// Each exported variable corresponds to a single viper key; use these
// instead of explicit viper.Get* calls so the set of known configuration
// parameters stays discoverable in one place.
package param

import (
	"time"

	"github.com/spf13/viper"
)

type (
	StringParam struct {
		name string
	}

	BoolParam struct {
		name string
	}

	IntParam struct {
		name string
	}

	DurationParam struct {
		name string
	}
)

func (sP StringParam) GetString() string {
	return viper.GetString(sP.name)
}

func (sP StringParam) GetName() string {
	return sP.name
}

func (sP StringParam) IsSet() bool {
	return viper.IsSet(sP.name)
}

func (iP IntParam) GetInt() int {
	return viper.GetInt(iP.name)
}

func (iP IntParam) GetInt64() int64 {
	return viper.GetInt64(iP.name)
}

func (iP IntParam) GetName() string {
	return iP.name
}

func (iP IntParam) IsSet() bool {
	return viper.IsSet(iP.name)
}

func (bP BoolParam) GetBool() bool {
	return viper.GetBool(bP.name)
}

func (bP BoolParam) GetName() string {
	return bP.name
}

func (bP BoolParam) IsSet() bool {
	return viper.IsSet(bP.name)
}

func (dP DurationParam) GetDuration() time.Duration {
	return viper.GetDuration(dP.name)
}

func (dP DurationParam) GetName() string {
	return dP.name
}

func (dP DurationParam) IsSet() bool {
	return viper.IsSet(dP.name)
}

var (
	Logging_Level = StringParam{"Logging.Level"}

	Sink_Directory = StringParam{"Sink.Directory"}
	Sink_Type      = StringParam{"Sink.Type"}

	Telegram_ApiBase     = StringParam{"Telegram.ApiBase"}
	Telegram_BotToken    = StringParam{"Telegram.BotToken"}
	Telegram_PollTimeout = DurationParam{"Telegram.PollTimeout"}

	Transfer_MaxPartSize          = StringParam{"Transfer.MaxPartSize"}
	Transfer_MaximumDownloadSpeed = IntParam{"Transfer.MaximumDownloadSpeed"}
	Transfer_SinkTimeout          = DurationParam{"Transfer.SinkTimeout"}
	Transfer_StatusInterval       = DurationParam{"Transfer.StatusInterval"}
	Transfer_TempDirectory        = StringParam{"Transfer.TempDirectory"}

	Transport_DialerKeepAlive       = DurationParam{"Transport.DialerKeepAlive"}
	Transport_DialerTimeout         = DurationParam{"Transport.DialerTimeout"}
	Transport_ExpectContinueTimeout = DurationParam{"Transport.ExpectContinueTimeout"}
	Transport_IdleConnTimeout       = DurationParam{"Transport.IdleConnTimeout"}
	Transport_MaxIdleConns          = IntParam{"Transport.MaxIdleConns"}
	Transport_ResponseHeaderTimeout = DurationParam{"Transport.ResponseHeaderTimeout"}
	Transport_TLSHandshakeTimeout   = DurationParam{"Transport.TLSHandshakeTimeout"}

	TLSSkipVerify = BoolParam{"TLSSkipVerify"}

	WebDav_Password = StringParam{"WebDav.Password"}
	WebDav_Url      = StringParam{"WebDav.Url"}
	WebDav_Username = StringParam{"WebDav.Username"}
)
