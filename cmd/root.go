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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/urlrelay/urlrelay/config"
)

var rootCmd = &cobra.Command{
	Use:   "urlrelay",
	Short: "Relay large HTTP(S) objects into chat and storage destinations",
	Long: `urlrelay downloads objects of arbitrary size over HTTP(S) and
delivers them to a destination such as a Telegram chat, a WebDAV share,
or a local directory, splitting objects that exceed the destination's
per-object size limit into sequentially numbered parts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init()
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		log.Errorln(err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.PersistentFlags().String("config", "", "config file to use")
	if err := viper.BindPFlag("ConfigFile", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		panic(err)
	}
	rootCmd.PersistentFlags().StringP("loglevel", "l", "", "override the logging level")
	if err := viper.BindPFlag("Logging.Level", rootCmd.PersistentFlags().Lookup("loglevel")); err != nil {
		panic(err)
	}
}
