// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kvfs/vfscore/cfg"
)

var (
	cfgFile      string
	bindErr      error
	unmarshalErr error
	daemonConfig cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "vfscored",
	Short: "Run an in-memory vfscore filesystem behind an interactive shell",
	Long: `vfscored boots a vfscore VFS around a built-in in-memory filesystem
	       driver and serves open/read/write/mkdir/etc. over a simple
	       line-oriented shell, for exercising the VFS core without a real
	       storage device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		return run(cmd.Context(), daemonConfig)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
	unmarshalErr = viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if unmarshalErr != nil {
		return
	}
	viper.SetEnvPrefix("VFSCORE")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			unmarshalErr = fmt.Errorf("reading config file: %w", err)
			return
		}
	}
	unmarshalErr = viper.Unmarshal(&daemonConfig)
}
