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

// Package cfg is the vfscored daemon's configuration surface: a single
// struct unmarshalled from flags, a config file, and defaults layered
// by viper, the same shape the teacher's cfg/cmd split uses.
package cfg

import "github.com/spf13/pflag"

// DeviceConfig describes one virtual storage device the daemon should
// register with the kernel bus at boot (spec.md C1/C10).
type DeviceConfig struct {
	ID        int    `mapstructure:"id"`
	IsVirtual bool   `mapstructure:"is-virtual"`
	Root      bool   `mapstructure:"root"`
	FSName    string `mapstructure:"fs-name"`
}

// Config is the root configuration object, unmarshalled by
// viper.Unmarshal the way cmd.MountConfig is in the teacher.
type Config struct {
	Debug   bool           `mapstructure:"debug"`
	Devices []DeviceConfig `mapstructure:"devices"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	} `mapstructure:"metrics"`

	Tracing struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"tracing"`

	Writeback struct {
		Enabled         bool `mapstructure:"enabled"`
		IntervalSeconds int  `mapstructure:"interval-seconds"`
	} `mapstructure:"writeback"`
}

// BindFlags registers every scalar Config field as a persistent flag,
// mirroring cfg.BindFlags in the teacher's cmd/root.go init(). Devices
// has no flag; it is set only from a config file.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.Bool("debug", false, "Enable debug logging.")
	flagSet.Bool("metrics.enabled", true, "Expose Prometheus metrics.")
	flagSet.String("metrics.addr", ":9090", "Address to serve /metrics on.")
	flagSet.Bool("tracing.enabled", false, "Emit OpenTelemetry traces to stdout.")
	flagSet.Bool("writeback.enabled", true, "Periodically flush dirty dentries to their filesystem.")
	flagSet.Int("writeback.interval-seconds", 5, "Seconds between write-back sweeps.")
	return nil
}
