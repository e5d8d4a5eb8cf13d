// Copyright 2026 resgov.io
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
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd provides the resgovd command-line interface.
package cmd

import (
	"go.resgov.io/agent/app/governor"
	"go.resgov.io/agent/app/log"
	"go.resgov.io/agent/app/utils/cmd"
)

const (
	mainConfigDirOption = "config-dir"
	mainLogLevel        = "log-level"
)

var Main = cmd.Command{
	Description: "Resource Governor Command-Line Tool",
	Options: []cmd.Option{
		{
			Name:    mainConfigDirOption,
			Short:   "c",
			Help:    "Configuration directory.",
			Default: governor.DefaultConfigDir,
		},
		{
			Name:    mainLogLevel,
			Short:   "l",
			Help:    "Logging level: DEBUG, INFO, WARNING or ERROR.",
			Default: "INFO",
		},
	},
	SubCommands: map[string]cmd.Command{
		"config":  configCommand,
		"start":   startCommand,
		"version": versionCommand,
	},
}

// loadConfig is a helper method to load the daemon's config based on provided command-line options.
func loadConfig(opts cmd.Options) (*governor.Config, error) {
	log.SetLevel(log.ParseLevel(opts[mainLogLevel]))

	return governor.LoadConfig(opts[mainConfigDirOption])
}
