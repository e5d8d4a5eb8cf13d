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

package cmd

import (
	"context"

	"github.com/pkg/errors"

	"go.resgov.io/agent/app/governor"
	"go.resgov.io/agent/app/log"
	"go.resgov.io/agent/app/utils/cmd"
)

const (
	startOnceOption    = "run-once"
	startPretendOption = "pretend"
)

var startCommand = cmd.Command{
	Description: "Start the governor process.",

	Options: []cmd.Option{
		{
			Name:  startOnceOption,
			Short: "1",
			Help:  "Run a single governing cycle and exit.",
			Flag:  "true",
		},
		{
			Name:  startPretendOption,
			Short: "p",
			Help:  "Log what would be done without touching any process.",
			Flag:  "true",
		},
	},

	Target: func(opts cmd.Options) error {
		runOnce := opts[startOnceOption] == "true"
		pretend := opts[startPretendOption] == "true"

		ctx := context.Background()

		cfg, err := loadConfig(opts)
		if err != nil {
			return err
		}

		if cfg.Debug {
			log.SetLevel(log.DEBUG)
		}

		if cfg.LogFile != "" {
			if err = log.OpenFile(cfg.LogFile); err != nil {
				return err
			}
		}

		gov, err := governor.New(cfg)
		if err != nil {
			return err
		}

		if pretend {
			gov.ForcePretend()
		}

		if runOnce || !cfg.Loop {
			gov.RunOnce(ctx)
			return nil
		}

		if err = gov.Run(ctx); err != nil {
			if errors.Is(err, governor.ErrAlreadyRunning) {
				log.Infof("%v", err)
				return nil
			}

			return err
		}

		return nil
	},
}
