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
	"encoding/json"
	"fmt"
	"os"

	"go.resgov.io/agent/app/utils/cmd"
)

var configCommand = cmd.Command{
	Description: "Dump the effective configuration as JSON to standard output.",
	Target: func(opts cmd.Options) error {
		cfg, err := loadConfig(opts)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err = encoder.Encode(cfg); err != nil {
			return fmt.Errorf("error encoding configuration: %w", err)
		}

		return nil
	},
}
