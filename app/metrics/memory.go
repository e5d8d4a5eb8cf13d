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

package metrics

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.resgov.io/agent/app/utils"
)

// CollectFreeMemoryMB returns the amount of available memory in megabytes,
// based on the MemAvailable figure of /proc/meminfo.
func CollectFreeMemoryMB() (int, error) {
	path := filepath.Join(ProcFS, "meminfo")

	availableKB := -1

	err := utils.ForLinesInFile(path, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "MemAvailable:" {
			return nil
		}

		if fields[2] != "kB" {
			return fmt.Errorf("unsupported file format")
		}

		value, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}

		availableKB = value

		return nil
	})
	if err != nil {
		return 0, err
	}

	if availableKB < 0 {
		return 0, fmt.Errorf("MemAvailable not found in %s", path)
	}

	return availableKB / 1024, nil
}
