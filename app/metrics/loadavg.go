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
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CollectLoadAverage returns the 1-minute load average.
func CollectLoadAverage() (float64, error) {
	path := filepath.Join(ProcFS, "loadavg")

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("error reading %s: %w", path, err)
	}

	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return 0, fmt.Errorf("unexpected format of %s", path)
	}

	loadAverage, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse 1 minute average: %w", err)
	}

	return loadAverage, nil
}
