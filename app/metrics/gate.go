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

// Package metrics reads the host-wide figures used to decide whether a
// governing cycle should run at all.
package metrics

// ProcFS points at the mounted procfs.
var ProcFS = "/proc"

// LoadSnapshot captures the host-wide readings behind the cycle gate.
// It is read fresh on every cycle and never persisted.
type LoadSnapshot struct {
	// LoadAverage is the 1-minute load average.
	LoadAverage float64

	// FreeMemoryMB is the available system memory in megabytes.
	FreeMemoryMB int
}

// Collect returns a fresh LoadSnapshot.
func Collect() (*LoadSnapshot, error) {
	loadAverage, err := CollectLoadAverage()
	if err != nil {
		return nil, err
	}

	freeMemoryMB, err := CollectFreeMemoryMB()
	if err != nil {
		return nil, err
	}

	return &LoadSnapshot{
		LoadAverage:  loadAverage,
		FreeMemoryMB: freeMemoryMB,
	}, nil
}
