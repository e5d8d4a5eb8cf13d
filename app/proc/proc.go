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

// Package proc provides a point-in-time view of the host's process table.
package proc

import (
	"context"
	"errors"
)

// ErrProcessGone is returned by Lookup when the process exited between
// snapshot and detailed lookup. Callers treat it as "nothing to do".
var ErrProcessGone = errors.New("process has exited")

// Sample describes one OS process at a sampling instant. Samples are
// recreated on every cycle and never mutated or cached across cycles.
type Sample struct {
	// PID of the process.
	PID int

	// Owner is the resolved full username of the effective process owner.
	Owner string

	// CPUPercent is the CPU usage averaged over the process lifetime.
	CPUPercent float64

	// MemoryPercent is the resident memory share of the process.
	MemoryPercent float64

	// ElapsedSeconds since the process started.
	ElapsedSeconds int

	// Niceness of the process.
	Niceness int

	// Command line used to start the process.
	Command string
}

// Source produces process samples on demand.
type Source interface {
	// List returns a sample for every process on the host.
	List(ctx context.Context) ([]Sample, error)

	// Lookup re-queries a single process for authoritative figures and the
	// untruncated command line. Returns ErrProcessGone if the process no
	// longer exists.
	Lookup(ctx context.Context, pid int) (*Sample, error)
}
