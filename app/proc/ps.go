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

package proc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.resgov.io/agent/app/log"
	"go.resgov.io/agent/app/utils"
)

var psBinPath = "/bin/ps"

// psColumns is the output format requested from ps. The command line must be
// the last column, since it may contain spaces.
const psColumns = "pid=,uid=,ni=,pcpu=,pmem=,etime=,args="

// PS is a Source backed by the ps utility.
type PS struct{}

// NewSource returns the default process snapshot source.
func NewSource() *PS {
	return &PS{}
}

// List returns a sample for every process on the host.
func (p *PS) List(ctx context.Context) ([]Sample, error) {
	cmd := []string{psBinPath, "axo", psColumns}

	samples := make([]Sample, 0, 128)

	err := utils.ForLinesInCommandOutput(ctx, cmd, func(line string) error {
		sample, err := parseLine(line)
		if err != nil {
			// one odd line must not cost the whole snapshot
			log.Warnf("skipping process line: %v", err)
			return nil
		}

		samples = append(samples, *sample)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing processes: %w", err)
	}

	return samples, nil
}

// Lookup re-queries a single process with unlimited command-line width.
func (p *PS) Lookup(ctx context.Context, pid int) (*Sample, error) {
	cmd := []string{psBinPath, "-ww", "-o", psColumns, "-p", strconv.Itoa(pid)}

	output, err := utils.RunCommand(ctx, cmd)
	if err != nil {
		// ps exits non-zero when the pid no longer exists
		return nil, ErrProcessGone
	}

	line := strings.TrimSpace(string(output))
	if line == "" {
		return nil, ErrProcessGone
	}

	sample, err := parseLine(line)
	if err != nil {
		return nil, fmt.Errorf("error parsing process %d: %w", pid, err)
	}

	return sample, nil
}

// parseLine parses a single line of ps output in psColumns format.
func parseLine(line string) (*Sample, error) {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return nil, fmt.Errorf("unexpected ps output: %q", line)
	}

	sample := new(Sample)

	var err error

	if sample.PID, err = strconv.Atoi(fields[0]); err != nil {
		return nil, fmt.Errorf("error parsing pid in %q: %w", line, err)
	}

	sample.Owner = ResolveUser(fields[1])

	// kernel threads report niceness as "-"
	if sample.Niceness, err = strconv.Atoi(fields[2]); err != nil {
		sample.Niceness = 0
	}

	if sample.CPUPercent, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return nil, fmt.Errorf("error parsing cpu%% in %q: %w", line, err)
	}

	if sample.MemoryPercent, err = strconv.ParseFloat(fields[4], 64); err != nil {
		return nil, fmt.Errorf("error parsing mem%% in %q: %w", line, err)
	}

	if sample.ElapsedSeconds, err = ParseElapsed(fields[5]); err != nil {
		return nil, fmt.Errorf("error parsing elapsed time in %q: %w", line, err)
	}

	sample.Command = strings.Join(fields[6:], " ")

	return sample, nil
}

// ParseElapsed converts ps elapsed time ([[days-]hours:]minutes:seconds)
// into seconds.
func ParseElapsed(value string) (int, error) {
	days := 0

	if dash := strings.IndexByte(value, '-'); dash >= 0 {
		parsed, err := strconv.Atoi(value[:dash])
		if err != nil {
			return 0, fmt.Errorf("invalid elapsed time %q: %w", value, err)
		}

		days = parsed
		value = value[dash+1:]
	}

	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid elapsed time %q", value)
	}

	seconds := 0
	for _, part := range parts {
		parsed, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid elapsed time %q: %w", value, err)
		}

		seconds = seconds*60 + parsed
	}

	return days*24*60*60 + seconds, nil
}
