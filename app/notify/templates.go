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

package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"go.resgov.io/agent/app/policy"
	"go.resgov.io/agent/app/proc"
)

// maxCommandLength bounds the command line quoted in emails.
const maxCommandLength = 60

// Subject renders the email subject for the given action kind.
func Subject(action policy.Action, sample proc.Sample) string {
	switch action {
	case policy.KillForMemory:
		return fmt.Sprintf("process %d (%s) terminated: memory usage %.1f%%",
			sample.PID, truncateCommand(sample.Command), sample.MemoryPercent)
	case policy.KillForCPU:
		return fmt.Sprintf("process %d (%s) terminated: CPU usage %.1f%%",
			sample.PID, truncateCommand(sample.Command), sample.CPUPercent)
	case policy.Renice:
		return fmt.Sprintf("process %d (%s) reniced: CPU usage %.1f%%",
			sample.PID, truncateCommand(sample.Command), sample.CPUPercent)
	default:
		return fmt.Sprintf("process %d (%s)", sample.PID, truncateCommand(sample.Command))
	}
}

// Body renders the email body for the given action kind.
func Body(action policy.Action, sample proc.Sample) string {
	switch action {
	case policy.KillForMemory:
		return fmt.Sprintf(
			"Your process was using %.1f%% of this machine's memory and has been terminated\n"+
				"to protect the system from running out of memory.\n\n%s\n"+
				"Please consider running memory-hungry jobs on a dedicated machine.\n",
			sample.MemoryPercent, jobDescription(sample))
	case policy.KillForCPU:
		return fmt.Sprintf(
			"Your process was using %.1f%% CPU for an extended period and has been terminated.\n\n%s\n"+
				"Long-running CPU-bound jobs should be submitted to the batch system instead.\n",
			sample.CPUPercent, jobDescription(sample))
	case policy.Renice:
		return fmt.Sprintf(
			"Your process was using %.1f%% CPU and has been moved to the lowest scheduling\n"+
				"priority. It keeps running, just more politely.\n\n%s",
			sample.CPUPercent, jobDescription(sample))
	default:
		return jobDescription(sample)
	}
}

// jobDescription renders the common process summary block.
func jobDescription(sample proc.Sample) string {
	started := time.Now().Add(-time.Duration(sample.ElapsedSeconds) * time.Second)

	return fmt.Sprintf(
		"  pid:     %d\n"+
			"  user:    %s\n"+
			"  cpu:     %.1f%%\n"+
			"  memory:  %.1f%%\n"+
			"  started: %s\n"+
			"  command: %s\n",
		sample.PID, sample.Owner, sample.CPUPercent, sample.MemoryPercent,
		humanize.Time(started), truncateCommand(sample.Command))
}

// truncateCommand keeps quoted command lines readable.
func truncateCommand(command string) string {
	command = strings.TrimSpace(command)

	if len(command) <= maxCommandLength {
		return command
	}

	return command[:maxCommandLength] + "..."
}
