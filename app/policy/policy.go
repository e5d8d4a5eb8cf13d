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

// Package policy decides what, if anything, should happen to a process.
package policy

import (
	"fmt"

	"go.resgov.io/agent/app/proc"
)

// LowestPriority is the weakest scheduling priority a process can be
// reniced to. A process already at this niceness is never reniced again.
const LowestPriority = 19

// Tier is one threshold with its grace period. A process must exceed
// Percent for strictly more than MinSeconds before the tier applies.
type Tier struct {
	// Percent of CPU or memory above which the tier triggers.
	Percent float64 `json:"percent"`

	// MinSeconds a process must have lived before the tier triggers.
	MinSeconds int `json:"min_seconds"`
}

// Thresholds holds the three escalation tiers. There is deliberately no
// renice tier for memory: renicing does not release memory.
type Thresholds struct {
	ReniceCPU  Tier `json:"renice_cpu"`
	KillCPU    Tier `json:"kill_cpu"`
	KillMemory Tier `json:"kill_memory"`
}

// Validate returns an error for thresholds the classifier cannot work with.
func (t Thresholds) Validate() error {
	for name, tier := range map[string]Tier{
		"renice_cpu":  t.ReniceCPU,
		"kill_cpu":    t.KillCPU,
		"kill_memory": t.KillMemory,
	} {
		if tier.Percent < 0 {
			return fmt.Errorf("threshold %s: negative percent %f", name, tier.Percent)
		}

		if tier.MinSeconds < 0 {
			return fmt.Errorf("threshold %s: negative min_seconds %d", name, tier.MinSeconds)
		}
	}

	return nil
}

// MinPercent returns the lowest of the three tier percentages. It is used
// as a cheap pre-filter before the authoritative per-process lookup.
func (t Thresholds) MinPercent() float64 {
	min := t.ReniceCPU.Percent

	if t.KillCPU.Percent < min {
		min = t.KillCPU.Percent
	}

	if t.KillMemory.Percent < min {
		min = t.KillMemory.Percent
	}

	return min
}

// Action is what should be done to a process.
type Action int

// Supported actions, from no-op to most urgent.
const (
	None Action = iota
	Renice
	KillForCPU
	KillForMemory
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case Renice:
		return "renice"
	case KillForCPU:
		return "kill-for-cpu"
	case KillForMemory:
		return "kill-for-memory"
	default:
		return "none"
	}
}

// Decision is an action together with the sample that triggered it.
type Decision struct {
	Action Action
	Sample proc.Sample
}

// Classify maps a process sample to an action. Memory kills win over CPU
// kills, which win over renicing: memory pressure risks taking the whole
// host down with the OOM killer, so it is handled first. Classify is a pure
// function of its inputs.
func Classify(sample proc.Sample, thresholds Thresholds) Decision {
	decision := Decision{Action: None, Sample: sample}

	switch {
	case sample.MemoryPercent > thresholds.KillMemory.Percent &&
		sample.ElapsedSeconds > thresholds.KillMemory.MinSeconds:
		decision.Action = KillForMemory

	case sample.CPUPercent > thresholds.KillCPU.Percent &&
		sample.ElapsedSeconds > thresholds.KillCPU.MinSeconds:
		decision.Action = KillForCPU

	case sample.CPUPercent > thresholds.ReniceCPU.Percent &&
		sample.ElapsedSeconds > thresholds.ReniceCPU.MinSeconds &&
		sample.Niceness != LowestPriority:
		decision.Action = Renice
	}

	return decision
}
