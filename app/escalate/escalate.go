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

// Package escalate carries out action decisions against the live OS.
package escalate

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"go.resgov.io/agent/app/policy"
)

// Default waits of the graceful-then-forceful termination sequence.
const (
	// DefaultTermWait is how long a process gets to react to SIGTERM
	// before the first liveness re-check.
	DefaultTermWait = 250 * time.Millisecond

	// DefaultKillDelay is the additional wait before SIGKILL is sent.
	DefaultKillDelay = 3 * time.Second

	// DefaultKillWait is the wait before the final liveness re-check.
	DefaultKillWait = 250 * time.Millisecond
)

// System is the minimal OS surface the executor needs. It exists so the
// escalation sequence can be exercised against synthetic processes.
type System interface {
	// Signal sends sig to pid.
	Signal(pid int, sig unix.Signal) error

	// Alive reports whether pid still exists.
	Alive(pid int) bool

	// SetPriority sets the niceness of pid.
	SetPriority(pid int, niceness int) error
}

// Outcome is the result of executing a decision.
type Outcome struct {
	// Succeeded reports whether the action took effect.
	Succeeded bool

	// Simulated is set when the action was computed but not performed.
	Simulated bool

	// Diagnostic carries failure detail for logging.
	Diagnostic string
}

// Executor performs renice and termination sequences. Escalation is
// best-effort and inherently racy against the target's own state changes;
// a process disappearing mid-sequence is a success, not an error.
type Executor struct {
	// Pretend computes outcomes without touching any process.
	Pretend bool

	TermWait  time.Duration
	KillDelay time.Duration
	KillWait  time.Duration

	sys System
}

// NewExecutor returns an Executor operating on the live OS.
func NewExecutor(pretend bool) *Executor {
	return &Executor{
		Pretend:   pretend,
		TermWait:  DefaultTermWait,
		KillDelay: DefaultKillDelay,
		KillWait:  DefaultKillWait,
		sys:       osSystem{},
	}
}

// Execute carries out a decision and reports the outcome.
func (e *Executor) Execute(decision policy.Decision) Outcome {
	if e.Pretend {
		return Outcome{
			Succeeded:  true,
			Simulated:  true,
			Diagnostic: fmt.Sprintf("pretend: would %s pid %d", decision.Action, decision.Sample.PID),
		}
	}

	switch decision.Action {
	case policy.Renice:
		return e.renice(decision.Sample.PID)
	case policy.KillForCPU, policy.KillForMemory:
		return e.kill(decision.Sample.PID)
	default:
		return Outcome{Succeeded: true}
	}
}

// renice drops the process to the lowest scheduling priority.
func (e *Executor) renice(pid int) Outcome {
	if err := e.sys.SetPriority(pid, policy.LowestPriority); err != nil {
		if err == unix.ESRCH {
			return Outcome{Succeeded: true, Diagnostic: "process exited before renice"}
		}

		return Outcome{Diagnostic: fmt.Sprintf("renice pid %d: %v", pid, err)}
	}

	return Outcome{Succeeded: true}
}

// kill runs the graceful-then-forceful termination sequence: SIGTERM, a
// short wait, a longer wait, SIGKILL, a final re-check. A process that
// survives all of it (e.g. blocked in uninterruptible I/O) is reported as
// a failure and not retried.
func (e *Executor) kill(pid int) Outcome {
	if err := e.sys.Signal(pid, unix.SIGTERM); err != nil {
		if err == unix.ESRCH {
			return Outcome{Succeeded: true, Diagnostic: "process exited before termination"}
		}

		return Outcome{Diagnostic: fmt.Sprintf("sending SIGTERM to pid %d: %v", pid, err)}
	}

	time.Sleep(e.TermWait)

	if !e.sys.Alive(pid) {
		return Outcome{Succeeded: true}
	}

	time.Sleep(e.KillDelay)

	if err := e.sys.Signal(pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return Outcome{Diagnostic: fmt.Sprintf("sending SIGKILL to pid %d: %v", pid, err)}
	}

	time.Sleep(e.KillWait)

	if e.sys.Alive(pid) {
		return Outcome{Diagnostic: fmt.Sprintf("pid %d is still alive after SIGKILL", pid)}
	}

	return Outcome{Succeeded: true}
}

// osSystem is the live-OS implementation of System.
type osSystem struct{}

func (osSystem) Signal(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}

func (osSystem) Alive(pid int) bool {
	err := unix.Kill(pid, 0)

	// EPERM means the process exists but belongs to someone else
	return err == nil || err == unix.EPERM
}

func (osSystem) SetPriority(pid int, niceness int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, niceness)
}
