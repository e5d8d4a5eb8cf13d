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

// Package governor runs the cyclic sampling-and-enforcement loop.
package governor

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"go.resgov.io/agent/app/escalate"
	"go.resgov.io/agent/app/log"
	"go.resgov.io/agent/app/metrics"
	"go.resgov.io/agent/app/notify"
	"go.resgov.io/agent/app/policy"
	"go.resgov.io/agent/app/proc"
)

// Executor carries out a decision against the live OS.
type Executor interface {
	Execute(decision policy.Decision) escalate.Outcome
}

// Notifier reports an executed action to the owner and operators.
type Notifier interface {
	Notify(ctx context.Context, decision policy.Decision, outcome escalate.Outcome, sample proc.Sample)
}

// Governor is the cyclic orchestrator: it gates on system load, samples
// the process table, filters, classifies and escalates, one process at a
// time. All per-cycle state is recreated every cycle; the only state kept
// across cycles is the (reloadable) configuration.
type Governor struct {
	cfg    *Config
	filter *policy.ExemptionFilter

	source   proc.Source
	executor Executor
	notifier Notifier
	gate     func() (*metrics.LoadSnapshot, error)

	loopTicker *time.Ticker
	ownPID     int

	// pretendForced keeps a command-line pretend override in effect
	// across configuration reloads.
	pretendForced bool
}

// ForcePretend switches the governor into pretend mode regardless of what
// the configuration file says, now and after reloads.
func (g *Governor) ForcePretend() {
	g.pretendForced = true
	g.cfg.Pretend = true
	g.executor = escalate.NewExecutor(true)
	g.notifier = notify.NewDispatcher(g.cfg.MailFrom, g.cfg.MailBcc, g.cfg.MailLookupCommand, true)
}

// New returns a Governor wired to the live OS.
func New(cfg *Config) (*Governor, error) {
	filter, err := policy.NewExemptionFilter(cfg.ExemptUsers, cfg.ExemptProcesses)
	if err != nil {
		return nil, err
	}

	return &Governor{
		cfg:      cfg,
		filter:   filter,
		source:   proc.NewSource(),
		executor: escalate.NewExecutor(cfg.Pretend),
		notifier: notify.NewDispatcher(cfg.MailFrom, cfg.MailBcc, cfg.MailLookupCommand, cfg.Pretend),
		gate:     metrics.Collect,
		ownPID:   os.Getpid(),
	}, nil
}

// Run is the main control loop of the daemon. It returns on a termination
// signal, after logging a final record.
func (g *Governor) Run(ctx context.Context) error {
	pidLock, err := AcquirePIDLock(g.cfg.PIDFile)
	if err != nil {
		return err
	}
	defer pidLock.Release()

	// catch SIGINT and SIGTERM to gracefully shut down
	stopSignalCh := make(chan os.Signal, 1)
	signal.Notify(stopSignalCh, os.Interrupt, syscall.SIGTERM)

	// SIGHUP reloads the configuration; the channel stays armed, so
	// every subsequent SIGHUP reloads again
	reloadSignalCh := make(chan os.Signal, 1)
	signal.Notify(reloadSignalCh, syscall.SIGHUP)

	// config file edits trigger the same reload path as SIGHUP
	watcher := watchConfigFile(ctx, g.cfg.Directory)

	g.loopTicker = time.NewTicker(g.interval())
	defer g.loopTicker.Stop()

	log.Infof("starting governor (pid=%d, interval=%s, pretend=%t)", g.ownPID, g.interval(), g.cfg.Pretend)

	// the ticker won't fire immediately, so run the first cycle ourselves
	g.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Infof("exiting")
			return nil

		case <-stopSignalCh:
			log.Infof("exiting")
			return nil

		case <-reloadSignalCh:
			g.reload()

			if !g.cfg.Loop {
				log.Infof("exiting")
				return nil
			}

		case <-watcher.Events:
			log.Debugf("config file changed on disk")
			g.reload()

			if !g.cfg.Loop {
				log.Infof("exiting")
				return nil
			}

		case <-g.loopTicker.C:
			g.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single governing cycle.
func (g *Governor) RunOnce(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("fatal governor error: %v", err)
		}
	}()

	log.Debugf("starting governing cycle")

	if g.gated() {
		return
	}

	samples, err := g.source.List(ctx)
	if err != nil {
		log.Errorf("failed to read the process table: %v", err)
		return
	}

	minPercent := g.cfg.Thresholds.MinPercent()

	candidates := 0
	for _, sample := range samples {
		if sample.PID == g.ownPID {
			continue
		}

		// cheap pre-filter; the authoritative figures come from the
		// per-process lookup in handleCandidate
		if sample.CPUPercent <= minPercent && sample.MemoryPercent <= minPercent {
			continue
		}

		if g.filter.IsExempt(sample.Owner, sample.Command) {
			continue
		}

		candidates++
		g.handleCandidate(ctx, sample.PID)
	}

	log.Debugf("cycle complete: %d processes sampled, %d candidates", len(samples), candidates)
}

// gated reports whether the system is idle enough to skip process work.
func (g *Governor) gated() bool {
	snapshot, err := g.gate()
	if err != nil {
		// without readings we cannot claim the system is idle
		log.Warnf("failed to read system load, proceeding with cycle: %v", err)
		return false
	}

	if snapshot.LoadAverage < g.cfg.LoadAverageTrigger && snapshot.FreeMemoryMB > g.cfg.FreeMemoryTriggerMB {
		log.Debugf("system idle (load %.2f, %s free), skipping cycle",
			snapshot.LoadAverage, humanize.IBytes(uint64(snapshot.FreeMemoryMB)*1024*1024))
		return true
	}

	return false
}

// handleCandidate runs the classify -> execute -> notify pipeline for one
// process. A failure here never aborts the rest of the cycle.
func (g *Governor) handleCandidate(ctx context.Context, pid int) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("error while handling pid %d: %v", pid, err)
		}
	}()

	sample, err := g.source.Lookup(ctx, pid)
	if err != nil {
		if errors.Is(err, proc.ErrProcessGone) {
			// exited between snapshot and lookup; nothing to do
			return
		}

		log.Warnf("failed to look up pid %d: %v", pid, err)
		return
	}

	// the detailed sample carries the untruncated command line, so the
	// exemption filter gets the final word here
	if g.filter.IsExempt(sample.Owner, sample.Command) {
		return
	}

	decision := policy.Classify(*sample, g.cfg.Thresholds)
	if decision.Action == policy.None {
		return
	}

	outcome := g.executor.Execute(decision)

	switch {
	case outcome.Simulated:
		log.Infof("%s", outcome.Diagnostic)
	case outcome.Succeeded:
		log.Infof("%s pid %d (%s) of %s: cpu %.1f%%, mem %.1f%%",
			decision.Action, sample.PID, sample.Command, sample.Owner,
			sample.CPUPercent, sample.MemoryPercent)
	default:
		log.Warnf("%s pid %d failed: %s", decision.Action, sample.PID, outcome.Diagnostic)
	}

	if outcome.Succeeded {
		g.notifier.Notify(ctx, decision, outcome, *sample)
	}
}

// reload re-reads the configuration and restarts the cycle cadence.
// In-flight escalations are never interrupted: reload is only observed
// between cycles.
func (g *Governor) reload() {
	cfg, err := LoadConfig(g.cfg.Directory)
	if err != nil {
		log.Errorf("reload failed, keeping previous config: %v", err)
		return
	}

	filter, err := policy.NewExemptionFilter(cfg.ExemptUsers, cfg.ExemptProcesses)
	if err != nil {
		log.Errorf("reload failed, keeping previous config: %v", err)
		return
	}

	if g.pretendForced {
		cfg.Pretend = true
	}

	g.cfg = cfg
	g.filter = filter
	g.executor = escalate.NewExecutor(cfg.Pretend)
	g.notifier = notify.NewDispatcher(cfg.MailFrom, cfg.MailBcc, cfg.MailLookupCommand, cfg.Pretend)
	g.loopTicker.Reset(g.interval())

	log.Infof("configuration reloaded (interval=%s)", g.interval())
}

func (g *Governor) interval() time.Duration {
	return time.Duration(g.cfg.IntervalSeconds) * time.Second
}
