package governor

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"go.resgov.io/agent/app/escalate"
	"go.resgov.io/agent/app/metrics"
	"go.resgov.io/agent/app/policy"
	"go.resgov.io/agent/app/proc"
	"go.resgov.io/agent/app/utils/assert"
)

// logBuffer collects log output from the governor goroutine.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *logBuffer) Count(substr string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return strings.Count(b.buf.String(), substr)
}

func captureLog(t *testing.T) *logBuffer {
	t.Helper()

	buf := new(logBuffer)
	log.SetOutput(buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	return buf
}

// loopSource serves an empty process table and signals every snapshot, so
// tests can follow the daemon's cycle cadence.
type loopSource struct {
	cycles chan struct{}
}

func newLoopSource() *loopSource {
	return &loopSource{cycles: make(chan struct{}, 64)}
}

func (s *loopSource) List(ctx context.Context) ([]proc.Sample, error) {
	select {
	case s.cycles <- struct{}{}:
	default:
	}

	return nil, nil
}

func (s *loopSource) Lookup(ctx context.Context, pid int) (*proc.Sample, error) {
	return nil, proc.ErrProcessGone
}

func waitForCycle(t *testing.T, source *loopSource) {
	t.Helper()

	select {
	case <-source.cycles:
	case <-time.After(5 * time.Second):
		t.Fatalf("no governing cycle observed")
	}
}

// waitFor polls until done reports true, optionally running poke between
// polls, and fails the test on timeout.
func waitFor(t *testing.T, timeout time.Duration, poke func(), done func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if done() {
			return
		}

		if poke != nil {
			poke()
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("condition not reached within %s", timeout)
}

func loopConfig(pidFile string, trigger float64, intervalSeconds int, loop bool) string {
	return fmt.Sprintf(`{
  "load_average_trigger": %f,
  "interval_seconds": %d,
  "loop": %t,
  "pid_file": %q
}`, trigger, intervalSeconds, loop, pidFile)
}

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600); err != nil {
		t.Fatalf("cannot write config fixture: %v", err)
	}
}

// startLoopGovernor builds a governor from the config dir, runs its loop in
// the background and blocks until the first cycle completed, so the signal
// handlers are guaranteed to be installed.
func startLoopGovernor(t *testing.T, dir string, prepare ...func(*Governor)) (*Governor, *loopSource, context.CancelFunc, chan error) {
	t.Helper()

	cfg, err := LoadConfig(dir)
	assert.NoError(t, err)

	filter, err := policy.NewExemptionFilter(cfg.ExemptUsers, cfg.ExemptProcesses)
	assert.NoError(t, err)

	source := newLoopSource()

	governor := &Governor{
		cfg:      cfg,
		filter:   filter,
		source:   source,
		executor: new(fakeExecutor),
		notifier: new(fakeNotifier),
		gate: func() (*metrics.LoadSnapshot, error) {
			return &metrics.LoadSnapshot{LoadAverage: 99, FreeMemoryMB: 0}, nil
		},
		ownPID: os.Getpid(),
	}

	for _, fn := range prepare {
		fn(governor)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- governor.Run(ctx) }()

	waitForCycle(t, source)

	return governor, source, cancel, done
}

func stopGovernor(t *testing.T, cancel context.CancelFunc, done chan error) error {
	t.Helper()

	cancel()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("governor did not stop")
		return nil
	}
}

func TestRunReloadsOnEachSighup(t *testing.T) {
	buf := captureLog(t)

	pidFile := filepath.Join(t.TempDir(), "resgovd.pid")
	dir := writeConfig(t, loopConfig(pidFile, 1.0, 3600, true))

	_, _, cancel, done := startLoopGovernor(t, dir)

	assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	waitFor(t, 5*time.Second, nil, func() bool { return buf.Count("configuration reloaded") == 1 })

	// the handler must stay armed for every subsequent reload request
	assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	waitFor(t, 5*time.Second, nil, func() bool { return buf.Count("configuration reloaded") == 2 })

	assert.NoError(t, stopGovernor(t, cancel, done))
}

func TestRunReloadsOnConfigFileChange(t *testing.T) {
	buf := captureLog(t)

	pidFile := filepath.Join(t.TempDir(), "resgovd.pid")
	dir := writeConfig(t, loopConfig(pidFile, 1.0, 3600, true))

	governor, source, cancel, done := startLoopGovernor(t, dir)

	update := func() {
		writeConfigFile(t, dir, loopConfig(pidFile, 2.5, 1, true))
	}

	waitFor(t, 10*time.Second, update, func() bool { return buf.Count("configuration reloaded") > 0 })

	// the reload re-armed the ticker with the shorter interval
	waitForCycle(t, source)

	assert.NoError(t, stopGovernor(t, cancel, done))

	assert.Equal(t, governor.cfg.LoadAverageTrigger, 2.5)
	assert.Equal(t, governor.cfg.IntervalSeconds, 1)
}

func TestRunKeepsConfigOnBrokenReload(t *testing.T) {
	buf := captureLog(t)

	pidFile := filepath.Join(t.TempDir(), "resgovd.pid")
	dir := writeConfig(t, loopConfig(pidFile, 1.0, 3600, true))

	governor, _, cancel, done := startLoopGovernor(t, dir)

	corrupt := func() {
		writeConfigFile(t, dir, `{not json`)
	}

	waitFor(t, 10*time.Second, corrupt, func() bool {
		return buf.Count("reload failed, keeping previous config") > 0
	})

	assert.NoError(t, stopGovernor(t, cancel, done))

	assert.Equal(t, governor.cfg.LoadAverageTrigger, 1.0)
	assert.Equal(t, governor.cfg.IntervalSeconds, 3600)
}

func TestRunForcedPretendSurvivesReload(t *testing.T) {
	buf := captureLog(t)

	pidFile := filepath.Join(t.TempDir(), "resgovd.pid")
	dir := writeConfig(t, loopConfig(pidFile, 1.0, 3600, true))

	governor, _, cancel, done := startLoopGovernor(t, dir, func(g *Governor) {
		g.ForcePretend()
	})

	assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	waitFor(t, 5*time.Second, nil, func() bool { return buf.Count("configuration reloaded") == 1 })

	assert.NoError(t, stopGovernor(t, cancel, done))

	// the config file says pretend=false, but the command-line override wins
	assert.True(t, governor.cfg.Pretend)

	executor, ok := governor.executor.(*escalate.Executor)
	assert.True(t, ok)
	assert.True(t, executor.Pretend)
}

func TestRunLogsExitOnShutdown(t *testing.T) {
	buf := captureLog(t)

	pidFile := filepath.Join(t.TempDir(), "resgovd.pid")
	dir := writeConfig(t, loopConfig(pidFile, 1.0, 3600, true))

	_, _, cancel, done := startLoopGovernor(t, dir)

	assert.NoError(t, stopGovernor(t, cancel, done))
	assert.Equal(t, buf.Count("exiting"), 1)
}

func TestRunStopsWhenReloadDisablesLoop(t *testing.T) {
	buf := captureLog(t)

	pidFile := filepath.Join(t.TempDir(), "resgovd.pid")
	dir := writeConfig(t, loopConfig(pidFile, 1.0, 3600, true))

	_, _, cancel, done := startLoopGovernor(t, dir)
	defer cancel()

	disable := func() {
		writeConfigFile(t, dir, loopConfig(pidFile, 1.0, 3600, false))
	}

	var runErr error
	waitFor(t, 10*time.Second, disable, func() bool {
		select {
		case runErr = <-done:
			return true
		default:
			return false
		}
	})

	assert.NoError(t, runErr)
	assert.Equal(t, buf.Count("exiting"), 1)
}
