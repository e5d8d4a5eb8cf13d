package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"go.resgov.io/agent/app/utils/assert"
)

// writeProcFS points ProcFS at a temporary directory with the given files.
func writeProcFS(t *testing.T, files map[string]string) {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("cannot write fixture %s: %v", name, err)
		}
	}

	previous := ProcFS
	ProcFS = dir
	t.Cleanup(func() { ProcFS = previous })
}

func TestCollectLoadAverage(t *testing.T) {
	writeProcFS(t, map[string]string{
		"loadavg": "1.17 0.84 0.77 1/1012 12345\n",
	})

	loadAverage, err := CollectLoadAverage()

	assert.NoError(t, err)
	assert.Equal(t, loadAverage, 1.17)
}

func TestCollectLoadAverageMalformed(t *testing.T) {
	writeProcFS(t, map[string]string{
		"loadavg": "not-a-number\n",
	})

	_, err := CollectLoadAverage()

	assert.Error(t, err)
}

func TestCollectFreeMemoryMB(t *testing.T) {
	writeProcFS(t, map[string]string{
		"meminfo": "MemTotal:       16384000 kB\nMemFree:         1024000 kB\nMemAvailable:    4096000 kB\nSwapTotal:             0 kB\n",
	})

	freeMemoryMB, err := CollectFreeMemoryMB()

	assert.NoError(t, err)
	assert.Equal(t, freeMemoryMB, 4000)
}

func TestCollectFreeMemoryMBMissingField(t *testing.T) {
	writeProcFS(t, map[string]string{
		"meminfo": "MemTotal:       16384000 kB\n",
	})

	_, err := CollectFreeMemoryMB()

	assert.Error(t, err)
}

func TestCollect(t *testing.T) {
	writeProcFS(t, map[string]string{
		"loadavg": "0.42 0.84 0.77 1/1012 12345\n",
		"meminfo": "MemAvailable:    2048000 kB\n",
	})

	snapshot, err := Collect()

	assert.NoError(t, err)
	assert.Equal(t, snapshot.LoadAverage, 0.42)
	assert.Equal(t, snapshot.FreeMemoryMB, 2000)
}
