package policy

import (
	"testing"

	"go.resgov.io/agent/app/proc"
	"go.resgov.io/agent/app/utils/assert"
)

// defaultThresholds mirrors a typical production policy:
// renice at 30% CPU after 30s, kill at 30% CPU after 10 minutes,
// kill at 50% memory after 60s.
var defaultThresholds = Thresholds{
	ReniceCPU:  Tier{Percent: 30, MinSeconds: 30},
	KillCPU:    Tier{Percent: 30, MinSeconds: 600},
	KillMemory: Tier{Percent: 50, MinSeconds: 60},
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		sample     proc.Sample
		thresholds Thresholds
		want       Action
	}{
		{
			name:       "quiet process",
			sample:     proc.Sample{CPUPercent: 1, MemoryPercent: 1, ElapsedSeconds: 100000},
			thresholds: defaultThresholds,
			want:       None,
		},
		{
			name:       "kill cpu after long overuse",
			sample:     proc.Sample{CPUPercent: 55, MemoryPercent: 10, ElapsedSeconds: 700},
			thresholds: defaultThresholds,
			want:       KillForCPU,
		},
		{
			name:       "renice before kill duration is reached",
			sample:     proc.Sample{CPUPercent: 35, MemoryPercent: 10, ElapsedSeconds: 100},
			thresholds: defaultThresholds,
			want:       Renice,
		},
		{
			name:   "memory kill with zero grace period",
			sample: proc.Sample{CPUPercent: 10, MemoryPercent: 60, ElapsedSeconds: 1},
			thresholds: Thresholds{
				ReniceCPU:  Tier{Percent: 30, MinSeconds: 30},
				KillCPU:    Tier{Percent: 30, MinSeconds: 600},
				KillMemory: Tier{Percent: 50, MinSeconds: 0},
			},
			want: KillForMemory,
		},
		{
			name:       "memory kill wins over concurrently-true cpu kill",
			sample:     proc.Sample{CPUPercent: 99, MemoryPercent: 99, ElapsedSeconds: 100000},
			thresholds: defaultThresholds,
			want:       KillForMemory,
		},
		{
			name:       "cpu kill wins over renice",
			sample:     proc.Sample{CPUPercent: 55, MemoryPercent: 10, ElapsedSeconds: 100000},
			thresholds: defaultThresholds,
			want:       KillForCPU,
		},
		{
			name:       "no renice at lowest priority",
			sample:     proc.Sample{CPUPercent: 35, MemoryPercent: 10, ElapsedSeconds: 100, Niceness: LowestPriority},
			thresholds: defaultThresholds,
			want:       None,
		},
		{
			name:       "kill applies even at lowest priority",
			sample:     proc.Sample{CPUPercent: 55, MemoryPercent: 10, ElapsedSeconds: 700, Niceness: LowestPriority},
			thresholds: defaultThresholds,
			want:       KillForCPU,
		},
		{
			name:       "duration compared strictly greater-than",
			sample:     proc.Sample{CPUPercent: 55, MemoryPercent: 10, ElapsedSeconds: 600},
			thresholds: defaultThresholds,
			want:       Renice,
		},
		{
			name:       "threshold compared strictly greater-than",
			sample:     proc.Sample{CPUPercent: 30, MemoryPercent: 10, ElapsedSeconds: 700},
			thresholds: defaultThresholds,
			want:       None,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Classify(tt.sample, tt.thresholds)

			assert.Equal(t, decision.Action, tt.want)
			assert.Equal(t, decision.Sample, tt.sample)
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	sample := proc.Sample{PID: 42, CPUPercent: 55, MemoryPercent: 10, ElapsedSeconds: 700}

	first := Classify(sample, defaultThresholds)
	second := Classify(sample, defaultThresholds)

	assert.Equal(t, first, second)
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, defaultThresholds.Validate())

	negativePercent := defaultThresholds
	negativePercent.KillMemory.Percent = -1
	assert.Error(t, negativePercent.Validate())

	negativeDuration := defaultThresholds
	negativeDuration.ReniceCPU.MinSeconds = -30
	assert.Error(t, negativeDuration.Validate())
}

func TestThresholdsMinPercent(t *testing.T) {
	assert.Equal(t, defaultThresholds.MinPercent(), 30.0)

	lowMemory := defaultThresholds
	lowMemory.KillMemory.Percent = 5
	assert.Equal(t, lowMemory.MinPercent(), 5.0)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, None.String(), "none")
	assert.Equal(t, Renice.String(), "renice")
	assert.Equal(t, KillForCPU.String(), "kill-for-cpu")
	assert.Equal(t, KillForMemory.String(), "kill-for-memory")
}
