package main

import (
	"bytes"
	"log/slog"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kralloc/heap"
	"github.com/joshuapare/kralloc/internal/logger"
)

func TestRunLab_BestFitPasses(t *testing.T) {
	setFlags(t, nil)

	out, err := captureOutput(t, func() error {
		return runLab(scenarioBestFit, scenarioBigAlloc)
	})
	require.NoError(t, err)
	assert.Equal(t, `Verifying allocations find best fit blocks
Bestfit search test: pass

Verifying allocations can span multiple pages
Multiple page allocation test: pass
`, out)
}

func TestRunLab_NextFitFails(t *testing.T) {
	setFlags(t, func() { policyName = "next" })

	out, err := captureOutput(t, func() error {
		return runLab(scenarioBestFit)
	})
	require.ErrorIs(t, err, errScenarioFailed)
	assert.Contains(t, out, "Bestfit search test: fail (code: 1)")
}

func TestRunLab_LogsFailures(t *testing.T) {
	setFlags(t, func() { policyName = "first" })
	var logs bytes.Buffer
	logger.Init(logger.Options{Enabled: true, Level: slog.LevelWarn, Writer: &logs})
	t.Cleanup(func() { logger.Init(logger.Options{}) })

	_, err := captureOutput(t, func() error {
		return runLab(scenarioBestFit)
	})
	require.ErrorIs(t, err, errScenarioFailed)
	assert.Contains(t, logs.String(), "scenario failed")
	assert.Contains(t, logs.String(), "code=1")
}

func TestRunLab_BigAllocOutOfMemory(t *testing.T) {
	setFlags(t, func() { limitFlag = "4KiB" })

	out, err := captureOutput(t, func() error {
		return runLab(scenarioBigAlloc)
	})
	require.ErrorIs(t, err, errScenarioFailed)
	assert.Contains(t, out, "Multiple page allocation test: fail (code: 2)")
}

func TestRunLab_Verbose(t *testing.T) {
	setFlags(t, func() { verbose = true })

	out, err := captureOutput(t, func() error {
		return runLab(scenarioBestFit, scenarioBigAlloc)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "16 segment addresses"))
	assert.Contains(t, out, "4 block addresses")
	assert.Contains(t, out, "alloc:256, free:1")
	assert.Contains(t, out, "delta:8192")
	assert.Contains(t, out, "Grown:")
}

func TestRunLab_Mmap(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("mmap provider not available")
	}
	setFlags(t, func() { providerName = "mmap"; limitFlag = "1MiB" })

	out, err := captureOutput(t, func() error {
		return runLab(scenarioBestFit, scenarioBigAlloc)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, ": pass"))
}

func TestNewArena_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		set  func()
	}{
		{"policy", func() { policyName = "worst" }},
		{"provider", func() { providerName = "disk" }},
		{"limit syntax", func() { limitFlag = "lots" }},
		{"limit too small", func() { limitFlag = "1KiB" }},
		{"grow units", func() { growUnits = 1 << 30 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.set)
			_, _, err := newArena()
			assert.Error(t, err)
		})
	}
}

func TestParseLimit(t *testing.T) {
	n, err := parseLimit("64MiB")
	require.NoError(t, err)
	assert.Equal(t, 64<<20, n)

	n, err = parseLimit("1 MB")
	require.NoError(t, err)
	assert.Equal(t, 1000*1000, n)

	_, err = parseLimit("8GiB")
	require.ErrorIs(t, err, heap.ErrBadLimit)
}

func TestRunStress(t *testing.T) {
	setFlags(t, func() { stressOps = 2000; stressSeed = 3 })

	out, err := captureOutput(t, runStress)
	require.NoError(t, err)
	assert.Contains(t, out, "Stress (best fit, seed 3)")
	assert.Contains(t, out, "Operations:  2,000")
	assert.Contains(t, out, "Live:        0 blocks")
}

func TestRunStress_BadMaxSize(t *testing.T) {
	setFlags(t, func() { stressMaxSize = "0" })
	_, err := captureOutput(t, runStress)
	assert.Error(t, err)
}
