package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/joshuapare/kralloc/alloc"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain the pipe concurrently so large outputs cannot block fn
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// setFlags resets the global flags to their defaults, applies fn and
// restores the defaults when the test ends.
func setFlags(t *testing.T, fn func()) {
	t.Helper()
	defaults := func() {
		policyName = "best"
		growUnits = alloc.DefaultGrowUnits
		providerName = "break"
		limitFlag = "64MiB"
		verbose = false
		logLevel = ""
		jsonLog = false
		stressOps = 10000
		stressSeed = 1
		stressMaxSize = "1KiB"
		stressFreePct = 40
	}
	defaults()
	if fn != nil {
		fn()
	}
	t.Cleanup(defaults)
}
