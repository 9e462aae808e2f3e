package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kralloc/alloc"
	"github.com/joshuapare/kralloc/internal/lab"
	"github.com/joshuapare/kralloc/internal/logger"
)

// errScenarioFailed makes the process exit non-zero after the report.
var errScenarioFailed = errors.New("one or more scenarios failed")

// scenario runs against a shared arena and returns its code.
type scenario struct {
	intro string
	name  string
	run   func(a *alloc.Arena) (int, error)
}

var scenarioBestFit = scenario{
	intro: "Verifying allocations find best fit blocks",
	name:  "Bestfit search test",
	run:   runBestFit,
}

var scenarioBigAlloc = scenario{
	intro: "Verifying allocations can span multiple pages",
	name:  "Multiple page allocation test",
	run:   runBigAlloc,
}

func init() {
	rootCmd.AddCommand(
		newScenarioCmd("run", "Run the best-fit and multi-page scenarios", scenarioBestFit, scenarioBigAlloc),
		newScenarioCmd("bestfit", "Run the fragmented best-fit search scenario", scenarioBestFit),
		newScenarioCmd("bigalloc", "Run the multi-page allocation scenario", scenarioBigAlloc),
	)
}

func newScenarioCmd(use, short string, scenarios ...scenario) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLab(scenarios...)
		},
	}
}

// runLab runs the scenarios in order on one arena and prints a pass/fail
// line for each.
func runLab(scenarios ...scenario) error {
	a, closeFn, err := newArena()
	if err != nil {
		return err
	}
	defer closeFn()

	failed := false
	for i, s := range scenarios {
		if i > 0 {
			printInfo("\n")
		}
		printInfo("%s\n", s.intro)
		code, err := s.run(a)
		if err != nil {
			logger.Error("scenario aborted", "name", s.name, "err", err)
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if code == lab.CodePass {
			printInfo("%s: pass\n", s.name)
		} else {
			printInfo("%s: fail (code: %d)\n", s.name, code)
			logger.Warn("scenario failed", "name", s.name, "code", code)
			failed = true
		}
		logger.Debug("scenario done", "name", s.name, "code", code)
	}

	if verbose {
		printInfo("\n")
		printStats(a.Stats())
	}
	if err := a.Check(); err != nil {
		logger.Error("arena check failed", "err", err)
		return err
	}
	if failed {
		return errScenarioFailed
	}
	return nil
}

func runBestFit(a *alloc.Arena) (int, error) {
	res, err := lab.BestFitSearch(a)
	if verbose {
		printSlots("segment", res.Initial)
		printSlots("segment", res.Fragmented)
		printVerbose("%d block addresses\n", len(res.Blocks))
		for _, b := range res.Blocks {
			printVerbose("%#x, alloc:%d\n", uint32(b.Ptr), b.Size)
		}
	}
	return res.Code, err
}

func printSlots(what string, slots []lab.Slot) {
	if len(slots) == 0 {
		return
	}
	printVerbose("%d %s addresses\n", len(slots), what)
	for _, s := range slots {
		printVerbose("%#x, alloc:%d, free:%d\n", uint32(s.Ptr), s.Size, boolInt(s.Free))
	}
}

func runBigAlloc(a *alloc.Arena) (int, error) {
	res, err := lab.BigAlloc(a)
	if res.P2 != alloc.Nil {
		printVerbose("%#x\n", uint32(res.P1))
		printVerbose("%#x\n", uint32(res.P2))
		printVerbose("delta:%d\n", res.Delta)
	}
	return res.Code, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
