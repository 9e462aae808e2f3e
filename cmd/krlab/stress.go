package main

import (
	"fmt"
	"math"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/kralloc/alloc"
	"github.com/joshuapare/kralloc/internal/format"
	"github.com/joshuapare/kralloc/internal/lab"
)

var (
	stressOps     int
	stressSeed    uint64
	stressMaxSize string
	stressFreePct int
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Number of operations")
	cmd.Flags().Uint64Var(&stressSeed, "seed", 1, "PRNG seed")
	cmd.Flags().StringVar(&stressMaxSize, "max-size", "1KiB", "Largest request")
	cmd.Flags().IntVar(&stressFreePct, "free-percent", 40, "Share of operations that release a block")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a seeded random allocate/release workload",
		Long: `The stress command runs a random mix of allocations, resizes and
releases, verifies block contents and checks every arena invariant after each
operation.

Example:
  krlab stress --ops 100000 --seed 7
  krlab stress --policy next --grow-units 512 --limit 256KiB`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

func runStress() error {
	maxSize, err := humanize.ParseBytes(stressMaxSize)
	if err != nil || maxSize == 0 || maxSize > math.MaxUint32 {
		return fmt.Errorf("invalid --max-size %q", stressMaxSize)
	}

	a, closeFn, err := newArena()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := lab.Stress(a, lab.StressOptions{
		Ops:         stressOps,
		Seed:        stressSeed,
		MaxSize:     uint32(maxSize),
		FreePercent: stressFreePct,
	})
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stdout, "Stress (%s fit, seed %d)\n", a.Policy(), stressSeed)
	p.Fprintf(os.Stdout, "  Operations:  %d\n", res.Ops)
	p.Fprintf(os.Stdout, "  Allocs:      %d\n", res.Allocs)
	p.Fprintf(os.Stdout, "  Reallocs:    %d\n", res.Reallocs)
	p.Fprintf(os.Stdout, "  Frees:       %d\n", res.Frees)
	p.Fprintf(os.Stdout, "  Exhausted:   %d\n", res.Exhausted)
	p.Fprintf(os.Stdout, "  Peak live:   %d\n", res.PeakLive)
	printInfo("\n")
	printStats(a.Stats())
	return nil
}

// printStats prints arena counters with grouped digits and human sizes.
func printStats(s alloc.Stats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stdout, "Arena\n")
	p.Fprintf(os.Stdout, "  Grown:       %s (%d units, %d grows)\n", humanize.IBytes(s.GrownBytes()), s.GrownUnits, s.GrowCalls)
	p.Fprintf(os.Stdout, "  Live:        %d blocks, %s\n", s.LiveBlocks, humanize.IBytes(s.LiveBytes()))
	p.Fprintf(os.Stdout, "  Free:        %d blocks, %s\n", s.FreeBlocks, humanize.IBytes(s.FreeBytes()))
	p.Fprintf(os.Stdout, "  Largest:     %s\n", humanize.IBytes(uint64(s.LargestFree)*format.UnitSize))
	p.Fprintf(os.Stdout, "  Calls:       %d alloc, %d free, %d rejected\n", s.AllocCalls, s.FreeCalls, s.InvalidReleases)
	p.Fprintf(os.Stdout, "  Placement:   %d splits, %d exact fits\n", s.Splits, s.ExactFits)
	p.Fprintf(os.Stdout, "  Coalesced:   %d forward, %d backward\n", s.CoalesceForward, s.CoalesceBackward)
}
