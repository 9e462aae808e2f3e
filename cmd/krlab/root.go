package main

import (
	"fmt"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/kralloc/alloc"
	"github.com/joshuapare/kralloc/heap"
	"github.com/joshuapare/kralloc/internal/logger"
)

var (
	// Global flags
	policyName   string
	growUnits    uint32
	providerName string
	limitFlag    string
	verbose      bool
	logLevel     string
	jsonLog      bool
)

var rootCmd = &cobra.Command{
	Use:   "krlab",
	Short: "Exercise the kralloc free-list allocator",
	Long: `krlab runs allocator lab scenarios against a fresh arena: a fragmented
best-fit search, a multi-page allocation and a seeded random workload.

Without a subcommand it runs the best-fit and multi-page scenarios in order on
one arena, like "krlab run".`,
	Version:      "0.1.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLab(scenarioBestFit, scenarioBigAlloc)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().
		StringVar(&policyName, "policy", "best", "Search policy: next, first or best")
	rootCmd.PersistentFlags().
		Uint32Var(&growUnits, "grow-units", alloc.DefaultGrowUnits, "Smallest growth step in 8-byte units")
	rootCmd.PersistentFlags().
		StringVar(&providerName, "provider", "break", "Address space provider: break or mmap")
	rootCmd.PersistentFlags().
		StringVar(&limitFlag, "limit", "64MiB", "Provider size (e.g. 1MiB); 0 uses a quarter of free system memory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print address tables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func initLogging() error {
	if logLevel == "" {
		logger.Init(logger.Options{})
		return nil
	}
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Enabled: true, Level: level, JSON: jsonLog})
	return nil
}

// parseLimit accepts human sizes such as "64MiB" or "1 GB". Zero selects
// heap.SystemLimit(0.25).
func parseLimit(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --limit %q: %w", s, err)
	}
	if n == 0 {
		return heap.SystemLimit(0.25)
	}
	if n > uint64(heap.MaxLimit) {
		return 0, fmt.Errorf("--limit %s exceeds %s: %w",
			humanize.IBytes(n), humanize.IBytes(uint64(heap.MaxLimit)), heap.ErrBadLimit)
	}
	return int(n), nil
}

// newArena builds an arena from the global flags. The returned function
// releases the provider.
func newArena() (*alloc.Arena, func() error, error) {
	policy, err := alloc.ParsePolicy(policyName)
	if err != nil {
		return nil, nil, err
	}
	limit, err := parseLimit(limitFlag)
	if err != nil {
		return nil, nil, err
	}

	var p heap.Provider
	closeFn := func() error { return nil }
	switch strings.ToLower(providerName) {
	case "break":
		b, err := heap.NewBreak(limit)
		if err != nil {
			return nil, nil, err
		}
		p = b
	case "mmap":
		m, err := heap.NewMapped(limit)
		if err != nil {
			return nil, nil, fmt.Errorf("mmap provider: %w", err)
		}
		p, closeFn = m, m.Close
	default:
		return nil, nil, fmt.Errorf("unknown provider %q (want break or mmap)", providerName)
	}

	a, err := alloc.New(&alloc.Config{
		Provider:     p,
		Policy:       policy,
		MinGrowUnits: growUnits,
		Logger:       logger.L,
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	logger.Info("arena ready",
		"policy", policy.String(),
		"provider", providerName,
		"limit", humanize.IBytes(uint64(limit)),
		"grow_units", growUnits)
	return a, closeFn, nil
}

// Helper functions for output

// printInfo prints an info message
func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}
