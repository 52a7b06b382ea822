package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/memstore"
	"github.com/warehouse-twin/warehouse-twin/sim/pgstore"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
	"github.com/warehouse-twin/warehouse-twin/sim/twin"
)

var (
	// CLI flags for the run command
	configPath     string // YAML configuration layered over the built-in defaults
	seed           int64  // Seed override for the shared random stream
	days           int    // Number of simulated days
	startDate      string // First simulated day (YYYY-MM-DD)
	commitInterval int    // Ticks between commits
	logLevel       string // Log verbosity level
	storeKind      string // Backend: memory or postgres
	resetStore     bool   // Drop and recreate the store before the run
	traceLevel     string // Decision trace verbosity
	metricsOut     string // Optional JSON metrics output path
)

// Store backends accepted by --store.
const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "warehouse-twin",
	Short: "Deterministic warehouse digital twin generator",
}

// runCmd builds the world and simulates its history
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a world and simulate its history",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		_ = godotenv.Load()

		cfg, err := loadRunConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, decisions)", traceLevel)
		}

		ctx := context.Background()
		backend, closeFn, err := openBackend(ctx, storeKind)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer closeFn()

		tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		logrus.Infof("Starting twin: seed=%d start=%s days=%d commit_interval=%d store=%s",
			cfg.Simulation.RandomSeed, cfg.Simulation.StartDate, cfg.Simulation.DefaultDays,
			cfg.Simulation.CommitInterval, storeKind)

		startTime := time.Now()
		runner := twin.NewRunner(cfg, backend, twin.Options{Reset: resetStore, Trace: tr})
		res, err := runner.Run(ctx)
		if err != nil {
			logrus.Fatalf("Run %s failed: %v", runner.RunID, err)
		}

		res.Metrics.Print()
		if tr != nil {
			printTraceSummary(trace.Summarize(tr))
		}
		if metricsOut != "" {
			if err := res.Metrics.SaveToFile(metricsOut); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		logrus.Infof("Run %s complete in %s.", runner.RunID, time.Since(startTime).Round(time.Millisecond))
	},
}

// loadRunConfig loads the configuration file and applies flags the user set explicitly.
func loadRunConfig(cmd *cobra.Command) (*sim.Config, error) {
	cfg, err := sim.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Simulation.RandomSeed = seed
	}
	if flags.Changed("days") {
		cfg.Simulation.DefaultDays = days
	}
	if flags.Changed("start-date") {
		cfg.Simulation.StartDate = startDate
	}
	if flags.Changed("commit-interval") {
		cfg.Simulation.CommitInterval = commitInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openBackend returns the selected store and a function releasing it.
func openBackend(ctx context.Context, kind string) (sim.Backend, func(), error) {
	switch kind {
	case storeMemory:
		return memstore.New(), func() {}, nil
	case storePostgres:
		pool, err := pgstore.NewPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		store := pgstore.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q; valid: memory, postgres", kind)
	}
}

func printTraceSummary(s *trace.TraceSummary) {
	fmt.Println("=== Decision Trace ===")
	fmt.Printf("Decisions            : %d\n", s.TotalDecisions)
	fmt.Printf("Purchase Orders      : %d %v\n", s.PurchaseOrders, s.ModeDistribution)
	if s.PurchaseOrders > 0 {
		fmt.Printf("Lead Time (days)     : mean %.2f, max %d\n", s.MeanLeadTimeDays, s.MaxLeadTimeDays)
	}
	fmt.Printf("First-Day Fill Rate  : %.2f%%\n", s.FillRate*100)
	fmt.Printf("Backorder Fills      : %d\n", s.Backorders)
	fmt.Printf("Receipts             : %d delivered, %d exception\n", s.Delivered, s.Exceptions)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file (defaults are used when empty)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the shared random stream (overrides simulation.random_seed)")
	runCmd.Flags().IntVar(&days, "days", 365, "Number of simulated days (overrides simulation.default_days)")
	runCmd.Flags().StringVar(&startDate, "start-date", "2024-01-01", "First simulated day, YYYY-MM-DD (overrides simulation.start_date)")
	runCmd.Flags().IntVar(&commitInterval, "commit-interval", 10, "Ticks between commits (overrides simulation.commit_interval)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&storeKind, "store", storeMemory, "Store backend (memory, postgres); postgres reads DATABASE_URL")
	runCmd.Flags().BoolVar(&resetStore, "reset", false, "Drop and recreate the store tables before the run (required when the store already holds a history)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write run metrics as JSON to this path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(defaultsCmd)
}
