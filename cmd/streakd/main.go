package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sandeepkv93/streakd/internal/config"
)

var (
	verbose     bool
	envFile     string
	dbPath      string
	redisURL    string
	userID      string
	metricsAddr string

	cfg    config.RuntimeConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "streakd",
	Short: "Daily task tracker with streaks, points and a reward shop",
	Long: `streakd keeps a list of daily tasks. Completing a task earns points,
finishing every task keeps your streak alive and points buy icons and
streak savers in the shop.

Run without arguments to start the interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		cfg = config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())
		if cmd.Flags().Changed("db") {
			cfg.DBPath = dbPath
		}
		if cmd.Flags().Changed("redis-url") {
			cfg.RedisURL = redisURL
		}
		if cmd.Flags().Changed("user") {
			cfg.UserID = userID
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.MetricsAddr = metricsAddr
		}

		var err error
		logger, err = buildLogger(isInteractive(cmd))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

// buildLogger keeps the terminal clean while the TUI owns it: logs then go
// to the configured file or nowhere.
func buildLogger(interactive bool) (*zap.Logger, error) {
	if interactive && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}

func isInteractive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with STREAKD_* variables")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path of the local sqlite database (STREAKD_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "redis url for remote sync (STREAKD_REDIS_URL)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "account id used for remote sync (STREAKD_USER_ID)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address during the TUI (STREAKD_METRICS_ADDR)")

	rootCmd.AddCommand(tuiCmd, listCmd, exportCmd, importCmd)
	for _, verb := range verbs {
		rootCmd.AddCommand(verbCommand(verb))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
