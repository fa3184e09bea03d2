package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xupit3r/bitgrid/internal/config"
	"github.com/xupit3r/bitgrid/internal/logging"
)

var (
	cfgFile string
	verbose bool

	v   = viper.New()
	cfg = config.DefaultConfig()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bitgrid",
	Short: "Inspect packed bit arrays in device memory",
	Long: `bitgrid allocates packed bit arrays on the CPU or a GPU, fills them
with parallel kernels and inspects the result.

Each element's width is rounded up to whole bytes. Elements can be printed
as integers, drawn in the terminal or exported as images.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command. An interrupt cancels running kernels.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bitgrid/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("device", "auto", "compute device: auto, cpu, gpu, metal, cuda")
	rootCmd.PersistentFlags().Int("workers", 0, "kernel worker goroutines (0 = GOMAXPROCS)")

	v.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	v.BindPFlag("launch.workers", rootCmd.PersistentFlags().Lookup("workers"))

	registerDeviceCompletions()
}

// initConfig loads the config file, environment and flags, then sets up
// logging.
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadWith(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logging.Init(level, cfg.Logging.File, cfg.Logging.Console); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	if v.ConfigFileUsed() != "" {
		logging.Infof("using config file: %s", v.ConfigFileUsed())
	}
	return nil
}
