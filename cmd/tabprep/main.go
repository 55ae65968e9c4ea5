// Command tabprep preprocesses car-listing CSV files into train/test
// partitions and fetches the MNIST dataset archive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/paveg/tabprep/internal/config"
	"github.com/paveg/tabprep/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand once flags are parsed
type app struct {
	logMode    string
	configPath string
	cfg        config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.Nop()}

	rootCmd := &cobra.Command{
		Use:           "tabprep",
		Short:         "Tabular preprocessing and dataset fetching",
		Long:          `Cleans, encodes and splits a car-listing CSV file, and downloads the MNIST archive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var overrides []func(*config.Config)
			if cmd.Flags().Changed("log") {
				overrides = append(overrides, func(c *config.Config) { c.LogMode = a.logMode })
			}

			cfg, err := config.Load(a.configPath, overrides...)
			if err != nil {
				return err
			}

			mode, err := logging.ParseMode(cfg.LogMode)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.Init(mode, cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logMode, "log", config.DefaultLogMode, "Log mode: debug, pretty, info, prod, test")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML or JSON configuration file")

	rootCmd.AddCommand(newPreprocessCmd(a))
	rootCmd.AddCommand(newFetchCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if logger := zerolog.DefaultContextLogger; logger != nil {
			logger.Error().Err(err).Msg("tabprep failed")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above
	}
}
