package main

import (
	"fmt"

	"github.com/paveg/tabprep/internal/config"
	"github.com/paveg/tabprep/internal/fetch"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var dir, url string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the MNIST archive unless it is already present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Fetch
			if cmd.Flags().Changed("dir") {
				cfg.Dir = dir
			}
			if cmd.Flags().Changed("url") {
				cfg.URL = url
			}

			report, err := fetch.New(cfg, fetch.WithLogger(a.logger)).Fetch(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes (xxhash %s)\n", report.Path, report.Bytes, report.DigestHex())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", config.DefaultFetchDir, "Destination directory")
	cmd.Flags().StringVar(&url, "url", config.DefaultFetchURL, "Dataset URL")

	return cmd
}
