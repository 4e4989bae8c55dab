package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/socialconnect-core/pkg/importer"
	"github.com/spf13/cobra"
)

var (
	importFormat = importer.DefaultFormat()
	importSource string
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv|url> | --source NAME",
	Short: "Import case records from a CSV file",
	Long: `Import case records from a CSV file or an http(s) URL.

Columns are matched by header name (nom, prénom, secteur, rue, notes,
remarques, information importante, service, année, numéro). Without a
header the columns are read in that order.

Example:
  socialconnect import usagers.csv
  socialconnect import export.csv --delimiter ";" --encoding windows-1252
  socialconnect import --source cpas-nightly`,
	Args: func(cmd *cobra.Command, args []string) error {
		if importSource != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		st, err := e.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var stats importer.Stats
		if importSource != "" {
			sdb, err := importer.OpenSourceDB(e.cfg.DBPath)
			if err != nil {
				return err
			}
			defer sdb.Close()
			stats, err = importer.ImportSource(ctx, st, sdb, importSource, e.logger)
			if err != nil {
				return err
			}
		} else {
			stats, err = importer.ImportCSV(ctx, st, args[0], importFormat, e.logger)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rows: %d, imported: %d, skipped: %d\n", stats.Rows, stats.Imported, stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importFormat.Delimiter, "delimiter", importFormat.Delimiter, "field delimiter")
	importCmd.Flags().StringVar(&importFormat.Encoding, "encoding", importFormat.Encoding, "file encoding (utf-8, windows-1252, iso-8859-1, ...)")
	importCmd.Flags().BoolVar(&importFormat.HasHeader, "header", importFormat.HasHeader, "first row is a header")
	importCmd.Flags().StringVar(&importSource, "source", "", "import a registered source (see 'socialconnect sources')")
}
