package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/importer"
	"github.com/spf13/cobra"
)

var sourceFormat = importer.DefaultFormat()
var sourceDescription string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage named CSV import sources",
	Long: `Named sources are CSV exports (local paths or http(s) URLs) that can be
imported repeatedly with 'socialconnect import --source NAME'. The server
checks them periodically when sources.check_interval is set.`,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources with their last check and import",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(ctx context.Context, e *env, sdb *importer.SourceDB) error {
			sources, err := sdb.List(ctx)
			if err != nil {
				return err
			}
			printSources(cmd.OutOrStdout(), sources)
			return nil
		})
	},
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <name> <file.csv|url>",
	Short: "Register or update a source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(ctx context.Context, e *env, sdb *importer.SourceDB) error {
			if err := sdb.Register(ctx, importer.Source{
				Name:        args[0],
				URL:         args[1],
				Description: sourceDescription,
				Format:      sourceFormat,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "source %s -> %s\n", args[0], args[1])
			return nil
		})
	},
}

var sourcesMoveCmd = &cobra.Command{
	Use:   "move <name> <file.csv|url>",
	Short: "Point a source at a new location, keeping its format and history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(ctx context.Context, e *env, sdb *importer.SourceDB) error {
			if err := sdb.SetURL(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "source %s -> %s\n", args[0], args[1])
			return nil
		})
	},
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(ctx context.Context, e *env, sdb *importer.SourceDB) error {
			return sdb.Remove(ctx, args[0])
		})
	},
}

var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every source is reachable now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSources(func(ctx context.Context, e *env, sdb *importer.SourceDB) error {
			importer.NewChecker(sdb, e.logger, time.Hour).CheckAll(ctx)
			sources, err := sdb.List(ctx)
			if err != nil {
				return err
			}
			printSources(cmd.OutOrStdout(), sources)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd, sourcesAddCmd, sourcesMoveCmd, sourcesRemoveCmd, sourcesCheckCmd)

	sourcesAddCmd.Flags().StringVar(&sourceFormat.Delimiter, "delimiter", sourceFormat.Delimiter, "field delimiter")
	sourcesAddCmd.Flags().StringVar(&sourceFormat.Encoding, "encoding", sourceFormat.Encoding, "file encoding")
	sourcesAddCmd.Flags().BoolVar(&sourceFormat.HasHeader, "header", sourceFormat.HasHeader, "first row is a header")
	sourcesAddCmd.Flags().StringVar(&sourceDescription, "description", "", "free-text description")
}

func withSources(fn func(context.Context, *env, *importer.SourceDB) error) error {
	e, err := setup()
	if err != nil {
		return err
	}
	sdb, err := importer.OpenSourceDB(e.cfg.DBPath)
	if err != nil {
		return err
	}
	defer sdb.Close()
	return fn(context.Background(), e, sdb)
}

func printSources(w io.Writer, sources []importer.Source) {
	if len(sources) == 0 {
		fmt.Fprintln(w, "no sources registered")
		return
	}
	for _, src := range sources {
		status := "never checked"
		if src.LastStatus != nil {
			status = fmt.Sprintf("status %d", *src.LastStatus)
			if src.LastError != nil {
				status += " (" + *src.LastError + ")"
			}
		}
		imported := "never imported"
		if src.LastImport != nil && src.LastRows != nil {
			imported = fmt.Sprintf("%d rows on %s", *src.LastRows, time.Unix(*src.LastImport, 0).Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(w, "%-20s %s\n  %s, %s\n", src.Name, src.URL, status, imported)
	}
}
