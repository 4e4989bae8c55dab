package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hazyhaar/socialconnect-core/pkg/analysis"
	"github.com/spf13/cobra"
)

var (
	analyzeService string
	analyzeDryRun  bool
	analyzeWorkers int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Detect problématiques and actions in every stored case record",
	Long: `Run the keyword tagger over the notes of every stored user and record
the new problématiques and actions it finds.

Example:
  socialconnect analyze --dry-run
  socialconnect analyze --service mediation-locale --workers 8`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeService, "service", "", "only analyze users of this service")
	analyzeCmd.Flags().BoolVar(&analyzeDryRun, "dry-run", false, "report detections without writing them")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "detection workers (default: config workers, then GOMAXPROCS)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	reg, err := e.loadRegistry()
	if err != nil {
		return err
	}

	workers := analyzeWorkers
	if workers <= 0 {
		workers = e.cfg.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	an := analysis.New(st, reg, analysis.WithLogger(e.logger), analysis.WithWorkers(workers))
	rep, err := an.Run(ctx, analysis.Options{ServiceID: analyzeService, DryRun: analyzeDryRun})
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), rep)
	return nil
}

func printReport(w io.Writer, rep *analysis.Report) {
	for _, u := range rep.Users {
		name := strings.TrimSpace(u.Nom + " " + u.Prenom)
		if name == "" {
			name = u.UserID
		}
		fmt.Fprintf(w, "%s\n", name)
		for _, p := range u.NewProblematiques {
			fmt.Fprintf(w, "  + problématique %-22s (%s)\n", p.Type, p.Keyword)
		}
		for _, a := range u.NewActions {
			fmt.Fprintf(w, "  + action        %-22s (%s)\n", a.Type, a.Keyword)
		}
	}

	if len(rep.Users) > 0 {
		fmt.Fprintln(w)
	}
	mode := ""
	if rep.DryRun {
		mode = " (dry run, nothing written)"
	}
	fmt.Fprintf(w, "Users analyzed:        %d\n", rep.Analyzed)
	fmt.Fprintf(w, "Users modified:        %d%s\n", rep.Modified, mode)
	fmt.Fprintf(w, "New problématiques:    %d\n", rep.NewProblematiques)
	fmt.Fprintf(w, "New actions:           %d\n", rep.NewActions)
}
