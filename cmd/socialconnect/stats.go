package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hazyhaar/socialconnect-core/pkg/sector"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
	"github.com/spf13/cobra"
)

var (
	statsAnnee   int
	statsService string
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count stored users per sector",
	Args:  cobra.NoArgs,
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
		reg, err := e.loadRegistry()
		if err != nil {
			return err
		}

		recs, err := st.SectorRecords(context.Background(), store.Filter{ServiceID: statsService, Annee: statsAnnee})
		if err != nil {
			return err
		}
		stats := sector.CountBySector(reg.Sectors(), recs)
		if statsJSON {
			return printJSON(cmd.OutOrStdout(), stats)
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsAnnee, "annee", 0, "only count users of this year")
	statsCmd.Flags().StringVar(&statsService, "service", "", "only count users of this service")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON instead of a table")
}

func printStats(w io.Writer, stats []sector.Stat) {
	total := 0
	for _, s := range stats {
		fmt.Fprintf(w, "%-20s %6d\n", s.Name, s.Value)
		total += s.Value
	}
	fmt.Fprintf(w, "%-20s %6d\n", "Total", total)
}
