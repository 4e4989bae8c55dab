package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/hazyhaar/socialconnect-core/pkg/sector"
	"github.com/spf13/cobra"
)

var classifySector string

var classifyCmd = &cobra.Command{
	Use:   "classify <address...>",
	Short: "Resolve the sector of one address",
	Example: `  socialconnect classify "Chaussée de Mons 500"
  socialconnect classify Rue Bara 12 --sector Parc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		reg, err := e.loadRegistry()
		if err != nil {
			return err
		}
		res := reg.Sectors().Classify(sector.Record{
			ExplicitSector: classifySector,
			AddressStreet:  strings.Join(args, " "),
		})
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifySector, "sector", "", "sector already recorded on the file")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
