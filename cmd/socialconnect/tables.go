package main

import (
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the effective classification tables as YAML",
	Long: `Print the tables in use (built-in, or merged with tables_file) in the
YAML format accepted by tables_file. Redirect the output to start a
custom table file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		cat, err := e.loadCatalog()
		if err != nil {
			return err
		}
		return cat.WriteYAML(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
