package main

import (
	"strings"

	"github.com/hazyhaar/socialconnect-core/pkg/tagger"
	"github.com/spf13/cobra"
)

var (
	detectExistingP []string
	detectExistingA []string
)

var detectCmd = &cobra.Command{
	Use:   "detect <notes...>",
	Short: "Detect problématiques and actions in a piece of text",
	Example: `  socialconnect detect "Appel au CPAS, dossier clôturé"
  socialconnect detect --existing-problematiques CPAS "Dossier CPAS et loyer impayé"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		reg, err := e.loadRegistry()
		if err != nil {
			return err
		}
		notes := strings.Join(args, " ")
		tg := reg.Tagger()
		return printJSON(cmd.OutOrStdout(), struct {
			Problematiques []tagger.Problematique `json:"problematiques"`
			Actions        []tagger.Action        `json:"actions"`
		}{
			Problematiques: tg.DetectProblematiques(notes, detectExistingP),
			Actions:        tg.DetectActions(notes, detectExistingA),
		})
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringSliceVar(&detectExistingP, "existing-problematiques", nil, "problématique types already on file")
	detectCmd.Flags().StringSliceVar(&detectExistingA, "existing-actions", nil, "action types already on file")
}
