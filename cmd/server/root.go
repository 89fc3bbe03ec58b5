package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "rmfaudit",
		Short: "NIST AI RMF compliance audit service",
		Long: `rmfaudit interviews an auditor category by category, scores the evidence
they submit against baseline expectations and builds a risk assessment from
the completed sessions.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newScoreCmd(),
		newCategoriesCmd(opts),
		newQuestionsCmd(opts),
	)
	return cmd
}
