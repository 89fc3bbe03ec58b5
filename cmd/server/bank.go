package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rmfaudit/internal/category"
	"rmfaudit/internal/platform/config"
	"rmfaudit/internal/platform/postgres"
	"rmfaudit/internal/questionbank"
	qbfile "rmfaudit/internal/questionbank/store/file"
	qbpostgres "rmfaudit/internal/questionbank/store/postgres"
)

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List audit categories and their question counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bank, closeBank, err := openConfiguredSource(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeBank()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tQUESTIONS")
			for _, c := range category.All() {
				qs, err := bank.LoadQuestions(cmd.Context(), c)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\n", c, len(qs))
			}
			return tw.Flush()
		},
	}
}

func newQuestionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect or import the question bank",
	}
	cmd.AddCommand(newQuestionsListCmd(opts), newQuestionsImportCmd(opts))
	return cmd
}

func newQuestionsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <category>",
		Short: "Print the questions of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := category.Parse(args[0])
			if err != nil {
				return err
			}
			bank, closeBank, err := openConfiguredSource(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeBank()

			qs, err := bank.LoadQuestions(cmd.Context(), c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, q := range qs {
				fmt.Fprintf(out, "%d. [%s] %s\n   baseline: %s\n", i+1, q.ID, q.SubQuestion, q.BaselineEvidence)
			}
			return nil
		},
	}
}

func newQuestionsImportCmd(opts *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a YAML bank into Postgres, replacing the listed categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("questions import requires postgres.url")
			}
			src, err := qbfile.Load(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := postgres.New(ctx, cfg.Postgres, qbpostgres.Schema)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := qbpostgres.New(pool)
			for _, c := range src.Categories() {
				qs, _ := src.LoadQuestions(ctx, c)
				if err := store.Replace(ctx, c, qs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d questions for %s\n", len(qs), c)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "YAML bank to import (default: the embedded bank)")
	return cmd
}

// openConfiguredSource opens the configured question source directly, without
// cache or breaker.
func openConfiguredSource(ctx context.Context, opts *rootOptions) (questionbank.Bank, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.QuestionBank.Source != config.SourcePostgres {
		bank, err := openSource(cfg.QuestionBank, nil)
		return bank, func() {}, err
	}
	pool, err := postgres.New(ctx, cfg.Postgres, qbpostgres.Schema)
	if err != nil {
		return nil, nil, err
	}
	bank, err := openSource(cfg.QuestionBank, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return bank, pool.Close, nil
}
