package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rmfaudit/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	var (
		baseline     string
		evidenceFile string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "score [evidence text]",
		Short: "Score evidence against a baseline without starting a session",
		Long: `Scores one piece of evidence with the same scorer the interview uses.
Evidence comes from the argument, --file, or stdin when neither is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(baseline) == "" {
				return errors.New("--baseline is required")
			}
			evidence, err := readEvidence(cmd.InOrStdin(), args, evidenceFile)
			if err != nil {
				return err
			}

			res := scoring.New().Score(evidence, baseline)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(out, "Conformity:    %s\n", res.Conformity)
			fmt.Fprintf(out, "Score:         %.2f\n", res.Score)
			fmt.Fprintf(out, "Justification: %s\n", res.Justification)
			if len(res.MatchedTerms) > 0 {
				fmt.Fprintf(out, "Matched terms: %s\n", strings.Join(res.MatchedTerms, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&baseline, "baseline", "b", "", "baseline evidence the answer is compared with")
	cmd.Flags().StringVarP(&evidenceFile, "file", "f", "", "read evidence from a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func readEvidence(stdin io.Reader, args []string, path string) (string, error) {
	switch {
	case len(args) == 1 && path != "":
		return "", errors.New("pass evidence as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read evidence: %w", err)
		}
		return string(raw), nil
	default:
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read evidence from stdin: %w", err)
		}
		return string(raw), nil
	}
}
