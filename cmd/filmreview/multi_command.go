package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/use-agent/filmreview/models"
)

func newMultiCommand(run runFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "multi <title> <year> [source...]",
		Short: "Collect reviews of a film from several Italian outlets",
		Long: `Multi collects candidate reviews from article URLs or review hosts.
Bare hosts are resolved through search and need EXA_API_KEY. Without
sources the configured default hosts are used.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[1])
			if err != nil {
				return err
			}
			title, sources := args[0], args[2:]
			return run(cmd, func(ctx context.Context, svc *services) error {
				resp, err := svc.Multi(ctx, title, year, sources)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				printMulti(cmd, resp)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printMulti(cmd *cobra.Command, resp *models.MultiSourceResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d): %d recensioni, %d fonti fallite, %d ms\n",
		resp.Title, resp.Year, len(resp.Candidates), len(resp.Failures), resp.TimingMs)
	for i, c := range resp.Candidates {
		fmt.Fprintf(out, "\n%d. [%.2f] %s\n   %s\n   %s\n", i+1, c.Confidence, c.SourceHost, c.Title, c.URL)
	}
	if len(resp.Failures) > 0 {
		fmt.Fprintln(out)
		for _, f := range resp.Failures {
			fmt.Fprintf(out, "- %s: %s\n", f.Source, f.Reason)
		}
	}
}
