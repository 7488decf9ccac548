package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/filmreview/models"
)

func newSearchCommand(run runFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Find films on the review site by title",
		Long: `Search looks the query up on the review site and lists matching films
with their year, ready to pass to extract.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return run(cmd, func(ctx context.Context, svc *services) error {
				hits, err := svc.Search(ctx, query)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, models.FilmSearchResponse{Success: true, Query: strings.TrimSpace(query), Results: hits})
				}
				printHits(cmd, hits)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the results as JSON")
	return cmd
}

func printHits(cmd *cobra.Command, hits []models.FilmHit) {
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, "Nessun film trovato")
		return
	}
	for i, h := range hits {
		fmt.Fprintf(out, "%d. %s (%d)\n   %s\n", i+1, h.Title, h.Year, h.URL)
	}
}
