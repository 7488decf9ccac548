package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/filmreview/models"
)

func newExtractCommand(run runFunc) *cobra.Command {
	var asJSON bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "extract <title> <year>",
		Short: "Extract the MYmovies review of a film",
		Example: `  filmreview extract "Oppenheimer" 2023
  filmreview extract "La grande bellezza" 2013 --json --no-save`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[1])
			if err != nil {
				return err
			}
			req := &models.ExtractionRequest{
				Title:   args[0],
				Year:    year,
				Options: models.ExtractionOptions{SkipPersist: noSave},
			}
			return run(cmd, func(ctx context.Context, svc *services) error {
				result := svc.Extract(ctx, req)
				if asJSON {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
				} else {
					printResult(cmd, result)
				}
				if !result.Success {
					return fmt.Errorf("extraction failed: %s", result.ErrorCode)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the review file")
	return cmd
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return year, nil
}

func printResult(cmd *cobra.Command, r *models.ExtractionResult) {
	out := cmd.OutOrStdout()
	if !r.Success {
		msg := ""
		if r.Error != nil {
			msg = *r.Error
		}
		fmt.Fprintf(out, "ERRORE [%s]: %s\n", r.ErrorCode, msg)
		if r.URL != "" {
			fmt.Fprintf(out, "URL: %s\n", r.URL)
		}
		return
	}

	fmt.Fprintf(out, "Titolo: %s\n", deref(r.Review.Title))
	fmt.Fprintf(out, "Autore: %s\n", deref(r.Review.Author))
	fmt.Fprintf(out, "Data: %s\n", deref(r.Review.Date))
	fmt.Fprintf(out, "URL: %s\n", r.URL)
	fmt.Fprintf(out, "Metodo: %s, %d caratteri, %d parole, %d ms\n",
		r.Metadata.ExtractionMethod, r.Metadata.ContentLength, r.Metadata.WordCount, r.Metadata.ProcessingTimeMs)
	if r.SavedPath != "" {
		fmt.Fprintf(out, "Salvata in: %s\n", r.SavedPath)
	}
	fmt.Fprintf(out, "\n%s\n", r.Review.Content)
}

func deref(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}
