package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/use-agent/filmreview/app"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/models"
)

// services are what the commands run against.
type services struct {
	Extract func(ctx context.Context, req *models.ExtractionRequest) *models.ExtractionResult
	Multi   func(ctx context.Context, title string, year int, sources []string) (*models.MultiSourceResponse, error)
	Search  func(ctx context.Context, query string) ([]models.FilmHit, error)
	Close   func() error
}

type servicesFunc func(cfg *config.Config) *services

func newServices(cfg *config.Config) *services {
	a := app.New(cfg)
	return &services{
		Extract: a.Extractor.Extract,
		Multi:   a.Collector.ExtractMultiSource,
		Search:  a.Extractor.SearchFilms,
		Close:   a.Close,
	}
}

func newRootCommand(build servicesFunc) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "filmreview",
		Short:         "Extract Italian film reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	// run loads configuration, wires the services and runs fn with a
	// context cancelled on SIGINT or SIGTERM.
	run := func(cmd *cobra.Command, fn func(ctx context.Context, svc *services) error) error {
		cfg := config.Load()
		logCfg := config.LogConfig{Level: "error", Format: "text"}
		if verbose {
			logCfg.Level = "debug"
		}
		app.InitLogger(logCfg, cmd.ErrOrStderr())

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc := build(cfg)
		defer func() {
			if svc.Close != nil {
				_ = svc.Close()
			}
		}()
		return fn(ctx, svc)
	}

	rootCmd.AddCommand(newExtractCommand(run))
	rootCmd.AddCommand(newMultiCommand(run))
	rootCmd.AddCommand(newSearchCommand(run))
	return rootCmd
}

type runFunc func(cmd *cobra.Command, fn func(ctx context.Context, svc *services) error) error
