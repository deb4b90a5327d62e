package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amaumene/gallery/pkg/collection"
	"github.com/amaumene/gallery/pkg/config"
	"github.com/amaumene/gallery/pkg/logging"
	"github.com/amaumene/gallery/pkg/models"
	"github.com/amaumene/gallery/pkg/repository"
	"github.com/amaumene/gallery/pkg/schema"
)

var (
	envFile      string
	outputFormat string
)

// app holds everything a subcommand needs once bootstrap succeeded.
type app struct {
	settings *config.Settings
	logger   *log.Logger
	coll     collection.Collection
	schema   *schema.Schema[models.Piece]
	repo     *repository.Repository[models.Piece]
}

var current *app

var rootCmd = &cobra.Command{
	Use:           "gallery",
	Short:         "Store and search art pieces",
	Long:          `Gallery keeps art pieces in a document store and finds them by title or style.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		switch outputFormat {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", outputFormat)
		}
		a, err := bootstrap(cmd.Context(), envFile)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Path to the .env file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
}

func bootstrap(ctx context.Context, envPath string) (*app, error) {
	settings, err := config.Load(envPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.LogLevel, settings.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}

	coll, err := collection.Open(ctx, collection.Options{
		Backend:    settings.Backend,
		BoltPath:   settings.BoltPath(),
		SqlitePath: settings.SqlitePath(),
		URL:        settings.DatabaseURL,
		Database:   settings.Database,
		Collection: settings.Collection,
	})
	if err != nil {
		logger.WithError(err).WithField("backend", settings.Backend).Error("Failed to open collection")
		return nil, err
	}
	logger.WithFields(log.Fields{
		"backend":    settings.Backend,
		"collection": settings.Collection,
	}).Debug("Collection opened")

	s := schema.MustNew[models.Piece]()
	return &app{
		settings: settings,
		logger:   logger,
		coll:     coll,
		schema:   s,
		repo:     repository.New(coll, s, repository.WithLogger(logger)),
	}, nil
}

func requireApp() (*app, error) {
	if current == nil {
		return nil, errors.New("gallery not initialized")
	}
	return current, nil
}

// shutdown closes the collection opened by bootstrap. cobra skips post-run
// hooks when a command fails, so callers run it after Execute.
func shutdown(ctx context.Context) error {
	if current == nil {
		return nil
	}
	a := current
	current = nil
	if err := a.coll.Close(ctx); err != nil {
		a.logger.WithError(err).Error("Failed to close collection")
		return err
	}
	return nil
}
