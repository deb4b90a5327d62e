package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amaumene/gallery/pkg/models"
	"github.com/amaumene/gallery/pkg/schema"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import pieces from a YAML or JSON file",
	Long: `Import reads a list of pieces from a YAML or JSON file and inserts at most
MAX_PIECES of them, waiting SCRAPE_DELAY between inserts. Entries that do not
match the piece schema are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// importReport summarizes an import run.
type importReport struct {
	Inserted int
	Skipped  int
	Dropped  int
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}
	entries, err := parseEntries(data)
	if err != nil {
		return err
	}

	pieces, report := preparePieces(a.schema, entries, a.settings.MaxPieces, a.logger)
	for n, p := range pieces {
		if n > 0 {
			if err := sleepCtx(cmd.Context(), a.settings.ScrapeDelay); err != nil {
				return err
			}
		}
		if err := a.repo.Insert(cmd.Context(), p); err != nil {
			return fmt.Errorf("failed to insert %q: %w", p.Title, err)
		}
		report.Inserted++
	}

	a.logger.WithFields(log.Fields{
		"inserted": report.Inserted,
		"skipped":  report.Skipped,
		"dropped":  report.Dropped,
	}).Info("Import finished")
	return nil
}

// parseEntries decodes a list of documents. JSON is a subset of YAML, so
// one decoder serves both.
func parseEntries(data []byte) ([]map[string]any, error) {
	var entries []map[string]any
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return entries, nil
}

// preparePieces validates entries in order and keeps at most limit of the
// valid ones.
func preparePieces(s *schema.Schema[models.Piece], entries []map[string]any, limit int, logger log.FieldLogger) ([]models.Piece, importReport) {
	var (
		pieces []models.Piece
		report importReport
	)
	for n, entry := range entries {
		p, err := s.Validate(entry)
		if err != nil {
			report.Skipped++
			logger.WithError(err).WithField("entry", n).Warn("Skipping invalid entry")
			continue
		}
		if len(pieces) >= limit {
			report.Dropped++
			continue
		}
		pieces = append(pieces, p)
	}
	if report.Dropped > 0 {
		logger.WithField("limit", limit).WithField("dropped", report.Dropped).Warn("Import limit reached")
	}
	return pieces, report
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
