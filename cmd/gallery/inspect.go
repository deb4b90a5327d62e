package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show every stored document with its validation issues",
	Long: `Inspect lists the raw documents in the collection, including the ones
that find and list skip because they do not match the piece schema.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	inspections, err := a.repo.Inspect(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to inspect collection: %w", err)
	}

	invalid := 0
	for _, ins := range inspections {
		if !ins.Valid() {
			invalid++
		}
	}
	a.logger.WithField("documents", len(inspections)).WithField("invalid", invalid).Debug("Collection inspected")
	return writeInspections(cmd.OutOrStdout(), outputFormat, inspections)
}
