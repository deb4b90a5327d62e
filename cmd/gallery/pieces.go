package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amaumene/gallery/pkg/models"
)

var newPiece models.Piece

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a piece",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find pieces by title or style",
}

var findTitleCmd = &cobra.Command{
	Use:   "title [text]",
	Short: "Find pieces whose title contains text, ignoring case",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFindTitle,
}

var findStyleCmd = &cobra.Command{
	Use:   "style [style]",
	Short: "Find pieces of a style (lower, capitalized or upper case)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFindStyle,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every valid piece",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every document in the collection",
	Args:  cobra.NoArgs,
	RunE:  runPurge,
}

func init() {
	addCmd.Flags().StringVar(&newPiece.Title, "title", "", "Title of the piece (required)")
	addCmd.Flags().StringVar(&newPiece.Style, "style", "", "Style of the piece (required)")
	addCmd.Flags().StringVar(&newPiece.Artist, "artist", "", "Artist")
	addCmd.Flags().IntVar(&newPiece.Year, "year", 0, "Year of creation")
	addCmd.Flags().StringVar(&newPiece.URL, "url", "", "Page describing the piece")
	addCmd.Flags().StringVar(&newPiece.ImageURL, "image-url", "", "Image of the piece")

	findCmd.AddCommand(findTitleCmd)
	findCmd.AddCommand(findStyleCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(purgeCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	// check the flags the same way stored documents are checked
	doc, err := a.schema.Dump(newPiece)
	if err != nil {
		return err
	}
	piece, err := a.schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("invalid piece: %w", err)
	}

	if err := a.repo.Insert(cmd.Context(), piece); err != nil {
		return fmt.Errorf("failed to add piece: %w", err)
	}
	a.logger.WithField("title", piece.Title).Info("Piece added")
	return nil
}

func runFindTitle(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	title := strings.Join(args, "")
	pieces, err := a.repo.FindByTitle(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("failed to find pieces: %w", err)
	}
	return renderPieces(cmd.OutOrStdout(), a.schema, pieces)
}

func runFindStyle(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	pieces, err := a.repo.FindByStyle(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to find pieces: %w", err)
	}
	return renderPieces(cmd.OutOrStdout(), a.schema, pieces)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	pieces, err := a.repo.FindAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list pieces: %w", err)
	}
	return renderPieces(cmd.OutOrStdout(), a.schema, pieces)
}

func runPurge(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	if err := a.repo.DeleteAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to purge collection: %w", err)
	}
	a.logger.WithField("collection", a.settings.Collection).Info("Collection purged")
	return nil
}
