package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tenderloom/tenderloom/internal/service"
	"github.com/tenderloom/tenderloom/internal/store"
)

var (
	uploadType        string
	uploadReference   string
	uploadTitle       string
	uploadDescription string
	uploadIsTemplate  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Ingest a tender or writing-model document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		if max := int64(app.cfg.MaxFileSizeMB) * 1024 * 1024; int64(len(content)) > max {
			return fmt.Errorf("file exceeds %d MB limit", app.cfg.MaxFileSizeMB)
		}
		docType := store.DocumentType(uploadType)
		if !docType.Valid() {
			return fmt.Errorf("invalid --type %q (appel_offre, offre_prix, generated)", uploadType)
		}
		doc, err := app.documents.Upload(cmd.Context(), service.UploadInput{
			Content:     content,
			Filename:    filepath.Base(path),
			Type:        docType,
			Reference:   uploadReference,
			Title:       uploadTitle,
			Description: uploadDescription,
			IsTemplate:  uploadIsTemplate,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Document %d stored (%s, ref %s)\n", doc.ID, doc.OriginalFilename, doc.Reference)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadType, "type", string(store.TypeTender), "document type: appel_offre, offre_prix")
	uploadCmd.Flags().StringVar(&uploadReference, "reference", "", "reference code (detected from text when omitted)")
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "document title")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "free-text description")
	uploadCmd.Flags().BoolVar(&uploadIsTemplate, "template", false, "mark as a writing model")
	rootCmd.AddCommand(uploadCmd)
}
