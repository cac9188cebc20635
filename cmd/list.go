package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tenderloom/tenderloom/internal/store"
)

var (
	listType      string
	listTemplates bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents by type",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		docType := store.DocumentType(listType)
		if !docType.Valid() {
			return fmt.Errorf("invalid --type %q", listType)
		}
		var isTemplate *bool
		if cmd.Flags().Changed("templates") {
			isTemplate = &listTemplates
		}
		docs, err := app.documents.ListByType(cmd.Context(), docType, isTemplate)
		if err != nil {
			return err
		}
		printDocuments(docs)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search documents by title, reference or content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		docs, err := app.documents.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printDocuments(docs)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its backing file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid document id %q", args[0])
		}
		if err := app.documents.Delete(cmd.Context(), uint(id)); err != nil {
			return err
		}
		fmt.Printf("✓ Document %d deleted\n", id)
		return nil
	},
}

func printDocuments(docs []store.Document) {
	if len(docs) == 0 {
		fmt.Println("No documents.")
		return
	}
	for _, d := range docs {
		template := ""
		if d.IsTemplate {
			template = " [template]"
		}
		fmt.Printf("%4d  %-12s  %-20s  %s%s\n", d.ID, d.DocumentType, d.Reference, d.Title, template)
	}
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", string(store.TypeTender), "document type: appel_offre, offre_prix, generated")
	listCmd.Flags().BoolVar(&listTemplates, "templates", false, "filter by template flag")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(deleteCmd)
}
