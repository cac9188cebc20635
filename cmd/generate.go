package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tenderloom/tenderloom/internal/service"
	"github.com/tenderloom/tenderloom/internal/utils"
)

var (
	generateTemplates []uint
	generateContext   string
	generateNoStream  bool
	historyJSON       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <tender-id>",
	Short: "Analyze a tender and print the key points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if generateNoStream {
			analysis, err := app.quotes.AnalyzeTender(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Println(analysis.Analysis)
			return nil
		}
		err = app.quotes.AnalyzeTenderStream(cmd.Context(), id, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
		return err
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <tender-id>",
	Short: "Generate a price quote document from a tender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if generateNoStream {
			doc, err := app.quotes.GenerateQuote(cmd.Context(), id, generateTemplates, generateContext)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Quote generated: document %d (%s)\n", doc.ID, doc.OriginalFilename)
			return nil
		}
		err = app.quotes.GenerateQuoteStream(cmd.Context(), id, generateTemplates, generateContext, func(ev service.Event) {
			switch ev.Status {
			case service.EventGenerating:
				fmt.Print(ev.Chunk)
			case service.EventCompleted:
				fmt.Printf("\n✓ Quote generated in %ds: document %d (%s)\n", ev.Seconds, ev.Document.ID, ev.Document.OriginalFilename)
			}
		})
		if err != nil {
			fmt.Fprintln(os.Stderr)
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [tender-id]",
	Short: "Show past generations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		var sourceID *uint
		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sourceID = &id
		}
		entries, err := app.quotes.History(cmd.Context(), sourceID)
		if err != nil {
			return err
		}
		if historyJSON {
			b, err := utils.PrettyJSON(entries)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		if len(entries) == 0 {
			fmt.Println("No generations yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%4d  %s  %-30s -> %-30s  %s  %ds\n",
				e.Record.ID,
				e.Record.CreatedAt.Format("2006-01-02 15:04"),
				e.SourceTitle,
				e.GeneratedTitle,
				e.Record.ModelUsed,
				e.Record.GenerationTime)
		}
		return nil
	},
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return uint(id), nil
}

func init() {
	analyzeCmd.Flags().BoolVar(&generateNoStream, "no-stream", false, "wait for the whole result instead of streaming")
	generateCmd.Flags().UintSliceVar(&generateTemplates, "template", nil, "template document ids (all templates when omitted)")
	generateCmd.Flags().StringVar(&generateContext, "context", "", "additional free-text context for the prompt")
	generateCmd.Flags().BoolVar(&generateNoStream, "no-stream", false, "wait for the whole result instead of streaming")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print history as JSON")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
}
