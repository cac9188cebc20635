package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the Ollama backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if app.backend.CheckAvailability(cmd.Context()) {
			fmt.Printf("✓ Ollama reachable at %s (model %s)\n", app.cfg.OllamaHost, app.cfg.OllamaModel)
			return nil
		}
		fmt.Printf("✗ Ollama not reachable at %s\n", app.cfg.OllamaHost)
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		names := app.backend.ListModels(cmd.Context())
		if len(names) == 0 {
			fmt.Println("No models found (backend down or empty).")
			return nil
		}
		for _, name := range names {
			marker := " "
			if name == app.cfg.OllamaModel {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(modelsCmd)
}
