package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tenderloom/tenderloom/internal/ai"
	cfgpkg "github.com/tenderloom/tenderloom/internal/config"
	"github.com/tenderloom/tenderloom/internal/service"
	"github.com/tenderloom/tenderloom/internal/store"
)

var (
	cfgFile string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tenderloom",
	Short: "tenderloom: generate price quotes from tender documents with a local model",
	Long: `tenderloom ingests appels d'offres and writing-style templates, and drives a
local Ollama model to generate structured price-quote documents from them.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tenderloom/config.yaml)")
}

func loadConfig() {
	// Optional .env next to the working directory, then the regular chain.
	_ = godotenv.Load()
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// app bundles the wired pipeline components for one command invocation.
type app struct {
	cfg       *cfgpkg.Global
	documents *service.DocumentService
	quotes    *service.QuoteService
	backend   *ai.Client
}

// newApp constructs the pipeline from the loaded configuration. Lifecycle is
// owned here, not by the packages themselves.
func newApp() (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := cfgpkg.EnsureDirs(cfg); err != nil {
		return nil, err
	}
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	files, err := store.NewContentStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	docs := store.NewDocumentRepository(db)
	gens := store.NewGenerationRepository(db)
	backend := ai.NewClient(
		cfg.OllamaHost,
		cfg.OllamaModel,
		cfg.Temperature,
		cfg.MaxTokens,
		cfg.ContextWindow,
		time.Duration(cfg.ConnectTimeoutSec)*time.Second,
		time.Duration(cfg.GenerateTimeoutSec)*time.Second,
	)
	documents := service.NewDocumentService(docs, files)
	quotes := service.NewQuoteService(documents, docs, gens, backend, cfg.GeneratedDir, cfg.ContextWindow)
	return &app{cfg: cfg, documents: documents, quotes: quotes, backend: backend}, nil
}
