package cmd

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
	"github.com/discoveraniket/ration-card-processor/internal/ocr/gemini"
	"github.com/discoveraniket/ration-card-processor/internal/ocr/tesseract"
)

var (
	modelName  string
	engineName string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "rcp",
	Short: "A TUI tool for digitizing scanned ration cards",
	Long: `Ration Card Processor is a terminal tool that browses folders of
scanned ration cards, pre-fills a data entry form with OCR and saves the
corrected records to a spreadsheet kept next to the images.`,
	RunE: runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "Gemini model to use (default "+config.DefaultModel+")")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "OCR engine: gemini or tesseract")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write a debug log")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}
}

// buildConfig layers flags over the environment and validates the result.
func buildConfig() (*config.Config, error) {
	cfg := config.Load()
	if modelName != "" {
		cfg.Model = modelName
	}
	if engineName != "" {
		cfg.Engine = engineName
	}
	if debugMode {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLogger returns the diagnostics logger for the TUI. Output goes to
// a file so it never fights the terminal; without --debug it is dropped.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if !cfg.Debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	path := cfg.LogFile
	if path == "" {
		path = "rcp.log"
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func buildEngine(cfg *config.Config, logger *slog.Logger) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineGemini:
		return gemini.New(cfg, gemini.WithLogger(logger)), nil
	case config.EngineTesseract:
		return tesseract.New(), nil
	}
	return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
}
