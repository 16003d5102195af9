package cmd

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/platform"
	"github.com/discoveraniket/ration-card-processor/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive data entry TUI (same as default)",
	Long: `Start the terminal user interface for ration card data entry.
Browse to a folder of scanned cards, run OCR to pre-fill the form and
save the corrected records to ` + config.DataFileName + `.

Note: This is the same as running the program without any commands.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	// Query the terminal background before bubbletea owns the screen.
	dark := platform.DarkModePreferred()

	model := tui.NewModel(cfg, engine, logger, dark)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running TUI: %v", err)
	}

	return nil
}
