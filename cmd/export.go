package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/folder"
	"github.com/discoveraniket/ration-card-processor/internal/store"
)

var (
	exportFolder string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved records to CSV",
	Long:  `Export the records saved in a folder's ` + config.DataFileName + ` to a CSV file.`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFolder, "folder", "f", "", "Folder whose records to export (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "data.csv", "Destination CSV file")

	exportCmd.MarkFlagRequired("folder")
}

func runExport(cmd *cobra.Command, args []string) error {
	fol, err := folder.Open(exportFolder)
	if err != nil {
		return fmt.Errorf("failed to open folder: %w", err)
	}
	set, notice := store.LoadOrCreate(fol.Dir(), fol.Names())
	if notice != nil {
		log.Printf("Warning: existing data could not be fully read: %v", notice)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	defer f.Close()

	if err := set.ExportCSV(f); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	log.Printf("Exported %d records to %s", set.Len(), exportOut)
	return nil
}
