package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/folder"
	"github.com/discoveraniket/ration-card-processor/internal/imaging"
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
	"github.com/discoveraniket/ration-card-processor/internal/status"
	"github.com/discoveraniket/ration-card-processor/internal/store"
)

var (
	scanFolder string
	scanFile   string
	scanAll    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run OCR over a whole folder without the TUI",
	Long: `Run OCR over every image in a folder and save the extracted fields
to ` + config.DataFileName + `. Images that already carry a ration card
ID are skipped unless --all is set, and --file restricts the run to one
image. Corrections still happen in the TUI; scan only does the
pre-filling pass up front.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFolder, "folder", "f", "", "Folder of card images to process (required)")
	scanCmd.Flags().StringVar(&scanFile, "file", "", "Process a single image from the folder")
	scanCmd.Flags().BoolVarP(&scanAll, "all", "a", false, "Re-run OCR on images that already have data")

	scanCmd.MarkFlagRequired("folder")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	reporter := status.NewLogReporter(logger)

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	fol, err := folder.Open(scanFolder)
	if err != nil {
		return fmt.Errorf("failed to open folder: %w", err)
	}
	set, notice := store.LoadOrCreate(fol.Dir(), fol.Names())
	if notice != nil {
		log.Printf("Warning: existing data could not be fully read: %v", notice)
	}

	names := fol.Names()
	if scanFile != "" {
		if _, ok := set.Get(scanFile); !ok {
			return fmt.Errorf("no image named %q in %s", scanFile, scanFolder)
		}
		// A file named explicitly is always processed, data or not.
		names = []string{scanFile}
		scanAll = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	processed := 0
	skipped := 0
	failed := 0
	for _, name := range names {
		if ctx.Err() != nil {
			log.Printf("Interrupted after %d images, saving what we have...", processed)
			break
		}

		rec, ok := set.Get(name)
		if !ok {
			continue
		}
		if !scanAll && rec.HasCardData() {
			skipped++
			continue
		}

		reporter.Report(status.Event{Kind: status.KindOCRStarted, Message: "Running " + engine.Name() + " on " + name})
		res, err := recognizeFile(ctx, cfg, engine, name, fol.Path(name))
		if err != nil {
			failed++
			_ = set.MarkOCRFailed(name)
			reporter.Report(status.Event{Kind: status.KindError, Message: "OCR failed for " + name, Err: err})
			continue
		}
		if err := set.ApplyOCR(name, res.Fields, res.Boxes); err != nil {
			failed++
			reporter.Report(status.Event{Kind: status.KindError, Message: "Result dropped for " + name, Err: err})
			continue
		}
		processed++
		reporter.Report(status.Event{
			Kind:    status.KindOCRDone,
			Message: fmt.Sprintf("OCR complete for %s (%d fields)", name, len(res.Fields)),
		})

		if processed%25 == 0 {
			if err := set.Save(); err != nil {
				return fmt.Errorf("failed to save: %w", err)
			}
			reporter.Report(status.Event{Kind: status.KindSaved, Message: fmt.Sprintf("Saved after %d images", processed)})
		}
	}

	if err := set.Save(); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	log.Printf("Done: %d processed, %d skipped, %d failed out of %d images", processed, skipped, failed, len(names))
	return nil
}

// recognizeFile is the scan-side twin of the TUI's OCR command: decode,
// re-encode within the payload cap, one bounded API call.
func recognizeFile(ctx context.Context, cfg *config.Config, engine ocr.Engine, name, path string) (ocr.Result, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("%w: %v", ocr.ErrUnrecognizedFormat, err)
	}
	payload, err := imaging.EncodePNG(img, cfg.MaxImageBytes)
	if err != nil {
		return ocr.Result{}, err
	}

	rctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	return engine.Recognize(rctx, ocr.Input{Filename: name, Format: "png", Image: payload})
}
