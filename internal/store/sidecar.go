package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/discoveraniket/ration-card-processor/internal/ocr"
)

// readSidecar loads the bounding-box file, a JSON object keyed by image
// filename. Malformed JSON wraps ErrCorruptData.
func readSidecar(path string) (map[string][]ocr.Box, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string][]ocr.Box
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return out, nil
}

// writeSidecar swaps a pretty-printed sidecar over path. Keys come out
// sorted, which keeps diffs between saves readable.
func writeSidecar(path string, boxes map[string][]ocr.Box) error {
	data, err := json.MarshalIndent(boxes, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return replaceFile(path, func(tmp string) error {
		return os.WriteFile(tmp, data, 0o644)
	})
}
