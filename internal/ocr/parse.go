package ocr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// fieldPayload is the per-field object the extraction prompt asks the
// model to emit.
type fieldPayload struct {
	Value       string    `json:"value"`
	BoundingBox []float64 `json:"bounding_box"`
}

// ParseResponse decodes the JSON document described by the extraction
// prompt into a Result. Keys outside the known field set are ignored,
// bounding boxes are kept only when they carry all four coordinates.
// A document that is not valid JSON, or that contains none of the
// expected keys, wraps ErrUnrecognizedFormat.
func ParseResponse(raw []byte) (Result, error) {
	var payload map[string]fieldPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}

	res := Result{Fields: make(map[string]string)}
	for _, key := range FieldKeys() {
		p, ok := payload[key]
		if !ok {
			continue
		}
		res.Fields[key] = strings.TrimSpace(p.Value)
		if len(p.BoundingBox) == 4 {
			var coords [4]float64
			copy(coords[:], p.BoundingBox)
			res.Boxes = append(res.Boxes, Box{Field: key, Coords: coords})
		}
	}
	if len(res.Fields) == 0 {
		return Result{}, fmt.Errorf("%w: response carries none of the expected fields", ErrUnrecognizedFormat)
	}
	return res, nil
}
