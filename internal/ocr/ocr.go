// Package ocr defines the contract between the ration card processor
// and its text extraction backends. Engines receive an encoded image
// and return whatever subset of the card fields they could read, plus
// bounding boxes for the text they located. Callers never depend on a
// concrete backend, only on Engine.
package ocr

import "context"

// Field keys used on the wire and as edit targets. The Gemini prompt
// asks for exactly these names and the record store maps them onto
// spreadsheet columns.
const (
	FieldRationCardID = "ration_card_id"
	FieldCardHolder   = "name_of_card_holder"
	FieldGuardian     = "guardian_name"
	FieldHeadOfFamily = "head_of_family"
	FieldAddress      = "address"
)

// FieldKeys returns the extraction keys in canonical order.
func FieldKeys() []string {
	return []string{
		FieldRationCardID,
		FieldCardHolder,
		FieldGuardian,
		FieldHeadOfFamily,
		FieldAddress,
	}
}

// Box locates one extracted field in the source image. Coords are
// [yMin, xMin, yMax, xMax] in the coordinate space the engine reports,
// kept verbatim for the sidecar file.
type Box struct {
	Field  string     `json:"field"`
	Coords [4]float64 `json:"box"`
}

// Input is a single image handed to an engine. Image holds the encoded
// bytes and Format names the encoding ("png", "jpeg").
type Input struct {
	Filename string
	Format   string
	Image    []byte
}

// Result carries the fields an engine managed to read. Fields may hold
// any subset of FieldKeys; a key that is present with an empty value
// means the engine decided the field is blank on the card.
type Result struct {
	Fields map[string]string
	Boxes  []Box
}

// Engine is a text extraction backend.
type Engine interface {
	// Name identifies the backend in logs and the status bar.
	Name() string

	// Recognize extracts the card fields from one image. Errors wrap
	// one of the package sentinels so callers can classify them.
	Recognize(ctx context.Context, in Input) (Result, error)
}
