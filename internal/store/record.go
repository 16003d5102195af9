package store

import (
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
)

// Spreadsheet column headers in persisted order. Keep in sync with the
// csv tags on Record. image_name keys the row; Notes belongs to the
// operator and is never written by extraction.
var Columns = []string{
	"image_name",
	"Ration Card ID",
	"Name of Card Holder",
	"Guardian's Name",
	"Head of Family",
	"Village",
	"Notes",
}

// FieldNotes extends the extraction keys with the operator-only column.
const FieldNotes = "notes"

// EditableFields returns every key ApplyEdit accepts, in form order.
func EditableFields() []string {
	return append(ocr.FieldKeys(), FieldNotes)
}

// OCRStatus tracks extraction attempts within the current session. It
// is not persisted; reopening a folder starts from OCRNone.
type OCRStatus int

const (
	OCRNone OCRStatus = iota
	OCRFailed
	OCRDone
)

func (s OCRStatus) String() string {
	switch s {
	case OCRFailed:
		return "failed"
	case OCRDone:
		return "done"
	default:
		return "none"
	}
}

// Record is one row of the spreadsheet plus its bounding boxes and
// session state. Mutate records through the RecordSet methods so dirty
// tracking stays accurate.
type Record struct {
	ImageName    string `csv:"image_name"`
	RationCardID string `csv:"Ration Card ID"`
	CardHolder   string `csv:"Name of Card Holder"`
	Guardian     string `csv:"Guardian's Name"`
	HeadOfFamily string `csv:"Head of Family"`
	Village      string `csv:"Village"`
	Notes        string `csv:"Notes"`

	Boxes     []ocr.Box `csv:"-"`
	Dirty     bool      `csv:"-"`
	OCRStatus OCRStatus `csv:"-"`
}

// Field returns the value behind an edit key.
func (r *Record) Field(key string) (string, bool) {
	switch key {
	case ocr.FieldRationCardID:
		return r.RationCardID, true
	case ocr.FieldCardHolder:
		return r.CardHolder, true
	case ocr.FieldGuardian:
		return r.Guardian, true
	case ocr.FieldHeadOfFamily:
		return r.HeadOfFamily, true
	case ocr.FieldAddress:
		return r.Village, true
	case FieldNotes:
		return r.Notes, true
	}
	return "", false
}

// HasCardData reports whether any extraction-backed field is filled.
// The batch command uses it to skip cards processed on a previous run.
func (r *Record) HasCardData() bool {
	return r.RationCardID != "" || r.CardHolder != "" || r.Guardian != "" ||
		r.HeadOfFamily != "" || r.Village != ""
}

func (r *Record) setField(key, value string) bool {
	switch key {
	case ocr.FieldRationCardID:
		r.RationCardID = value
	case ocr.FieldCardHolder:
		r.CardHolder = value
	case ocr.FieldGuardian:
		r.Guardian = value
	case ocr.FieldHeadOfFamily:
		r.HeadOfFamily = value
	case ocr.FieldAddress:
		r.Village = value
	case FieldNotes:
		r.Notes = value
	default:
		return false
	}
	return true
}
