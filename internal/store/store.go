// Package store keeps the per-folder data entry state: one record per
// image, loaded from and saved to a spreadsheet plus a bounding-box
// sidecar sitting next to the images. All mutation happens through
// RecordSet methods on the interactive loop; the package does no
// locking of its own.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
)

// ErrCorruptData marks a persisted artifact that exists but cannot be
// parsed. LoadOrCreate reports it as a notice and continues with blank
// records, so one bad file never blocks a data entry session.
var ErrCorruptData = errors.New("corrupt persisted data")

// RecordSet holds the records for one folder, keyed by image filename
// and ordered by filename for persistence.
type RecordSet struct {
	dir     string
	order   []string
	records map[string]*Record
}

// LoadOrCreate reads the folder's artifacts and reconciles them with
// the images actually present: names without a row get a blank record,
// rows without an image are pruned. The returned RecordSet is always
// usable; a non-nil error wrapping ErrCorruptData is a notice that one
// or both artifacts were unreadable and extraction starts fresh.
func LoadOrCreate(dir string, names []string) (*RecordSet, error) {
	rs := &RecordSet{dir: dir, records: make(map[string]*Record)}

	var tabNotice, sideNotice error

	dataPath := filepath.Join(dir, config.DataFileName)
	if _, err := os.Stat(dataPath); err == nil {
		recs, err := readTabular(dataPath)
		if err != nil {
			tabNotice = fmt.Errorf("%s: %w", config.DataFileName, err)
		} else {
			rs.records = recs
		}
	}

	sidecarPath := filepath.Join(dir, config.SidecarFileName)
	if _, err := os.Stat(sidecarPath); err == nil {
		boxes, err := readSidecar(sidecarPath)
		if err != nil {
			sideNotice = fmt.Errorf("%s: %w", config.SidecarFileName, err)
		} else {
			// A sidecar entry without a row still yields a record, with
			// empty fields; reconcile prunes it if the image is gone.
			for name, bx := range boxes {
				rec, ok := rs.records[name]
				if !ok {
					rec = &Record{ImageName: name}
					rs.records[name] = rec
				}
				rec.Boxes = bx
			}
		}
	}

	rs.reconcile(names)
	return rs, errors.Join(tabNotice, sideNotice)
}

// reconcile aligns the record map with the filenames on disk. It sets
// no dirty flags; loading alone never creates something to save.
func (rs *RecordSet) reconcile(names []string) {
	keep := make(map[string]*Record, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		rec, ok := rs.records[name]
		if !ok {
			rec = &Record{ImageName: name}
		}
		keep[name] = rec
		order = append(order, name)
	}
	sort.Strings(order)
	rs.records = keep
	rs.order = order
}

// Len returns the number of records.
func (rs *RecordSet) Len() int { return len(rs.order) }

// Names returns the record filenames in persisted order.
func (rs *RecordSet) Names() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

// Get returns the record for an image filename. Treat the result as
// read-only; mutate through ApplyOCR, ApplyEdit and Rename.
func (rs *RecordSet) Get(name string) (*Record, bool) {
	rec, ok := rs.records[name]
	return rec, ok
}

// ApplyOCR overwrites the fields named in the extraction result,
// leaves every other field untouched, and replaces the bounding boxes
// wholesale. The record is marked dirty and its status set to done.
// The result is applied to the record it was requested for, whatever
// image the operator is looking at by now.
func (rs *RecordSet) ApplyOCR(name string, fields map[string]string, boxes []ocr.Box) error {
	rec, ok := rs.records[name]
	if !ok {
		return fmt.Errorf("apply ocr: no record for %s", name)
	}
	for key, value := range fields {
		rec.setField(key, value)
	}
	rec.Boxes = slices.Clone(boxes)
	rec.OCRStatus = OCRDone
	rec.Dirty = true
	return nil
}

// MarkOCRFailed records a failed extraction attempt. The record data
// is untouched, so nothing becomes dirty.
func (rs *RecordSet) MarkOCRFailed(name string) error {
	rec, ok := rs.records[name]
	if !ok {
		return fmt.Errorf("mark ocr failed: no record for %s", name)
	}
	rec.OCRStatus = OCRFailed
	return nil
}

// ApplyEdit sets one field on one record. Setting a field to its
// current value is a no-op and does not dirty the record.
func (rs *RecordSet) ApplyEdit(name, field, value string) error {
	rec, ok := rs.records[name]
	if !ok {
		return fmt.Errorf("apply edit: no record for %s", name)
	}
	old, ok := rec.Field(field)
	if !ok {
		return fmt.Errorf("apply edit: unknown field %q", field)
	}
	if old == value {
		return nil
	}
	rec.setField(field, value)
	rec.Dirty = true
	return nil
}

// Rename moves a record to a new image filename, keeping its fields,
// boxes and status. The caller renames the file on disk; this keeps
// the artifacts pointing at it.
func (rs *RecordSet) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	rec, ok := rs.records[oldName]
	if !ok {
		return fmt.Errorf("rename record: no record for %s", oldName)
	}
	if _, exists := rs.records[newName]; exists {
		return fmt.Errorf("rename record: %s already has a record", newName)
	}
	delete(rs.records, oldName)
	rec.ImageName = newName
	rec.Dirty = true
	rs.records[newName] = rec
	for i, n := range rs.order {
		if n == oldName {
			rs.order[i] = newName
			break
		}
	}
	sort.Strings(rs.order)
	return nil
}

// Dirty reports whether any record has unsaved changes.
func (rs *RecordSet) Dirty() bool {
	for _, rec := range rs.records {
		if rec.Dirty {
			return true
		}
	}
	return false
}

// DirtyCount returns how many records have unsaved changes.
func (rs *RecordSet) DirtyCount() int {
	n := 0
	for _, rec := range rs.records {
		if rec.Dirty {
			n++
		}
	}
	return n
}

// Save writes both artifacts, spreadsheet first, each through a
// temporary file renamed into place. Dirty flags clear only after both
// writes succeed; on error the in-memory state is preserved so the
// operator can retry.
func (rs *RecordSet) Save() error {
	dataPath := filepath.Join(rs.dir, config.DataFileName)
	if err := writeTabular(dataPath, rs.ordered()); err != nil {
		return fmt.Errorf("write %s: %w", config.DataFileName, err)
	}

	sidecarPath := filepath.Join(rs.dir, config.SidecarFileName)
	if err := writeSidecar(sidecarPath, rs.boxesByName()); err != nil {
		return fmt.Errorf("write %s: %w", config.SidecarFileName, err)
	}

	for _, rec := range rs.records {
		rec.Dirty = false
	}
	return nil
}

func (rs *RecordSet) ordered() []*Record {
	out := make([]*Record, 0, len(rs.order))
	for _, name := range rs.order {
		out = append(out, rs.records[name])
	}
	return out
}

func (rs *RecordSet) boxesByName() map[string][]ocr.Box {
	out := make(map[string][]ocr.Box)
	for name, rec := range rs.records {
		if len(rec.Boxes) > 0 {
			out[name] = rec.Boxes
		}
	}
	return out
}

// replaceFile writes through a temporary file in the same directory
// and renames it over path, so an interrupted save leaves the previous
// artifact intact.
func replaceFile(path string, write func(tmp string) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := write(tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
