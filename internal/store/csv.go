package store

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"
)

// ExportCSV writes the tabular data as CSV in persisted row order, for
// handing off to systems that cannot read the spreadsheet. Bounding
// boxes and session state stay behind.
func (rs *RecordSet) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	for _, rec := range rs.ordered() {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode %s: %w", rec.ImageName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
