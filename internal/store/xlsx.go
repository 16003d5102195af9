package store

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// readTabular loads the spreadsheet into records keyed by image name.
// Rows with an empty image_name cell are skipped; on duplicate keys the
// last row wins. Parse failures wrap ErrCorruptData.
func readTabular(path string) (map[string]*Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrCorruptData)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if len(rows) == 0 {
		return map[string]*Record{}, nil
	}

	// Columns are found by header title, so operators can reorder or
	// add their own without breaking the tool.
	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx[Columns[0]]; !ok {
		return nil, fmt.Errorf("%w: missing %s column", ErrCorruptData, Columns[0])
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	recs := make(map[string]*Record)
	for _, row := range rows[1:] {
		name := cell(row, "image_name")
		if name == "" {
			continue
		}
		recs[name] = &Record{
			ImageName:    name,
			RationCardID: cell(row, "Ration Card ID"),
			CardHolder:   cell(row, "Name of Card Holder"),
			Guardian:     cell(row, "Guardian's Name"),
			HeadOfFamily: cell(row, "Head of Family"),
			Village:      cell(row, "Village"),
			Notes:        cell(row, "Notes"),
		}
	}
	return recs, nil
}

// writeTabular builds a fresh workbook from the records and swaps it
// over path.
func writeTabular(path string, recs []*Record) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, rec := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			rec.ImageName,
			rec.RationCardID,
			rec.CardHolder,
			rec.Guardian,
			rec.HeadOfFamily,
			rec.Village,
			rec.Notes,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "G", 24); err != nil {
		return err
	}

	return replaceFile(path, func(tmp string) error {
		return f.SaveAs(tmp)
	})
}
