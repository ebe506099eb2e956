package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/venture-watch/internal/model"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Startups"

// amountColumn is the index of funding_amount in Columns.
const amountColumn = 1

// BuildXLSX lays records out on a single sheet. Funding amounts are numeric
// cells.
func BuildXLSX(records []model.Record) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range Columns {
		header.AddCell().SetString(c)
	}

	for _, r := range records {
		row := sheet.AddRow()
		for i, v := range Row(r) {
			cell := row.AddCell()
			if i == amountColumn && r.FundingAmount != nil {
				cell.SetFloat(*r.FundingAmount)
				continue
			}
			cell.SetString(v)
		}
	}
	return f, nil
}

// WriteXLSX saves records as an XLSX workbook at path.
func WriteXLSX(path string, records []model.Record) error {
	f, err := BuildXLSX(records)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// StreamXLSX writes records as an XLSX workbook to w.
func StreamXLSX(w io.Writer, records []model.Record) error {
	f, err := BuildXLSX(records)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write xlsx")
}
