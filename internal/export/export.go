// Package export writes the startup collection as CSV or XLSX with a fixed
// column order.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/fetcher"
	"github.com/sells-group/venture-watch/internal/model"
)

// Columns is the export column order.
var Columns = []string{
	model.FieldCompanyName,
	model.FieldFundingAmount,
	model.FieldFundingRound,
	model.FieldIndustry,
	model.FieldLocation,
	model.FieldInvestors,
	model.FieldSource,
	model.FieldURL,
	model.FieldDiscoveryDate,
	model.FieldPublishedDate,
	model.FieldDescription,
}

// Row maps a record to export cells in Columns order. Investors are joined
// with ", " and a missing amount is an empty cell.
func Row(r model.Record) []string {
	amount := ""
	if r.FundingAmount != nil {
		amount = strconv.FormatFloat(*r.FundingAmount, 'f', -1, 64)
	}
	return []string{
		r.CompanyName,
		amount,
		string(r.FundingRound),
		r.Industry,
		r.Location,
		strings.Join(r.Investors, ", "),
		r.Source,
		r.URL,
		r.DiscoveryDate.String(),
		r.PublishedDate.String(),
		r.Description,
	}
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteFile writes records to path, choosing the format from the extension:
// .xlsx, .json, or CSV otherwise.
func WriteFile(path string, records []model.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, records)
	case ".json":
		return writeJSONFile(path, records)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

func writeJSONFile(path string, records []model.Record) error {
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := fetcher.WriteRecordsJSON(out, records); err != nil {
		_ = out.Close()
		return err
	}
	return eris.Wrapf(out.Close(), "export: close %s", path)
}
