package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/model"
)

// ReadRecordsFile reads startup records from a .json, .csv, or .xlsx file.
// JSON input is an array of objects. CSV and XLSX input carry a header row
// naming the fields; empty cells are treated as absent.
func ReadRecordsFile(ctx context.Context, path string) ([]model.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "records: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadRecordsJSON(ctx, f)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "records: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadRecordsCSV(ctx, f)
	case ".xlsx":
		rows, err := ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "records: read %s", path)
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return rowsToRecords(rows[0], rows[1:]), nil
	default:
		return nil, eris.Errorf("records: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadRecordsJSON decodes a JSON array of records.
func ReadRecordsJSON(ctx context.Context, r io.Reader) ([]model.Record, error) {
	recs, err := CollectJSONArray[model.Record](ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "records: decode json")
	}
	return recs, nil
}

// ReadRecordsCSV decodes CSV rows keyed by the header row.
func ReadRecordsCSV(ctx context.Context, r io.Reader) ([]model.Record, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "records: decode csv")
	}
	header := <-headerCh
	return rowsToRecords(header, rows), nil
}

// WriteRecordsJSON writes records as an indented JSON array.
func WriteRecordsJSON(w io.Writer, recs []model.Record) error {
	if recs == nil {
		recs = []model.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(recs), "records: encode json")
}

func rowsToRecords(header []string, rows [][]string) []model.Record {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, len(keys))
		for i, cell := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				m[keys[i]] = cell
			}
		}
		if len(m) == 0 {
			continue
		}
		out = append(out, model.FromMap(m))
	}
	return out
}
