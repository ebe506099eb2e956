package fetcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/model"
)

func TestReadRecordsCSV(t *testing.T) {
	input := "Company_Name,URL,funding_amount,funding_round,investors,notes\n" +
		"Acme,https://a.example,$12M,series a,\"Sequoia, Accel\",\n" +
		",,,,,\n" +
		"Zed,https://z.example,,,,hot lead\n"

	recs, err := ReadRecordsCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Acme", recs[0].CompanyName)
	require.NotNil(t, recs[0].FundingAmount)
	assert.InDelta(t, 12, *recs[0].FundingAmount, 0)
	assert.Equal(t, model.RoundSeriesA, recs[0].FundingRound)
	assert.Equal(t, []string{"Sequoia", "Accel"}, recs[0].Investors)
	assert.Nil(t, recs[1].FundingAmount)
	assert.Equal(t, "hot lead", recs[1].Extra["notes"])
}

func TestReadRecordsCSV_Empty(t *testing.T) {
	recs, err := ReadRecordsCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadRecordsFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"company_name":"Acme","url":"https://a.example","funding_amount":12}]`), 0o644))
	recs, err := ReadRecordsFile(context.Background(), jsonPath)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 12, recs[0].Amount(), 0)

	csvPath := filepath.Join(dir, "batch.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("company_name,url\nAcme,https://a.example\n"), 0o644))
	recs, err = ReadRecordsFile(context.Background(), csvPath)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	xlsxPath := writeXLSX(t, "Startups", [][]string{{"company_name", "url", "industry"}, {"Zed", "https://z.example", "Fintech"}})
	recs, err = ReadRecordsFile(context.Background(), xlsxPath)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Fintech", recs[0].Industry)

	_, err = ReadRecordsFile(context.Background(), filepath.Join(dir, "batch.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ReadRecordsFile(context.Background(), filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestWriteRecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecordsJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteRecordsJSON(&buf, []model.Record{{CompanyName: "Acme", URL: "https://a.example"}}))
	recs, err := ReadRecordsJSON(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Acme", recs[0].CompanyName)
}
