package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Arkaprabha13/KYC/dto"
)

func newTestStore(t *testing.T) *ExcelStore {
	t.Helper()
	s := NewExcelStore(filepath.Join(t.TempDir(), "kyc_database.xlsx"))
	require.NoError(t, s.Open())
	return s
}

func strPtr(s string) *string { return &s }

func TestOpenCreatesEmptyWorkbookWithHeaders(t *testing.T) {
	s := newTestStore(t)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	f, err := excelize.OpenFile(s.Path())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dto.FieldNames(), rows[0])
}

func TestOpenIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(&dto.KYCRecord{Name: strPtr("kept")}))

	// Re-opening must not truncate existing rows
	require.NoError(t, s.Open())
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAppendPadsMissingFieldsInColumnOrder(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Append(&dto.KYCRecord{Name: strPtr("John Doe")}))

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)

	name, ok := records[0].Get("name")
	assert.True(t, ok)
	assert.Equal(t, "John Doe", name)
	for _, field := range dto.FieldNames() {
		if field == "name" {
			continue
		}
		_, ok := records[0].Get(field)
		assert.False(t, ok, "field %s should be null", field)
	}
}

func TestAppendGrowsByOneRow(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Append(&dto.KYCRecord{Name: strPtr("1")}))
	require.NoError(t, s.Append(&dto.KYCRecord{
		Name:       strPtr("2"),
		Department: strPtr("3"),
	}))

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, _ := records[0].Get("name")
	assert.Equal(t, "1", first)
	_, ok := records[0].Get("department")
	assert.False(t, ok)

	second, _ := records[1].Get("name")
	assert.Equal(t, "2", second)
	dept, ok := records[1].Get("department")
	assert.True(t, ok)
	assert.Equal(t, "3", dept)
}

func TestAppendAllNullRecordStillCountsAsRow(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Append(&dto.KYCRecord{}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.Append(&dto.KYCRecord{Name: strPtr("after")}))

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, field := range dto.FieldNames() {
		_, ok := records[0].Get(field)
		assert.False(t, ok, "field %s should be null", field)
	}
	name, _ := records[1].Get("name")
	assert.Equal(t, "after", name)
}

func TestAppendPreservesMetadataColumns(t *testing.T) {
	s := newTestStore(t)

	conf := 0.93
	require.NoError(t, s.Append(&dto.KYCRecord{
		Name:            strPtr("Jane"),
		ConfidenceScore: &conf,
		ModelUsed:       strPtr("gemini-1.5-pro-latest"),
	}))

	records, err := s.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ConfidenceScore)
	assert.InDelta(t, 0.93, *records[0].ConfidenceScore, 1e-9)
	assert.Equal(t, "gemini-1.5-pro-latest", *records[0].ModelUsed)
}

func TestExportAllRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(&dto.KYCRecord{Name: strPtr("A"), BankName: strPtr("HDFC")}))
	require.NoError(t, s.Append(&dto.KYCRecord{Name: strPtr("B")}))

	blob, err := s.ExportAll()
	require.NoError(t, err)

	records, err := ParseWorkbook(blob, SheetName)
	require.NoError(t, err)
	require.Len(t, records, 2)

	bank, ok := records[0].Get("bank_name")
	assert.True(t, ok)
	assert.Equal(t, "HDFC", bank)
	name, _ := records[1].Get("name")
	assert.Equal(t, "B", name)
}

func TestExportOneIsIndependentOfStore(t *testing.T) {
	record := &dto.KYCRecord{
		Name:      strPtr("Uncommitted"),
		ModelUsed: strPtr("gemini-1.5-flash-latest"),
	}

	blob, err := ExportOne(record)
	require.NoError(t, err)

	records, err := ParseWorkbook(blob, RecordSheetName)
	require.NoError(t, err)
	require.Len(t, records, 1)
	name, _ := records[0].Get("name")
	assert.Equal(t, "Uncommitted", name)
}

func TestOpenFailsOnGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kyc_database.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	s := NewExcelStore(path)
	assert.Error(t, s.Open())
}

func TestOpenFailsOnIncompatibleHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kyc_database.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetName))
	header := []interface{}{"some", "other", "columns"}
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &header))
	require.NoError(t, f.SaveAs(path))
	f.Close()

	s := NewExcelStore(path)
	err := s.Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible")
}
