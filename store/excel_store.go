// Package store persists finalized KYC records to a single xlsx workbook.
//
// The store is an append-only, position-addressed log: no primary key, no
// update or delete path. Every write loads the full workbook and rewrites it,
// guarded by an in-process mutex. The store assumes a single active process;
// concurrent writers from separate processes can lose updates.
package store

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/Arkaprabha13/KYC/dto"
)

const (
	// SheetName is the single logical table in the backing workbook.
	SheetName = "KYC_Data"

	// RecordSheetName is the sheet used when exporting one record.
	RecordSheetName = "KYC_Record"
)

// ExcelStore is the file-backed tabular store.
type ExcelStore struct {
	path string
	mu   sync.Mutex
}

func NewExcelStore(path string) *ExcelStore {
	return &ExcelStore{path: path}
}

// Path returns the backing file location.
func (s *ExcelStore) Path() string {
	return s.path
}

// Open creates the backing workbook with schema headers and zero rows when
// it does not exist yet. An existing but unreadable or structurally
// incompatible file is an error.
func (s *ExcelStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		f, rows, err := s.load()
		if err != nil {
			return err
		}
		f.Close()
		log.Printf("Opened store %s with %d records", s.path, len(rows)-1)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat store file %s: %w", s.path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name store sheet: %w", err)
	}
	if err := writeHeader(f, SheetName); err != nil {
		return err
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to create store file %s: %w", s.path, err)
	}

	log.Printf("Created new store file: %s", s.path)
	return nil
}

// Append coerces the record to the fixed column set (missing fields become
// empty cells) and rewrites the workbook with it as the last row.
func (s *ExcelStore) Append(record *dto.KYCRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, rows, err := s.load()
	if err != nil {
		return err
	}
	defer f.Close()

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("failed to compute append position: %w", err)
	}
	row := rowCells(record)
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save store file %s: %w", s.path, err)
	}
	return nil
}

// Records loads every stored record in insertion order.
func (s *ExcelStore) Records() ([]*dto.KYCRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, rows, err := s.load()
	if err != nil {
		return nil, err
	}
	f.Close()

	records := make([]*dto.KYCRecord, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		records = append(records, dto.FromRow(cells))
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *ExcelStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, rows, err := s.load()
	if err != nil {
		return 0, err
	}
	f.Close()
	return len(rows) - 1, nil
}

// ExportAll serializes the full current store to xlsx bytes.
func (s *ExcelStore) ExportAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.load()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize store: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportOne serializes a single in-memory record, committed or not, to the
// same tabular byte format. The on-disk store is not consulted.
func ExportOne(record *dto.KYCRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RecordSheetName); err != nil {
		return nil, fmt.Errorf("failed to name record sheet: %w", err)
	}
	if err := writeHeader(f, RecordSheetName); err != nil {
		return nil, err
	}
	row := rowCells(record)
	if err := f.SetSheetRow(RecordSheetName, "A2", &row); err != nil {
		return nil, fmt.Errorf("failed to write record row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize record: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseWorkbook reads xlsx bytes produced by this store back into records.
func ParseWorkbook(data []byte, sheet string) ([]*dto.KYCRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if err := validateHeader(rows); err != nil {
		return nil, err
	}

	records := make([]*dto.KYCRecord, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		records = append(records, dto.FromRow(cells))
	}
	return records, nil
}

// load opens the backing workbook and validates its structure against the
// record schema. The caller closes the returned file.
func (s *ExcelStore) load() (*excelize.File, [][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store file %s: %w", s.path, err)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("store file %s has no %s sheet: %w", s.path, SheetName, err)
	}
	if err := validateHeader(rows); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("store file %s is incompatible: %w", s.path, err)
	}

	return f, rows, nil
}

// rowCells renders a record's row for the workbook. Null fields become
// explicit empty-string cells: cells holding no value at all are dropped on
// save, and a row with every cell dropped disappears from the sheet, so an
// all-null record would append and then never be read back.
func rowCells(record *dto.KYCRecord) []interface{} {
	row := record.Row()
	for i, v := range row {
		if v == nil {
			row[i] = ""
		}
	}
	return row
}

func writeHeader(f *excelize.File, sheet string) error {
	header := make([]interface{}, 0, len(dto.FieldNames()))
	for _, name := range dto.FieldNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	return nil
}

func validateHeader(rows [][]string) error {
	names := dto.FieldNames()
	if len(rows) == 0 {
		return fmt.Errorf("missing header row")
	}
	header := rows[0]
	if len(header) != len(names) {
		return fmt.Errorf("header has %d columns, schema expects %d", len(header), len(names))
	}
	for i, name := range names {
		if header[i] != name {
			return fmt.Errorf("column %d is %q, expected %q", i+1, header[i], name)
		}
	}
	return nil
}
