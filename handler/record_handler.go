package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Arkaprabha13/KYC/dto"
	"github.com/Arkaprabha13/KYC/metrics"
	"github.com/Arkaprabha13/KYC/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecordHandler handles store commits, listing and exports
type RecordHandler struct {
	store   *store.ExcelStore
	metrics *metrics.Metrics
}

// NewRecordHandler creates a new RecordHandler instance
func NewRecordHandler(st *store.ExcelStore, m *metrics.Metrics) *RecordHandler {
	return &RecordHandler{
		store:   st,
		metrics: m,
	}
}

// SaveRecord handles POST /kyc/records: commits one reviewed record to the
// append-only store.
func (h *RecordHandler) SaveRecord(c *gin.Context) {
	log.Println("Received save record request")

	var record dto.KYCRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid record payload", err)
		return
	}

	if err := h.store.Append(&record); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to save record", err)
		return
	}
	h.metrics.IncrementRecordsAppended()

	count, err := h.store.Count()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to read store", err)
		return
	}

	log.Printf("Record saved, store now holds %d records", count)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Record saved",
		"count":   count,
	})
}

// ListRecords handles GET /kyc/records
func (h *RecordHandler) ListRecords(c *gin.Context) {
	records, err := h.store.Records()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to read store", err)
		return
	}

	c.JSON(http.StatusOK, dto.RecordsResponse{
		Count:   len(records),
		Records: records,
	})
}

// ExportStore handles GET /kyc/records/export: downloads the full store as
// an xlsx workbook.
func (h *RecordHandler) ExportStore(c *gin.Context) {
	data, err := h.store.ExportAll()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to export store", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="kyc_database.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportRecordExcel handles POST /kyc/export/excel: downloads one in-memory
// record, committed or not, as a single-row workbook.
func (h *RecordHandler) ExportRecordExcel(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid export payload", err)
		return
	}

	data, err := store.ExportOne(&req.Record)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to export record", err)
		return
	}

	filename := fmt.Sprintf("%s_kyc.xlsx", filenameStem(req.Filename, "kyc_record"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportRecordJSON handles POST /kyc/export/json: downloads one in-memory
// record as pretty-printed JSON carrying the full field set.
func (h *RecordHandler) ExportRecordJSON(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid export payload", err)
		return
	}

	data, err := json.MarshalIndent(&req.Record, "", "  ")
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to serialize record", err)
		return
	}

	filename := fmt.Sprintf("%s_extracted.json", filenameStem(req.Filename, "extracted_kyc_data"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// sendError sends a structured error response
func (h *RecordHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "STORE_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}

// filenameStem sanitizes a client-supplied filename down to its base name
// without extension, falling back when nothing usable remains.
func filenameStem(name, fallback string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return fallback
	}
	return base
}
