package handler

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Arkaprabha13/KYC/dto"
	"github.com/Arkaprabha13/KYC/service"
)

// Extractor is the slice of the extraction service this handler needs.
type Extractor interface {
	ExtractFromUpload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.KYCRecord, []string, error)
}

// ModelLister validates the configured credential by listing models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// KYCHandler handles extraction and credential validation requests
type KYCHandler struct {
	extractor   Extractor
	models      ModelLister
	maxFileSize int64
}

// NewKYCHandler creates a new KYCHandler instance
func NewKYCHandler(extractor Extractor, models ModelLister, maxFileSize int64) *KYCHandler {
	return &KYCHandler{
		extractor:   extractor,
		models:      models,
		maxFileSize: maxFileSize,
	}
}

// Extract handles the POST /kyc/extract endpoint
func (h *KYCHandler) Extract(c *gin.Context) {
	log.Println("Received KYC extraction request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "A document file is required", err)
		return
	}

	request := &dto.ExtractionRequest{File: fileHeader}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if fileHeader.Size > h.maxFileSize {
		h.sendError(c, http.StatusRequestEntityTooLarge, "Uploaded file exceeds the size limit", nil)
		return
	}

	record, warnings, err := h.extractor.ExtractFromUpload(c.Request.Context(), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrNoCredentials):
			h.sendError(c, http.StatusUnauthorized, "No API credential configured", err)
		case errors.Is(err, service.ErrAllBackendsFailed):
			log.Printf("All backends failed: %v", warnings)
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{
				Error:   "EXTRACTION_FAILED",
				Message: "All models failed to process the image. Please check the API key, quotas, and image quality.",
				Code:    http.StatusBadGateway,
			})
		default:
			h.sendError(c, http.StatusInternalServerError, "Failed to process document", err)
		}
		return
	}

	confidence := 0.0
	if record.ConfidenceScore != nil {
		confidence = *record.ConfidenceScore
	}
	modelUsed := ""
	if record.ModelUsed != nil {
		modelUsed = *record.ModelUsed
	}

	log.Printf("Extraction completed by %s with confidence %.2f", modelUsed, confidence)
	c.JSON(http.StatusOK, dto.ExtractionResponse{
		Record:          record,
		ModelUsed:       modelUsed,
		ConfidenceScore: confidence,
		Warnings:        warnings,
		ProcessedAt:     time.Now().Format(time.RFC3339),
	})
}

// ValidateCredentials handles the POST /credentials/validate endpoint
func (h *KYCHandler) ValidateCredentials(c *gin.Context) {
	log.Println("Received credential validation request")

	models, err := h.models.ListModels(c.Request.Context())
	if err != nil {
		log.Printf("Credential validation failed: %v", err)
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "INVALID_CREDENTIALS",
			Message: err.Error(),
			Code:    http.StatusUnauthorized,
		})
		return
	}

	c.JSON(http.StatusOK, dto.CredentialsResponse{
		Valid:  true,
		Models: models,
	})
}

// sendError sends a structured error response
func (h *KYCHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "EXTRACTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
