package dto

import (
	"errors"
	"mime/multipart"
)

// ExtractionRequest represents the incoming multipart extraction request
type ExtractionRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

// Validate performs basic validation on the request
func (r *ExtractionRequest) Validate() error {
	if r.File == nil {
		return ErrNoDocument
	}
	if r.File.Size == 0 {
		return errors.New("uploaded file is empty")
	}
	return nil
}

// ExportRequest carries a single in-memory record to serialize, together
// with an optional filename stem for the download. The record does not have
// to be committed to the store first.
type ExportRequest struct {
	Record   KYCRecord `json:"record"`
	Filename string    `json:"filename,omitempty"`
}
