package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/Arkaprabha13/KYC/dto"
	"github.com/Arkaprabha13/KYC/metrics"
)

// highConfidenceCutoff stops the fallback chain early. A later backend could
// in principle score higher; this trades that chance for cost and latency.
const highConfidenceCutoff = 0.98

// ErrAllBackendsFailed is returned when no backend produced a record. The
// per-backend messages travel alongside as warnings.
var ErrAllBackendsFailed = errors.New("all extraction backends failed")

// ExtractionService orchestrates the backend fallback chain: it tries each
// candidate once, in order, and keeps the most confident result.
type ExtractionService struct {
	backends     []Backend
	pdfProcessor PDFProcessor
	maxImageDim  int
	metrics      *metrics.Metrics
}

func NewExtractionService(
	backends []Backend,
	pdfProcessor PDFProcessor,
	maxImageDim int,
	m *metrics.Metrics,
) *ExtractionService {
	return &ExtractionService{
		backends:     backends,
		pdfProcessor: pdfProcessor,
		maxImageDim:  maxImageDim,
		metrics:      m,
	}
}

// ExtractFromUpload reads an uploaded file, prepares it for the backends and
// runs the fallback chain.
func (s *ExtractionService) ExtractFromUpload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.KYCRecord, []string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file %s: %w", fileHeader.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file %s: %w", fileHeader.Filename, err)
	}

	doc, err := s.PrepareDocument(fileHeader.Filename, data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare document %s: %w", fileHeader.Filename, err)
	}

	return s.Extract(ctx, doc)
}

// PrepareDocument converts an upload into backend-ready form. PDFs are
// rendered to their first page image and keep their text layer; images are
// downscaled so the longest side stays within the configured cap.
func (s *ExtractionService) PrepareDocument(filename string, data []byte) (*Document, error) {
	isPDF := strings.HasSuffix(strings.ToLower(filename), ".pdf")

	if isPDF {
		text, err := s.pdfProcessor.ExtractText(data)
		if err != nil {
			log.Printf("PDF text extraction failed for %s: %v", filename, err)
		}

		images, err := s.pdfProcessor.ExtractImages(data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
		}
		if len(images) == 0 {
			return nil, fmt.Errorf("PDF %s contains no extractable page images", filename)
		}

		// First page carries the form
		imgBytes, err := EncodeJPEG(images[0])
		if err != nil {
			return nil, err
		}
		imgBytes, mimeType, err := DownscaleImage(imgBytes, "image/jpeg", s.maxImageDim)
		if err != nil {
			return nil, err
		}

		return &Document{
			Image:    imgBytes,
			MIMEType: mimeType,
			Text:     text,
			Filename: filename,
		}, nil
	}

	mimeType := mimeFromFilename(filename)
	imgBytes, mimeType, err := DownscaleImage(data, mimeType, s.maxImageDim)
	if err != nil {
		return nil, err
	}

	return &Document{
		Image:    imgBytes,
		MIMEType: mimeType,
		Filename: filename,
	}, nil
}

// Extract runs the candidate backends in order and returns the best-effort
// record plus the accumulated per-backend warnings.
//
// Selection contract: each backend is invoked at most once; a result only
// replaces the current best when its confidence strictly exceeds it (ties
// keep the earlier backend); a missing confidence counts as 0.0; the chain
// stops early past the high-confidence cutoff. A missing API credential
// aborts the whole chain instead of counting as one backend's failure.
func (s *ExtractionService) Extract(ctx context.Context, doc *Document) (*dto.KYCRecord, []string, error) {
	start := time.Now()
	defer func() {
		s.metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	}()

	var bestResult *dto.KYCRecord
	highestConfidence := -1.0
	var warnings []string

	for _, backend := range s.backends {
		log.Printf("Trying backend: %s", backend.Name())

		record, err := backend.Extract(ctx, doc)
		if err != nil {
			if errors.Is(err, dto.ErrNoCredentials) {
				s.metrics.ObserveBackendCall(backend.Name(), "error")
				log.Printf("Aborting extraction: %v", err)
				return nil, warnings, err
			}
			msg := fmt.Sprintf("model %s failed: %v", backend.Name(), err)
			warnings = append(warnings, msg)
			s.metrics.ObserveBackendCall(backend.Name(), "error")
			log.Printf("Warning: %s", msg)
			continue
		}
		s.metrics.ObserveBackendCall(backend.Name(), "ok")

		confidence := 0.0
		if record.ConfidenceScore != nil {
			confidence = *record.ConfidenceScore
		}

		if confidence > highestConfidence {
			highestConfidence = confidence
			name := backend.Name()
			record.ModelUsed = &name
			bestResult = record
		}

		if confidence > highConfidenceCutoff {
			log.Printf("High confidence result (%.2f) from %s, finalizing", confidence, backend.Name())
			break
		}
	}

	if bestResult == nil {
		return nil, warnings, ErrAllBackendsFailed
	}

	return bestResult, warnings, nil
}

func mimeFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
