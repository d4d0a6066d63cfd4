package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Arkaprabha13/KYC/client"
	"github.com/Arkaprabha13/KYC/dto"
	"github.com/Arkaprabha13/KYC/utils"
)

// extractionPrompt is the fixed instruction set sent with every remote
// backend call.
const extractionPrompt = `You are an expert AI data extraction specialist for KYC (Know Your Customer) forms.
Your task is to analyze the provided KYC form image and extract ALL visible information into a structured JSON format with extreme accuracy.

Key Information to Extract:
- PERSONAL: Full name, Father's/Husband's name, Date of birth, Residential address, Mobile number.
- EMPLOYMENT: Control number, Designation, Bill unit number, Department, S.R. number, Office address, Date of appointment.
- IDENTITY DOCS: PAN number, Aadhar number.
- BANKING: Bank name, Branch name, Branch code, Account number, IFSC code.
- NOMINEE: Nominee name, Relation, Date of birth, Aadhar, PAN.

Instructions:
- Extract text precisely as it appears, even with minor OCR errors.
- Standardize dates to DD/MM/YYYY format if possible.
- If a field is blank or unreadable, use a null value.
- Provide a confidence score (0.0 to 1.0) reflecting the overall accuracy of the extraction.
- Distinguish clearly between handwritten and printed text values and associate them with the correct fields.
- Return the data strictly following the provided JSON schema.`

// Backend is one document-understanding variant the orchestrator can
// consult. Extract performs exactly one invocation; it is never retried.
type Backend interface {
	Name() string
	Extract(ctx context.Context, doc *Document) (*dto.KYCRecord, error)
}

// RecordGenerator is the slice of the Gemini client the remote backend
// needs.
type RecordGenerator interface {
	GenerateRecord(ctx context.Context, model, prompt string, imageData []byte, mimeType string, schema client.ResponseSchema) (*dto.KYCRecord, error)
}

// GeminiBackend binds one model variant to the shared Gemini client. The
// response schema is built once and passed explicitly into every call.
type GeminiBackend struct {
	model     string
	generator RecordGenerator
	schema    client.ResponseSchema
}

func NewGeminiBackend(model string, generator RecordGenerator) *GeminiBackend {
	return &GeminiBackend{
		model:     model,
		generator: generator,
		schema:    client.BuildResponseSchema(),
	}
}

func (b *GeminiBackend) Name() string {
	return b.model
}

func (b *GeminiBackend) Extract(ctx context.Context, doc *Document) (*dto.KYCRecord, error) {
	return b.generator.GenerateRecord(ctx, b.model, extractionPrompt, doc.Image, doc.MIMEType, b.schema)
}

// OCRClient is the slice of the Tesseract client the local backend needs.
type OCRClient interface {
	ExtractText(imageData []byte) (string, float64, error)
}

// localConfidenceCap keeps the fallback's self-reported confidence low
// enough that it can never displace a healthy remote result.
const localConfidenceCap = 0.5

// LocalBackend is the optional last-resort backend: it OCRs the document
// locally and recovers fields with label/pattern matching. When the upload
// carried a usable PDF text layer, OCR is skipped.
type LocalBackend struct {
	ocr OCRClient
}

func NewLocalBackend(ocr OCRClient) *LocalBackend {
	return &LocalBackend{ocr: ocr}
}

func (b *LocalBackend) Name() string {
	return "local-tesseract"
}

func (b *LocalBackend) Extract(ctx context.Context, doc *Document) (*dto.KYCRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := doc.Text
	ocrConf := 60.0
	if len(strings.TrimSpace(text)) < 20 {
		var err error
		text, ocrConf, err = b.ocr.ExtractText(doc.Image)
		if err != nil {
			return nil, fmt.Errorf("local OCR failed: %w", err)
		}
	}

	if len(strings.TrimSpace(text)) == 0 {
		return nil, fmt.Errorf("no text could be extracted from the document")
	}

	record := utils.ParseKYCForm(text)

	// Coverage-weighted confidence, capped well below remote results.
	confidence := utils.FieldCoverage(record) * (ocrConf / 100.0)
	if confidence > localConfidenceCap {
		confidence = localConfidenceCap
	}
	record.ConfidenceScore = &confidence

	return record, nil
}
