package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/Arkaprabha13/KYC/dto"
)

// GeminiClient wraps the Generative Language REST API for structured
// document extraction. One client serves every model variant; the variant
// name is chosen per call.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini REST client
func NewGeminiClient(baseURL, apiKey string) *GeminiClient {
	return &GeminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// ResponseSchema describes the exact JSON shape a backend must return. It is
// built from the record schema and passed explicitly into every call.
type ResponseSchema map[string]interface{}

// BuildResponseSchema derives the structured-output schema from the record
// field set: every extracted field nullable, confidence as a number.
func BuildResponseSchema() ResponseSchema {
	props := make(map[string]interface{}, len(dto.Schema()))
	for _, f := range dto.Schema() {
		t := "STRING"
		if f.Type == dto.FieldNumber {
			t = "NUMBER"
		}
		props[f.Name] = map[string]interface{}{
			"type":     t,
			"nullable": true,
		}
	}
	return ResponseSchema{
		"type":       "OBJECT",
		"properties": props,
	}
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"response_mime_type"`
	ResponseSchema   ResponseSchema `json:"response_schema"`
}

// GenerateRecord sends the extraction prompt and one image to the given
// model variant and parses the structured JSON response into a record. A
// non-200 status or a malformed response body is returned as an error; the
// caller treats it as this backend's failure.
func (c *GeminiClient) GenerateRecord(ctx context.Context, model, prompt string, imageData []byte, mimeType string, schema ResponseSchema) (*dto.KYCRecord, error) {
	if c.apiKey == "" {
		return nil, dto.ErrNoCredentials
	}

	payload := generateContentRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Gemini response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini response for %s contained no candidates", model)
	}

	text := result.Candidates[0].Content.Parts[0].Text
	var record dto.KYCRecord
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil, fmt.Errorf("model %s returned malformed JSON: %w", model, err)
	}

	log.Printf("Model %s returned a structured record (%d bytes)", model, len(text))
	return &record, nil
}

// ListModels fetches the available model identifiers. Used to validate the
// configured API credential, mirroring a list-models smoke check.
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	if c.apiKey == "" {
		return nil, dto.ErrNoCredentials
	}

	apiURL := fmt.Sprintf("%s/models?key=%s", c.baseURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}
