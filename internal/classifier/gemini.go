package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"curator/internal/config"
	"curator/internal/services"
)

// Gemini implements Service against the Gemini API with JSON response
// schemas, one request per operation.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini constructs the Gemini-backed classifier from configuration.
func NewGemini(ctx context.Context, cfg config.Gemini) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "client", "gemini api key required", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "client", "create gemini client", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

func (g *Gemini) ClassifyExtension(ctx context.Context, ext string, categories []string) (Recommendation, error) {
	var result Recommendation
	contents := []*genai.Content{genai.NewContentFromText(extensionPrompt(ext, categories), genai.RoleUser)}
	if err := g.generate(ctx, "classify extension", contents, extensionSystemPrompt, recommendationSchema(), &result); err != nil {
		return Recommendation{}, err
	}
	if strings.TrimSpace(result.SuggestedFolder) == "" {
		return Recommendation{}, services.Wrap(services.ErrTransient, "classifier", "classify extension", "empty folder suggestion", nil)
	}
	return result, nil
}

func (g *Gemini) AnalyzeCode(ctx context.Context, filename, snippet string) (CodeClassification, error) {
	var result CodeClassification
	contents := []*genai.Content{genai.NewContentFromText(codePrompt(filename, snippet), genai.RoleUser)}
	if err := g.generate(ctx, "analyze code", contents, codeSystemPrompt, codeClassificationSchema(), &result); err != nil {
		return CodeClassification{}, err
	}
	return result, nil
}

func (g *Gemini) DescribeImages(ctx context.Context, batch []ImageSample) (map[string]ImageDescription, error) {
	if len(batch) == 0 {
		return nil, services.Wrap(services.ErrValidation, "classifier", "describe images", "empty batch", nil)
	}
	parts := []*genai.Part{genai.NewPartFromText(imageBatchPrompt())}
	for _, sample := range batch {
		parts = append(parts, genai.NewPartFromBytes(sample.Data, sample.MIMEType))
		parts = append(parts, genai.NewPartFromText(fmt.Sprintf("Image File: %s", sample.Filename)))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var result struct {
		Descriptions []ImageDescription `json:"descriptions"`
	}
	if err := g.generate(ctx, "describe images", contents, imageSystemPrompt, batchDescriptionSchema(), &result); err != nil {
		return nil, err
	}

	byName := make(map[string]ImageDescription, len(result.Descriptions))
	for _, desc := range result.Descriptions {
		if desc.OriginalFilename != "" {
			byName[desc.OriginalFilename] = desc
		}
	}
	return byName, nil
}

func (g *Gemini) ClassifyPDF(ctx context.Context, filename string, subfolders []string) (PDFClassification, error) {
	var result PDFClassification
	contents := []*genai.Content{genai.NewContentFromText(pdfPrompt(filename, subfolders), genai.RoleUser)}
	if err := g.generate(ctx, "classify pdf", contents, pdfSystemPrompt, pdfClassificationSchema(), &result); err != nil {
		return PDFClassification{}, err
	}
	if strings.TrimSpace(result.SuggestedSubfolder) == "" {
		return PDFClassification{}, services.Wrap(services.ErrTransient, "classifier", "classify pdf", "empty subfolder suggestion", nil)
	}
	return result, nil
}

func (g *Gemini) generate(ctx context.Context, op string, contents []*genai.Content, system string, schema *genai.Schema, target any) error {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return services.Wrap(services.ErrTransient, "classifier", op, "gemini request failed", err)
	}

	text := resp.Text()
	if err := DecodePayload(text, target); err != nil {
		return services.Wrap(services.ErrTransient, "classifier", op, "parse payload", err)
	}
	return nil
}

// DecodePayload unmarshals a model response into target, tolerating code
// fences and prose around the JSON document.
func DecodePayload(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := extractJSONDocument(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return directErr
	}
	return json.Unmarshal([]byte(sanitized), target)
}

func extractJSONDocument(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if end := strings.LastIndex(trimmed, "```"); end >= 0 {
			trimmed = trimmed[:end]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	if start := strings.Index(trimmed, "["); start >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return ""
}
