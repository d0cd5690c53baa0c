// Package analyzer infers a structured placeholder schema for an uploaded
// template, preferring a vision model over the rendered PDF and degrading to
// pattern matching on extracted text.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"DF-ANLZ/internal/analysis"
	"DF-ANLZ/internal/vision"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	modelTemperature = 0.1
	maxOutputTokens  = 4096
)

type Analyzer struct {
	client vision.Client
	schema *jsonschema.Schema
	log    *slog.Logger
}

// New constructs an analyzer around an injected model client. A nil client is
// allowed; every analysis then takes the pattern fallback path.
func New(client vision.Client, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		client: client,
		schema: mustCompileSchema(),
		log:    log,
	}
}

// Analyze produces a TemplateAnalysisResult for one upload. It never fails:
// model, transport and parse errors all route to the pattern fallback, so the
// caller always receives a result, possibly with a score of 0.
func (a *Analyzer) Analyze(ctx context.Context, pdfData []byte, textFallback, templateID string) *analysis.TemplateAnalysisResult {
	start := time.Now()

	result, err := a.analyzeWithModel(ctx, pdfData, textFallback)
	if err != nil {
		a.log.Warn("analyze.model_path_failed",
			"template_id", templateID,
			"error", err,
		)
		result = a.analyzeWithPatterns(textFallback)
	}

	result.TemplateID = templateID
	result.ProcessingTime = time.Since(start).Seconds()
	result.AIAnalysisScore = result.Score()

	a.log.Info("analyze.done",
		"template_id", templateID,
		"source", result.Source,
		"placeholders", len(result.Placeholders),
		"sections", len(result.Sections),
		"score", result.AIAnalysisScore,
	)
	return result
}

// wireResult is the shape requested from the model; it is the de facto JSON
// contract consumers of a persisted analysis must honor.
type wireResult struct {
	Placeholders      map[string]analysis.PlaceholderInfo `json:"placeholders"`
	Sections          []analysis.TemplateSection          `json:"sections"`
	BusinessLogic     map[string]any                      `json:"business_logic"`
	DocumentStructure analysis.DocumentStructure          `json:"document_structure"`
}

func (a *Analyzer) analyzeWithModel(ctx context.Context, pdfData []byte, textFallback string) (*analysis.TemplateAnalysisResult, error) {
	if a.client == nil {
		return nil, fmt.Errorf("no model client configured")
	}

	req := vision.Request{
		ResponseJSON:    true,
		Temperature:     modelTemperature,
		MaxOutputTokens: maxOutputTokens,
	}
	if len(pdfData) > 0 {
		req.Prompt = buildPrompt("")
		req.Attachment = pdfData
		req.MimeType = "application/pdf"
	} else {
		if strings.TrimSpace(textFallback) == "" {
			return nil, fmt.Errorf("no pdf and no text to analyze")
		}
		req.Prompt = buildPrompt(textFallback)
	}

	raw, err := a.client.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("model output is not JSON: %w", err)
	}

	var generic any
	if err := json.Unmarshal([]byte(payload), &generic); err != nil {
		return nil, fmt.Errorf("model output is not JSON: %w", err)
	}
	if err := a.schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("model output failed schema validation: %w", err)
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}
	if len(wire.Placeholders) == 0 {
		return nil, fmt.Errorf("model found no placeholders")
	}

	return &analysis.TemplateAnalysisResult{
		Placeholders:      wire.Placeholders,
		Sections:          wire.Sections,
		BusinessLogic:     wire.BusinessLogic,
		DocumentStructure: wire.DocumentStructure,
		Source:            analysis.SourceVision,
	}, nil
}

func (a *Analyzer) analyzeWithPatterns(text string) *analysis.TemplateAnalysisResult {
	_, placeholders := patternAnalyze(text)

	result := &analysis.TemplateAnalysisResult{
		Placeholders: placeholders,
		Sections:     buildFallbackSections(placeholders),
		Source:       analysis.SourcePattern,
	}

	var calculated, autoFill []string
	for name, info := range placeholders {
		if info.Type == analysis.FieldCalculated {
			calculated = append(calculated, name)
		}
		if info.AutoPopulate {
			autoFill = append(autoFill, name)
		}
	}
	sort.Strings(calculated)
	sort.Strings(autoFill)
	if len(calculated) > 0 || len(autoFill) > 0 {
		result.BusinessLogic = map[string]any{}
		if len(calculated) > 0 {
			result.BusinessLogic["calculation_fields"] = calculated
		}
		if len(autoFill) > 0 {
			result.BusinessLogic["auto_fill_fields"] = autoFill
		}
	}
	return result
}
