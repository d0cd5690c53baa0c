package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"DF-ANLZ/internal/analysis"
	"DF-ANLZ/internal/vision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response string
	err      error
	lastReq  vision.Request
}

func (f *fakeClient) Generate(ctx context.Context, req vision.Request) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

const goodModelOutput = `{
  "placeholders": {
    "company_name": {"type": "text", "description": "Issuing company", "current_value": "Acme Corp", "section": "company_info"},
    "total_amount": {"type": "currency", "description": "Grand total", "current_value": "1,000,000", "section": "financial_summary"},
    "issue_date": {"type": "date", "description": "Issue date", "auto_populate": true, "section": "header"}
  },
  "sections": [
    {"name": "header", "placeholders": ["issue_date"], "order": 1},
    {"name": "company_info", "placeholders": ["company_name"], "order": 2},
    {"name": "financial_summary", "placeholders": ["total_amount"], "order": 3}
  ],
  "business_logic": {"auto_fill_fields": ["issue_date"]},
  "document_structure": {"total_pages": 1, "has_tables": true, "table_locations": ["products"]}
}`

func TestAnalyzeUsesModelOutput(t *testing.T) {
	client := &fakeClient{response: goodModelOutput}
	a := New(client, slog.Default())

	result := a.Analyze(context.Background(), []byte("%PDF-stub"), "fallback text", "tpl-1")
	require.NotNil(t, result)
	assert.Equal(t, analysis.SourceVision, result.Source)
	assert.Equal(t, "tpl-1", result.TemplateID)
	assert.Len(t, result.Placeholders, 3)
	assert.Equal(t, "Acme Corp", result.Placeholders["company_name"].CurrentValueString())
	assert.Len(t, result.Sections, 3)
	assert.InDelta(t, 1.0, result.AIAnalysisScore, 0.001)

	// The PDF travels as the attachment, not embedded in the prompt.
	assert.NotEmpty(t, client.lastReq.Attachment)
	assert.True(t, client.lastReq.ResponseJSON)
	assert.InDelta(t, 0.1, client.lastReq.Temperature, 0.001)
}

func TestAnalyzeAcceptsFencedJSON(t *testing.T) {
	client := &fakeClient{response: "```json\n" + goodModelOutput + "\n```"}
	a := New(client, slog.Default())

	result := a.Analyze(context.Background(), []byte("%PDF-stub"), "", "tpl-1")
	assert.Equal(t, analysis.SourceVision, result.Source)
	assert.Len(t, result.Placeholders, 3)
}

func TestAnalyzeExtractsJSONFromProse(t *testing.T) {
	client := &fakeClient{response: "Here is the analysis you asked for:\n" + goodModelOutput + "\nLet me know."}
	a := New(client, slog.Default())

	result := a.Analyze(context.Background(), []byte("%PDF-stub"), "", "tpl-1")
	assert.Equal(t, analysis.SourceVision, result.Source)
}

func TestAnalyzeFallsBackOnModelError(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	a := New(client, slog.Default())

	result := a.Analyze(context.Background(), nil, "Invoice for {{company_name}} total {{total_amount}}", "tpl-1")
	require.NotNil(t, result)
	assert.Equal(t, analysis.SourcePattern, result.Source)
	assert.Contains(t, result.Placeholders, "company_name")
	assert.Contains(t, result.Placeholders, "total_amount")
	assert.GreaterOrEqual(t, result.AIAnalysisScore, 0.0)
	assert.LessOrEqual(t, result.AIAnalysisScore, 1.0)
}

func TestAnalyzeFallsBackOnInvalidJSON(t *testing.T) {
	client := &fakeClient{response: "I could not find any placeholders, sorry."}
	a := New(client, slog.Default())

	result := a.Analyze(context.Background(), []byte("%PDF-stub"), "some text with [customer_name]", "tpl-1")
	assert.Equal(t, analysis.SourcePattern, result.Source)
	assert.Contains(t, result.Placeholders, "customer_name")
}

func TestAnalyzeFallsBackOnSchemaViolation(t *testing.T) {
	// "placeholders" as an array violates the schema even though it is JSON.
	client := &fakeClient{response: `{"placeholders": ["company_name"]}`}
	a := New(client, slog.Default())

	result := a.Analyze(context.Background(), []byte("%PDF-stub"), "", "tpl-1")
	assert.Equal(t, analysis.SourcePattern, result.Source)
}

func TestAnalyzeNilClientNeverPanics(t *testing.T) {
	a := New(nil, slog.Default())

	result := a.Analyze(context.Background(), nil, "", "tpl-1")
	require.NotNil(t, result)
	assert.Equal(t, analysis.SourcePattern, result.Source)
	assert.Equal(t, 0.0, result.AIAnalysisScore)
}

func TestAnalyzeEmbedsTextWhenNoPDF(t *testing.T) {
	client := &fakeClient{response: goodModelOutput}
	a := New(client, slog.Default())

	a.Analyze(context.Background(), nil, "Công ty: Acme Corp", "tpl-1")
	assert.Empty(t, client.lastReq.Attachment)
	assert.Contains(t, client.lastReq.Prompt, "Công ty: Acme Corp")
}

func TestPatternAnalyzerRecognizesAllDelimiters(t *testing.T) {
	text := "a {{alpha}} b [beta value] c {gamma} d __delta__"
	names, placeholders := patternAnalyze(text)
	assert.ElementsMatch(t, []string{"alpha", "beta_value", "gamma", "delta"}, names)
	assert.Len(t, placeholders, 4)
}

func TestPatternAnalyzerInference(t *testing.T) {
	_, placeholders := patternAnalyze("{{issue_date}} {{total_amount}} {{company_name}} {{quantity}} {{contact_email}}")

	assert.Equal(t, analysis.FieldDate, placeholders["issue_date"].Type)
	assert.Equal(t, analysis.FieldCalculated, placeholders["total_amount"].Type)
	assert.Equal(t, "financial", placeholders["total_amount"].Section)
	assert.Equal(t, "company_info", placeholders["company_name"].Section)
	assert.Equal(t, analysis.FieldNumber, placeholders["quantity"].Type)
	assert.Contains(t, placeholders["contact_email"].ValidationRules, "email")
}

func TestExtractJSONUnbalanced(t *testing.T) {
	_, err := extractJSON(`{"truncated": `)
	assert.Error(t, err)
}

func TestExtractJSONHandlesBracesInStrings(t *testing.T) {
	payload, err := extractJSON(`{"formula": "={a} + {b}"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"formula": "={a} + {b}"}`, payload)
}
