package analysis

import "encoding/json"

// FieldType classifies what kind of value a placeholder holds.
type FieldType string

const (
	FieldText       FieldType = "text"
	FieldNumber     FieldType = "number"
	FieldDate       FieldType = "date"
	FieldCurrency   FieldType = "currency"
	FieldBoolean    FieldType = "boolean"
	FieldCalculated FieldType = "calculated"
	FieldArray      FieldType = "array"
)

// Source tags how an analysis result was produced.
type Source string

const (
	SourceVision  Source = "vision_model"
	SourcePattern Source = "pattern_fallback"
)

// Position carries optional layout hints for downstream renderers.
type Position struct {
	Page      int    `json:"page,omitempty"`
	Section   string `json:"section,omitempty"`
	Alignment string `json:"alignment,omitempty"`
}

// Formatting carries optional text formatting hints.
type Formatting struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	FontSize  int    `json:"font_size,omitempty"`
	Alignment string `json:"alignment,omitempty"`
}

// PlaceholderInfo describes one inferred field of a template. CurrentValue is
// the literal value observed in the uploaded document; it drives the
// substitution pass and is not authoritative afterwards.
type PlaceholderInfo struct {
	Type               FieldType       `json:"type"`
	Description        string          `json:"description"`
	CurrentValue       json.RawMessage `json:"current_value,omitempty"`
	DefaultValue       string          `json:"default_value,omitempty"`
	ValidationRules    []string        `json:"validation_rules,omitempty"`
	Section            string          `json:"section,omitempty"`
	AutoPopulate       bool            `json:"auto_populate,omitempty"`
	CalculationFormula string          `json:"calculation_formula,omitempty"`
	Position           *Position       `json:"position,omitempty"`
	Formatting         *Formatting     `json:"formatting,omitempty"`
}

// CurrentValueString renders CurrentValue as plain text. JSON strings are
// unquoted; numbers and other scalars are returned verbatim; structured
// values (arrays, objects) yield "" since they are never substituted as a
// single literal.
func (p PlaceholderInfo) CurrentValueString() string {
	if len(p.CurrentValue) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.CurrentValue, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(p.CurrentValue, &n); err == nil {
		return string(p.CurrentValue)
	}
	var b bool
	if err := json.Unmarshal(p.CurrentValue, &b); err == nil {
		return string(p.CurrentValue)
	}
	return ""
}

// TableStructure describes a repeatable line-items table inside a section.
type TableStructure struct {
	Columns           []string `json:"columns"`
	CalculatedColumns []string `json:"calculated_columns,omitempty"`
}

// TemplateSection is a named region of the document owning a set of
// placeholders, in render order.
type TemplateSection struct {
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Placeholders   []string        `json:"placeholders"`
	Order          int             `json:"order"`
	IsRepeatable   bool            `json:"is_repeatable,omitempty"`
	Required       bool            `json:"required,omitempty"`
	TableStructure *TableStructure `json:"table_structure,omitempty"`
}

// DocumentStructure is whole-document metadata recovered by the analyzer.
type DocumentStructure struct {
	TotalPages     int      `json:"total_pages,omitempty"`
	HasTables      bool     `json:"has_tables,omitempty"`
	TableLocations []string `json:"table_locations,omitempty"`
	HeaderContent  string   `json:"header_content,omitempty"`
	FooterContent  string   `json:"footer_content,omitempty"`
	VisualElements []string `json:"visual_elements,omitempty"`
}

// TemplateAnalysisResult is the unit of output for one upload. It is created
// once by the analyzer, consumed by the resolver, then persisted read-only.
type TemplateAnalysisResult struct {
	TemplateID        string                     `json:"template_id"`
	Placeholders      map[string]PlaceholderInfo `json:"placeholders"`
	Sections          []TemplateSection          `json:"sections"`
	BusinessLogic     map[string]any             `json:"business_logic,omitempty"`
	DocumentStructure DocumentStructure          `json:"document_structure"`
	AIAnalysisScore   float64                    `json:"ai_analysis_score"`
	ProcessingTime    float64                    `json:"processing_time"`
	Source            Source                     `json:"source"`
}

// Score computes the completeness heuristic for a result: a weighted sum of
// the structural signals actually present, clamped to [0,1]. It is a coarse
// indicator, not a calibrated probability.
func (r *TemplateAnalysisResult) Score() float64 {
	score := 0.0
	if len(r.Placeholders) > 0 {
		score += 0.3
	}
	if len(r.Sections) > 0 {
		score += 0.3
	}
	if len(r.BusinessLogic) > 0 {
		score += 0.2
	}
	if r.structurePopulated() {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func (r *TemplateAnalysisResult) structurePopulated() bool {
	s := r.DocumentStructure
	return s.TotalPages > 0 || s.HasTables || s.HeaderContent != "" ||
		s.FooterContent != "" || len(s.TableLocations) > 0 || len(s.VisualElements) > 0
}
