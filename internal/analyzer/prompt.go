package analyzer

import "strings"

const analysisPromptTemplate = `You are a document template analysis engine.
You receive a business document (quote, contract, invoice or similar) and must
infer its reusable template structure.

Tasks:
1. Find every piece of data that could plausibly vary between documents and
   express it as a {{placeholder_name}} token. Use snake_case names.
2. Classify each placeholder as one of: text, number, date, currency, boolean,
   calculated, array.
3. Record the literal value currently visible in the document for each
   placeholder as "current_value".
4. Group placeholders into sections matching common business-document anatomy:
   header, company_info, customer_info, products_table, financial_summary,
   terms, signature. Mark table-row sections as repeatable and describe their
   table_structure.
5. Identify calculated fields (totals derived from line items, give a
   calculation_formula such as "=subtotal + vat_amount") and auto-populated
   fields (for example today's date, set auto_populate true).
6. Describe the whole document in "document_structure": total_pages,
   has_tables, table_locations, header_content, footer_content.

Return a single JSON object with exactly these top-level keys and nothing
else — no markdown, no commentary:

{
  "placeholders": {
    "<name>": {
      "type": "text|number|date|currency|boolean|calculated|array",
      "description": "human readable label",
      "current_value": "literal value seen in the document",
      "default_value": "optional fallback",
      "validation_rules": ["required"],
      "section": "owning section name",
      "auto_populate": false,
      "calculation_formula": ""
    }
  },
  "sections": [
    {
      "name": "header",
      "description": "",
      "placeholders": ["<name>"],
      "order": 1,
      "is_repeatable": false,
      "required": true,
      "table_structure": {"columns": [], "calculated_columns": []}
    }
  ],
  "business_logic": {
    "calculation_fields": [],
    "auto_fill_fields": [],
    "conditional_fields": [],
    "validation_rules": {}
  },
  "document_structure": {
    "total_pages": 1,
    "has_tables": false,
    "table_locations": [],
    "header_content": "",
    "footer_content": "",
    "visual_elements": []
  }
}`

const textFallbackSuffix = `

The document could not be rendered; analyze its extracted plain text instead:

---
%s
---`

// buildPrompt assembles the analysis prompt. When no PDF is attached the
// extracted document text is embedded directly.
func buildPrompt(embedText string) string {
	if embedText == "" {
		return analysisPromptTemplate
	}
	return analysisPromptTemplate + strings.Replace(textFallbackSuffix, "%s", embedText, 1)
}
