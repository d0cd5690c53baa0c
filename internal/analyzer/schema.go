package analyzer

import "github.com/santhosh-tekuri/jsonschema/v5"

// resultSchema constrains the model's JSON output before it is decoded into
// typed values. Anything failing validation routes to the pattern fallback.
const resultSchema = `{
  "type": "object",
  "required": ["placeholders"],
  "properties": {
    "placeholders": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["type", "description"],
        "properties": {
          "type": {"enum": ["text", "number", "date", "currency", "boolean", "calculated", "array"]},
          "description": {"type": "string"},
          "default_value": {"type": "string"},
          "validation_rules": {"type": "array", "items": {"type": "string"}},
          "section": {"type": "string"},
          "auto_populate": {"type": "boolean"},
          "calculation_formula": {"type": "string"}
        }
      }
    },
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "placeholders"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "placeholders": {"type": "array", "items": {"type": "string"}},
          "order": {"type": "integer"},
          "is_repeatable": {"type": "boolean"},
          "required": {"type": "boolean"},
          "table_structure": {
            "type": "object",
            "properties": {
              "columns": {"type": "array", "items": {"type": "string"}},
              "calculated_columns": {"type": "array", "items": {"type": "string"}}
            }
          }
        }
      }
    },
    "business_logic": {"type": "object"},
    "document_structure": {
      "type": "object",
      "properties": {
        "total_pages": {"type": "integer", "minimum": 0},
        "has_tables": {"type": "boolean"},
        "table_locations": {"type": "array", "items": {"type": "string"}},
        "header_content": {"type": "string"},
        "footer_content": {"type": "string"},
        "visual_elements": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

func mustCompileSchema() *jsonschema.Schema {
	return jsonschema.MustCompileString("analysis-result.json", resultSchema)
}
