// Package resolver rewrites a source document so that observed literal values
// become {{placeholder}} tokens, producing a reusable template.
package resolver

import (
	"log/slog"
	"sort"
	"strings"

	"DF-ANLZ/internal/analysis"
	"DF-ANLZ/internal/docx"
)

type Resolver struct {
	rules []Rule
	skip  map[string]struct{}
	log   *slog.Logger
}

// New builds a resolver with the default priority rules and skip list.
func New(log *slog.Logger) *Resolver {
	return NewWithRules(DefaultRules(), DefaultSkipValues(), log)
}

// NewWithRules builds a resolver with an explicit rule ordering and skip
// list, for tuning and tests.
func NewWithRules(rules []Rule, skipValues []string, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	skip := make(map[string]struct{}, len(skipValues))
	for _, v := range skipValues {
		skip[v] = struct{}{}
	}
	return &Resolver{rules: rules, skip: skip, log: log}
}

// mapping is one resolved literal -> token substitution.
type mapping struct {
	value string
	token string
}

// Resolve replaces literal values in the document with placeholder tokens.
// It never fails: if the document cannot be reopened or reserialized, the
// original bytes come back unchanged so the upload still succeeds with an
// un-templated file.
func (r *Resolver) Resolve(original []byte, placeholders map[string]analysis.PlaceholderInfo) []byte {
	mappings := r.buildMappings(placeholders)
	if len(mappings) == 0 {
		return original
	}

	doc, err := docx.Open(original)
	if err != nil {
		r.log.Warn("resolve.open_failed", "error", err)
		return original
	}

	replaced := doc.RewriteParagraphs(func(p docx.Paragraph) (string, bool) {
		return r.rewriteParagraph(p.Text, mappings)
	})

	out, err := doc.Bytes()
	if err != nil {
		r.log.Warn("resolve.serialize_failed", "error", err)
		return original
	}

	r.log.Info("resolve.done", "mappings", len(mappings), "paragraphs_rewritten", replaced)
	return out
}

// buildMappings turns the placeholder set into a literal->token table. Array
// style names (products[].unit_price) are flattened to their leaf name, and
// when two placeholders claim the same literal the higher-priority name wins.
func (r *Resolver) buildMappings(placeholders map[string]analysis.PlaceholderInfo) []mapping {
	type claim struct {
		name     string
		priority int
	}
	claims := make(map[string]claim)

	// Iterate names in sorted order so collision ties resolve the same way
	// on every run.
	names := make([]string, 0, len(placeholders))
	for name := range placeholders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, rawName := range names {
		info := placeholders[rawName]
		name := normalizeName(rawName)
		if name == "" {
			continue
		}

		value := strings.TrimSpace(info.CurrentValueString())
		if value == "" {
			continue
		}
		if _, skip := r.skip[strings.ToLower(value)]; skip {
			continue
		}

		priority := r.priorityFor(name)
		if existing, ok := claims[value]; ok && existing.priority >= priority {
			continue
		}
		claims[value] = claim{name: name, priority: priority}
	}

	mappings := make([]mapping, 0, len(claims))
	for value, c := range claims {
		mappings = append(mappings, mapping{value: value, token: "{{" + c.name + "}}"})
	}

	// Longest value first so a value that contains another value is replaced
	// before its substring gets a chance to fire.
	sort.Slice(mappings, func(i, j int) bool {
		if len(mappings[i].value) != len(mappings[j].value) {
			return len(mappings[i].value) > len(mappings[j].value)
		}
		return mappings[i].value < mappings[j].value
	})
	return mappings
}

// normalizedMatchThreshold is the value length above which a
// whitespace-collapsed comparison is also attempted, to tolerate soft
// line-break artifacts inside a paragraph.
const normalizedMatchThreshold = 20

func (r *Resolver) rewriteParagraph(text string, mappings []mapping) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	current := text
	changed := false
	for _, m := range mappings {
		if strings.Contains(current, m.value) {
			current = strings.ReplaceAll(current, m.value, m.token)
			changed = true
			continue
		}
		if len(m.value) > normalizedMatchThreshold {
			normText := collapseWhitespace(current)
			normValue := collapseWhitespace(m.value)
			if strings.Contains(normText, normValue) {
				current = strings.ReplaceAll(normText, normValue, m.token)
				changed = true
			}
		}
	}
	if !changed {
		return "", false
	}
	return current, true
}

// normalizeName strips token braces and flattens array-style names down to
// their leaf field: "products[].unit_price" -> "unit_price". Repeatable rows
// are the template renderer's concern, not the substitution pass's.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "{{")
	name = strings.TrimSuffix(name, "}}")
	name = strings.TrimSpace(name)
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "[]", "")
	return strings.Trim(name, "_.")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
