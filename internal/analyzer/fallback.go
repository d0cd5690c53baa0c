package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"DF-ANLZ/internal/analysis"
)

// The four delimiter conventions the pattern analyzer recognizes.
var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_. \[\]-]*?)\s*\}\}`),
	regexp.MustCompile(`__([A-Za-z][A-Za-z0-9_]*)__`),
	regexp.MustCompile(`\[([A-Za-z][A-Za-z0-9_ -]*)\]`),
	regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`),
}

// patternAnalyze scans plain text for placeholder tokens and infers types and
// sections from keyword matching on the token names. It trades precision for
// the guarantee that the pipeline always produces a result.
func patternAnalyze(text string) ([]string, map[string]analysis.PlaceholderInfo) {
	seen := make(map[string]struct{})
	var names []string

	for _, pattern := range tokenPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			name := normalizeToken(match[1])
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	placeholders := make(map[string]analysis.PlaceholderInfo, len(names))
	for _, name := range names {
		placeholders[name] = inferPlaceholder(name)
	}
	return names, placeholders
}

func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.ToLower(token)
	token = strings.ReplaceAll(token, " ", "_")
	token = strings.Trim(token, "_.")
	return token
}

func inferPlaceholder(name string) analysis.PlaceholderInfo {
	info := analysis.PlaceholderInfo{
		Type:        analysis.FieldText,
		Description: strings.ReplaceAll(name, "_", " "),
		Section:     "general",
	}

	switch {
	case containsAny(name, "date", "ngay", "day", "deadline"):
		info.Type = analysis.FieldDate
		info.AutoPopulate = containsAny(name, "today", "current", "issue")
	case containsAny(name, "total", "amount", "price", "cost", "tien", "vat", "tax", "discount", "subtotal"):
		info.Type = analysis.FieldCurrency
		info.Section = "financial"
	case containsAny(name, "qty", "quantity", "count", "so_luong", "index"):
		info.Type = analysis.FieldNumber
	case containsAny(name, "email"):
		info.ValidationRules = []string{"email"}
	case containsAny(name, "phone", "tel", "fax"):
		info.ValidationRules = []string{"phone"}
	}

	switch {
	case containsAny(name, "company", "cong_ty", "issuer", "supplier"):
		info.Section = "company_info"
	case containsAny(name, "customer", "client", "khach_hang", "buyer"):
		info.Section = "customer_info"
	case containsAny(name, "product", "item", "unit", "qty", "quantity"):
		info.Section = "products_table"
	case containsAny(name, "sign", "signature", "approver"):
		info.Section = "signature"
	}

	if strings.Contains(name, "total") {
		info.Type = analysis.FieldCalculated
	}
	return info
}

func containsAny(name string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// buildFallbackSections groups inferred placeholders into ordered sections.
func buildFallbackSections(placeholders map[string]analysis.PlaceholderInfo) []analysis.TemplateSection {
	grouped := make(map[string][]string)
	for name, info := range placeholders {
		grouped[info.Section] = append(grouped[info.Section], name)
	}

	sectionOrder := []string{"header", "company_info", "customer_info", "products_table", "financial", "terms", "signature", "general"}
	var sections []analysis.TemplateSection
	order := 1
	for _, name := range sectionOrder {
		members, ok := grouped[name]
		if !ok {
			continue
		}
		sort.Strings(members)
		sections = append(sections, analysis.TemplateSection{
			Name:         name,
			Placeholders: members,
			Order:        order,
			IsRepeatable: name == "products_table",
		})
		order++
	}
	return sections
}
