package resolver

import "strings"

// Rule binds a placeholder-name pattern to a priority. Higher priority wins
// when two placeholders claim the same literal value. Patterns are matched as
// substrings of the normalized placeholder name, first match wins, so order
// matters.
type Rule struct {
	Pattern  string
	Priority int
}

// defaultPriority applies when no rule matches.
const defaultPriority = 5

// DefaultRules ranks names by how safe it is to let them claim a literal:
// long, specific values (totals, company names) rank high; short generic
// counters (quantity, unit) rank low so they rarely win a collision.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "grand_total", Priority: 22},
		{Pattern: "total", Priority: 20},
		{Pattern: "subtotal", Priority: 18},
		{Pattern: "amount", Priority: 17},
		{Pattern: "company", Priority: 15},
		{Pattern: "customer", Priority: 15},
		{Pattern: "client", Priority: 14},
		{Pattern: "date", Priority: 13},
		{Pattern: "address", Priority: 12},
		{Pattern: "email", Priority: 12},
		{Pattern: "phone", Priority: 12},
		{Pattern: "tax", Priority: 11},
		{Pattern: "vat", Priority: 11},
		{Pattern: "price", Priority: 10},
		{Pattern: "discount", Priority: 10},
		{Pattern: "description", Priority: 8},
		{Pattern: "name", Priority: 8},
		{Pattern: "number", Priority: 6},
		{Pattern: "quantity", Priority: 2},
		{Pattern: "qty", Priority: 2},
		{Pattern: "index", Priority: 1},
		{Pattern: "unit", Priority: 1},
	}
}

// DefaultSkipValues are literals too ambiguous to ever substitute: single
// digits, short counters and separators that show up in unrelated prose.
func DefaultSkipValues() []string {
	return []string{
		"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
		"-", "x", "%", ".", ",", "/",
	}
}

func (r *Resolver) priorityFor(name string) int {
	for _, rule := range r.rules {
		if strings.Contains(name, rule.Pattern) {
			return rule.Priority
		}
	}
	return defaultPriority
}
