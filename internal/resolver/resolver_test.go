package resolver

import (
	"encoding/json"
	"log/slog"
	"testing"

	"DF-ANLZ/internal/analysis"
	"DF-ANLZ/internal/docx"
	"DF-ANLZ/internal/docx/docxtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeholder(value string) analysis.PlaceholderInfo {
	raw, _ := json.Marshal(value)
	return analysis.PlaceholderInfo{Type: analysis.FieldText, CurrentValue: raw}
}

func textOf(t *testing.T, data []byte) []string {
	t.Helper()
	doc, err := docx.Open(data)
	require.NoError(t, err)
	var texts []string
	for _, p := range doc.Paragraphs() {
		texts = append(texts, p.Text)
	}
	return texts
}

func TestResolveEndToEndScenario(t *testing.T) {
	data := docxtest.Build(
		[]string{"Công ty: Acme Corp", "Báo giá tháng 8"},
		[][]string{{"1,000,000"}},
	)
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"company_name": placeholder("Acme Corp"),
		"total_amount": placeholder("1,000,000"),
	})

	texts := textOf(t, out)
	assert.Equal(t, "Công ty: {{company_name}}", texts[0])
	assert.Equal(t, "Báo giá tháng 8", texts[1])
	assert.Equal(t, "{{total_amount}}", texts[2])
}

func TestResolveEmptyMapReturnsInputUnchanged(t *testing.T) {
	data := docxtest.Build([]string{"untouched"}, nil)
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{})
	assert.Equal(t, data, out)
}

func TestResolveCorruptInputReturnsOriginal(t *testing.T) {
	corrupt := []byte("not a docx at all")
	r := New(slog.Default())

	out := r.Resolve(corrupt, map[string]analysis.PlaceholderInfo{
		"company_name": placeholder("Acme Corp"),
	})
	assert.Equal(t, corrupt, out)
}

func TestResolveAlwaysReturnsParseableDocx(t *testing.T) {
	data := docxtest.Build([]string{"Acme Corp", "something else"}, [][]string{{"Acme Corp"}})
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"company_name": placeholder("Acme Corp"),
	})
	_, err := docx.Open(out)
	assert.NoError(t, err)
}

func TestResolveCollisionHigherPriorityWins(t *testing.T) {
	// total_amount outranks quantity; every "100" must become the total token.
	data := docxtest.Build([]string{"Thành tiền: 100"}, [][]string{{"100"}})
	r := New(slog.Default())

	placeholders := map[string]analysis.PlaceholderInfo{
		"total_amount": placeholder("100"),
		"quantity":     placeholder("100"),
	}

	out := r.Resolve(data, placeholders)
	texts := textOf(t, out)
	assert.Equal(t, "Thành tiền: {{total_amount}}", texts[0])
	assert.Equal(t, "{{total_amount}}", texts[1])
}

func TestResolveCollisionOrderIndependent(t *testing.T) {
	data := docxtest.Build([]string{"giá trị 5000"}, nil)

	// Same inputs, different rule declaration order: the rule table decides,
	// not map iteration order.
	placeholders := map[string]analysis.PlaceholderInfo{
		"unit_price":   placeholder("5000"),
		"total_amount": placeholder("5000"),
	}

	r := New(slog.Default())
	first := r.Resolve(data, placeholders)
	second := r.Resolve(data, placeholders)
	assert.Equal(t, first, second, "resolution must be byte-identical across runs")

	texts := textOf(t, first)
	assert.Equal(t, "giá trị {{total_amount}}", texts[0])
}

func TestResolveSkipListRespected(t *testing.T) {
	data := docxtest.Build([]string{"Trang 1 trong 3 trang", "Số lượng: 1"}, nil)
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"quantity": placeholder("1"),
	})
	assert.Equal(t, data, out, "a skip-listed literal must never be substituted")
}

func TestResolveEmptyAndWhitespaceValuesIgnored(t *testing.T) {
	data := docxtest.Build([]string{"some text"}, nil)
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"empty_field": placeholder(""),
		"blank_field": placeholder("   "),
		"array_field": {Type: analysis.FieldArray, CurrentValue: json.RawMessage(`[{"a":1}]`)},
	})
	assert.Equal(t, data, out)
}

func TestResolveArrayNamesFlattened(t *testing.T) {
	data := docxtest.Build(nil, [][]string{{"250,000"}})
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"products[].unit_price": placeholder("250,000"),
	})
	texts := textOf(t, out)
	assert.Equal(t, "{{unit_price}}", texts[0])
}

func TestResolveNormalizedMatchForLongValues(t *testing.T) {
	// The paragraph carries doubled spaces where the source had a soft line
	// break; values over 20 characters must still match.
	data := docxtest.Build([]string{"Ghi chú: Thanh toán trong vòng  30 ngày kể từ ngày xuất"}, nil)
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"payment_terms": placeholder("Thanh toán trong vòng 30 ngày kể từ ngày xuất"),
	})
	texts := textOf(t, out)
	assert.Equal(t, "Ghi chú: {{payment_terms}}", texts[0])
}

func TestResolveLongerValueWinsOverItsSubstring(t *testing.T) {
	data := docxtest.Build([]string{"Tổng cộng: 1,000,000 VND"}, nil)
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"total_amount":     placeholder("1,000,000"),
		"total_amount_vnd": placeholder("1,000,000 VND"),
	})
	texts := textOf(t, out)
	assert.Equal(t, "Tổng cộng: {{total_amount_vnd}}", texts[0])
}

func TestResolveTableCellsHandledLikeBody(t *testing.T) {
	data := docxtest.Build(
		[]string{"Khách hàng: Beta LLC"},
		[][]string{{"Beta LLC", "500"}},
	)
	r := New(slog.Default())

	out := r.Resolve(data, map[string]analysis.PlaceholderInfo{
		"customer_name": placeholder("Beta LLC"),
		"unit_price":    placeholder("500"),
	})
	texts := textOf(t, out)
	assert.Equal(t, "Khách hàng: {{customer_name}}", texts[0])
	assert.Equal(t, "{{customer_name}}", texts[1])
	assert.Equal(t, "{{unit_price}}", texts[2])
}

func TestDefaultPriorityRanking(t *testing.T) {
	r := New(slog.Default())
	assert.Greater(t, r.priorityFor("total_amount"), r.priorityFor("quantity"))
	assert.Greater(t, r.priorityFor("company_name"), r.priorityFor("unit"))
	assert.Equal(t, defaultPriority, r.priorityFor("unmatched_field"))
}
