package docx

import (
	"testing"

	"DF-ANLZ/internal/docx/docxtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("not a zip archive"))
	assert.Error(t, err)
}

func TestOpenRejectsZipWithoutDocument(t *testing.T) {
	// A valid empty zip is not a word document.
	_, err := Open([]byte{0x50, 0x4b, 0x05, 0x06, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Error(t, err)
}

func TestParagraphsIncludeTableCells(t *testing.T) {
	data := docxtest.Build(
		[]string{"Công ty: Acme Corp", "Báo giá số 001"},
		[][]string{{"Item", "1,000,000"}},
	)
	doc, err := Open(data)
	require.NoError(t, err)

	paragraphs := doc.Paragraphs()
	require.Len(t, paragraphs, 4)
	assert.Equal(t, "Công ty: Acme Corp", paragraphs[0].Text)
	assert.False(t, paragraphs[0].InTable)
	assert.Equal(t, "1,000,000", paragraphs[3].Text)
	assert.True(t, paragraphs[3].InTable)
	assert.True(t, doc.HasTables())
	assert.Equal(t, 4, doc.ParagraphCount())
}

func TestTextJoinsNonEmptyParagraphs(t *testing.T) {
	data := docxtest.Build([]string{"first", "", "second"}, nil)
	doc, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", doc.Text())
}

func TestSplitRunsYieldOneParagraphText(t *testing.T) {
	data := docxtest.BuildSplitRuns([]string{"Acme ", "Corp"})
	doc, err := Open(data)
	require.NoError(t, err)

	paragraphs := doc.Paragraphs()
	require.Len(t, paragraphs, 1)
	assert.Equal(t, "Acme Corp", paragraphs[0].Text)
}

func TestRewriteRoundTrip(t *testing.T) {
	data := docxtest.Build([]string{"Công ty: Acme Corp"}, [][]string{{"1,000,000"}})
	doc, err := Open(data)
	require.NoError(t, err)

	rewritten := doc.RewriteParagraphs(func(p Paragraph) (string, bool) {
		if p.InTable {
			return "{{total_amount}}", true
		}
		return "", false
	})
	assert.Equal(t, 1, rewritten)

	out, err := doc.Bytes()
	require.NoError(t, err)

	reopened, err := Open(out)
	require.NoError(t, err)
	paragraphs := reopened.Paragraphs()
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "Công ty: Acme Corp", paragraphs[0].Text)
	assert.Equal(t, "{{total_amount}}", paragraphs[1].Text)
}

func TestRewriteEscapesMarkup(t *testing.T) {
	data := docxtest.Build([]string{"a < b & c"}, nil)
	doc, err := Open(data)
	require.NoError(t, err)

	doc.RewriteParagraphs(func(p Paragraph) (string, bool) {
		return "x < y & z", true
	})
	out, err := doc.Bytes()
	require.NoError(t, err)

	reopened, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "x < y & z", reopened.Paragraphs()[0].Text)
}

func TestBytesWithoutRewriteKeepsContent(t *testing.T) {
	data := docxtest.Build([]string{"unchanged"}, nil)
	doc, err := Open(data)
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)

	reopened, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", reopened.Text())
}
