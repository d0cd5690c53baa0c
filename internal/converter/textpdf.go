package converter

import (
	"bytes"
	"context"
	"fmt"

	"DF-ANLZ/internal/docx"

	"github.com/go-pdf/fpdf"
)

// TextPDFBackend synthesizes a PDF from the document's extracted paragraph
// text. Tables, images and formatting are lost, but the analyzer still gets a
// textual rendering when no office suite is reachable. Succeeds for any
// parseable DOCX.
type TextPDFBackend struct{}

func NewTextPDFBackend() *TextPDFBackend { return &TextPDFBackend{} }

func (b *TextPDFBackend) Name() string { return "textpdf" }

func (b *TextPDFBackend) Convert(ctx context.Context, docxData []byte, templateID string) ([]byte, error) {
	doc, err := docx.Open(docxData)
	if err != nil {
		return nil, fmt.Errorf("failed to read document text: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Template "+templateID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, "Template "+templateID, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, p := range doc.Paragraphs() {
		text := p.Text
		if text == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 6, text, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render text pdf: %w", err)
	}
	return buf.Bytes(), nil
}
