// Package converter renders an uploaded DOCX to PDF so the vision analyzer
// can see a faithful layout. Backends are tried in order; any failure falls
// through to the next one.
package converter

import (
	"context"
	"log/slog"
)

// Backend converts DOCX bytes to PDF bytes. Implementations return an error
// for every failure mode; the chain decides what happens next.
type Backend interface {
	Name() string
	Convert(ctx context.Context, docxData []byte, templateID string) ([]byte, error)
}

// Chain tries each backend sequentially and returns the first successful
// conversion. Convert returns nil only when every backend failed; callers
// must treat nil as "proceed without a PDF", not as a fatal condition.
type Chain struct {
	backends []Backend
	log      *slog.Logger
}

func NewChain(log *slog.Logger, backends ...Backend) *Chain {
	if log == nil {
		log = slog.Default()
	}
	return &Chain{backends: backends, log: log}
}

func (c *Chain) Convert(ctx context.Context, docxData []byte, templateID string) []byte {
	for _, backend := range c.backends {
		pdf, err := backend.Convert(ctx, docxData, templateID)
		if err != nil {
			c.log.Warn("pdf.convert.backend_failed",
				"template_id", templateID,
				"backend", backend.Name(),
				"error", err,
			)
			continue
		}
		if len(pdf) == 0 {
			c.log.Warn("pdf.convert.empty_output",
				"template_id", templateID,
				"backend", backend.Name(),
			)
			continue
		}
		c.log.Info("pdf.convert.ok",
			"template_id", templateID,
			"backend", backend.Name(),
			"pdf_bytes", len(pdf),
		)
		return pdf
	}

	c.log.Warn("pdf.convert.all_backends_failed", "template_id", templateID)
	return nil
}
