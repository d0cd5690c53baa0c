package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
)

// GotenbergBackend converts through a remote Gotenberg instance running
// LibreOffice. It preserves tables and layout, which matters for correct
// section inference downstream.
type GotenbergBackend struct {
	client  *gotenberg.Client
	timeout time.Duration
}

func NewGotenbergBackend(url string, timeoutStr string) (*GotenbergBackend, error) {
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	client, err := gotenberg.NewClient(url, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create gotenberg client: %w", err)
	}

	return &GotenbergBackend{client: client, timeout: timeout}, nil
}

func (b *GotenbergBackend) Name() string { return "gotenberg" }

func (b *GotenbergBackend) Convert(ctx context.Context, docxData []byte, templateID string) ([]byte, error) {
	convertCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	doc, err := document.FromReader(templateID+".docx", bytes.NewReader(docxData))
	if err != nil {
		return nil, fmt.Errorf("failed to create document from reader: %w", err)
	}

	req := gotenberg.NewLibreOfficeRequest(doc)
	resp, err := b.client.Send(convertCtx, req)
	if err != nil {
		return nil, fmt.Errorf("gotenberg conversion failed: %w", err)
	}
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gotenberg response: %w", err)
	}
	return pdf, nil
}
