package converter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Well-known LibreOffice install locations, probed before falling back to a
// PATH lookup.
var sofficeSearchPaths = []string{
	"/usr/bin/soffice",
	"/usr/local/bin/soffice",
	"/opt/libreoffice/program/soffice",
	"/snap/bin/libreoffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
}

// SofficeBackend converts by invoking a local headless office suite. The
// child process runs under a bounded timeout and all temporary files are
// removed on every exit path, timeout and cancellation included. Temp file
// names are UUID-qualified so concurrent uploads cannot clobber each other.
type SofficeBackend struct {
	executable string
	timeout    time.Duration
	tempDir    string
}

// NewSofficeBackend probes for an office-suite executable. A missing
// executable is not fatal here; Convert reports it per call so the chain can
// fall through.
func NewSofficeBackend(extraPaths []string, timeout time.Duration) *SofficeBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SofficeBackend{
		executable: findSoffice(extraPaths),
		timeout:    timeout,
		tempDir:    os.TempDir(),
	}
}

func findSoffice(extraPaths []string) string {
	candidates := append(append([]string{}, extraPaths...), sofficeSearchPaths...)
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func (b *SofficeBackend) Name() string { return "soffice" }

// Available reports whether an executable was found during the probe.
func (b *SofficeBackend) Available() bool { return b.executable != "" }

func (b *SofficeBackend) Convert(ctx context.Context, docxData []byte, templateID string) ([]byte, error) {
	if b.executable == "" {
		return nil, fmt.Errorf("no office suite executable found")
	}

	workDir := filepath.Join(b.tempDir, "df-anlz-"+uuid.New().String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create conversion work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, templateID+".docx")
	if err := os.WriteFile(inputPath, docxData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write conversion input: %w", err)
	}

	convertCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmd := exec.CommandContext(convertCtx, b.executable,
		"--headless", "--convert-to", "pdf", "--outdir", workDir, inputPath)
	output, err := cmd.CombinedOutput()
	if convertCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("office conversion timed out after %s", b.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("office conversion failed: %w (%s)", err, strings.TrimSpace(string(output)))
	}

	pdfPath := filepath.Join(workDir, templateID+".pdf")
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("office conversion produced no pdf: %w", err)
	}
	return pdf, nil
}
