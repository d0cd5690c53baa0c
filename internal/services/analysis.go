package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"DF-ANLZ/internal/analysis"
	"DF-ANLZ/internal/docx"
	"DF-ANLZ/internal/models"
	"DF-ANLZ/internal/storage"
	"DF-ANLZ/internal/validator"

	"github.com/google/uuid"
)

// ErrValidation marks a rejected upload; handlers turn it into a 400.
var ErrValidation = errors.New("template validation failed")

// DocumentConverter renders DOCX bytes to PDF, or nil when no backend
// succeeded.
type DocumentConverter interface {
	Convert(ctx context.Context, docxData []byte, templateID string) []byte
}

// SchemaAnalyzer infers the placeholder schema; it never fails.
type SchemaAnalyzer interface {
	Analyze(ctx context.Context, pdfData []byte, textFallback, templateID string) *analysis.TemplateAnalysisResult
}

// PlaceholderResolver rewrites literals into tokens; on failure it returns
// the original bytes.
type PlaceholderResolver interface {
	Resolve(original []byte, placeholders map[string]analysis.PlaceholderInfo) []byte
}

// BlobStore is the object-storage surface the pipeline needs. Satisfied by
// storage.GCSClient.
type BlobStore interface {
	UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*storage.UploadResult, error)
	DeleteFile(ctx context.Context, objectName string) error
	ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
}

// UploadOptions vary per upload route: admin and user uploads carry different
// size ceilings and default visibility.
type UploadOptions struct {
	MaxFileSize int64
	Visibility  string
	OwnerID     string
}

// AnalysisService runs the upload pipeline: validate, convert, analyze,
// resolve, persist. Every collaborator is injected; the service owns no
// hidden state, so concurrent uploads are independent.
type AnalysisService struct {
	converter     DocumentConverter
	analyzer      SchemaAnalyzer
	resolver      PlaceholderResolver
	blobs         BlobStore
	repo          TemplateRepository
	minParagraphs int
	log           *slog.Logger
}

func NewAnalysisService(
	converter DocumentConverter,
	analyzer SchemaAnalyzer,
	resolver PlaceholderResolver,
	blobs BlobStore,
	repo TemplateRepository,
	minParagraphs int,
	log *slog.Logger,
) *AnalysisService {
	if log == nil {
		log = slog.Default()
	}
	return &AnalysisService{
		converter:     converter,
		analyzer:      analyzer,
		resolver:      resolver,
		blobs:         blobs,
		repo:          repo,
		minParagraphs: minParagraphs,
		log:           log,
	}
}

// ProcessTemplateUpload runs one upload through the whole pipeline. PDF
// conversion failing, the analyzer falling back and the resolver returning
// the untouched original are all tolerated; only validation and persistence
// errors abort the upload.
func (s *AnalysisService) ProcessTemplateUpload(ctx context.Context, data []byte, filename string, opts UploadOptions) (*models.TemplateAnalysis, validator.Result, error) {
	v := validator.New(opts.MaxFileSize, s.minParagraphs)
	result := v.Validate(data, filename)
	if !result.IsValid {
		return nil, result, fmt.Errorf("%w: %s", ErrValidation, strings.Join(result.Errors, "; "))
	}

	templateID := uuid.New().String()
	s.log.Info("upload.start",
		"template_id", templateID,
		"filename", filename,
		"size", len(data),
		"warnings", len(result.Warnings),
	)

	textFallback := ""
	if doc, err := docx.Open(data); err == nil {
		textFallback = doc.Text()
	}

	pdfData := s.converter.Convert(ctx, data, templateID)

	analysisResult := s.analyzer.Analyze(ctx, pdfData, textFallback, templateID)

	templated := s.resolver.Resolve(data, analysisResult.Placeholders)

	record, err := s.persist(ctx, templateID, filename, data, templated, analysisResult, opts)
	if err != nil {
		return nil, result, err
	}

	s.log.Info("upload.done",
		"template_id", templateID,
		"source", analysisResult.Source,
		"score", analysisResult.AIAnalysisScore,
	)
	return record, result, nil
}

func (s *AnalysisService) persist(ctx context.Context, templateID, filename string, original, templated []byte, analysisResult *analysis.TemplateAnalysisResult, opts UploadOptions) (*models.TemplateAnalysis, error) {
	originalName := storage.GenerateOriginalObjectName(templateID, filename)
	originalUpload, err := s.blobs.UploadFile(ctx, bytes.NewReader(original), originalName, docx.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload original file: %w", err)
	}

	templatedName := storage.GenerateTemplatedObjectName(templateID, filename)
	templatedUpload, err := s.blobs.UploadFile(ctx, bytes.NewReader(templated), templatedName, docx.MimeType)
	if err != nil {
		s.blobs.DeleteFile(ctx, originalName)
		return nil, fmt.Errorf("failed to upload templated file: %w", err)
	}

	analysisJSON, err := json.Marshal(analysisResult)
	if err != nil {
		s.blobs.DeleteFile(ctx, originalName)
		s.blobs.DeleteFile(ctx, templatedName)
		return nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	visibility := opts.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	record := &models.TemplateAnalysis{
		ID:               templateID,
		OwnerID:          opts.OwnerID,
		Filename:         filename,
		OriginalName:     filename,
		OriginalGCSPath:  originalName,
		TemplatedGCSPath: templatedName,
		OriginalURL:      originalUpload.PublicURL,
		TemplatedURL:     templatedUpload.PublicURL,
		FileSize:         originalUpload.Size,
		MimeType:         docx.MimeType,
		Analysis:         string(analysisJSON),
		AIAnalysisScore:  analysisResult.AIAnalysisScore,
		AnalysisSource:   string(analysisResult.Source),
		Visibility:       visibility,
	}

	if err := s.repo.Save(ctx, record); err != nil {
		s.blobs.DeleteFile(ctx, originalName)
		s.blobs.DeleteFile(ctx, templatedName)
		return nil, fmt.Errorf("failed to save template analysis record: %w", err)
	}
	return record, nil
}

// GetTemplate loads one stored analysis record.
func (s *AnalysisService) GetTemplate(ctx context.Context, templateID string) (*models.TemplateAnalysis, error) {
	return s.repo.Get(ctx, templateID)
}

// GetAnalysisResult decodes the stored analysis JSON of a record.
func (s *AnalysisService) GetAnalysisResult(ctx context.Context, templateID string) (*analysis.TemplateAnalysisResult, error) {
	record, err := s.repo.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	var result analysis.TemplateAnalysisResult
	if err := json.Unmarshal([]byte(record.Analysis), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
	}
	return &result, nil
}

// GetTemplatedFileReader streams the templated document for download.
func (s *AnalysisService) GetTemplatedFileReader(ctx context.Context, templateID string) (io.ReadCloser, string, error) {
	record, err := s.repo.Get(ctx, templateID)
	if err != nil {
		return nil, "", err
	}
	reader, err := s.blobs.ReadFile(ctx, record.TemplatedGCSPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read templated file: %w", err)
	}
	return reader, record.Filename, nil
}

// DeleteTemplate removes the stored files and soft-deletes the record. Blob
// deletion failures are logged but do not block the record deletion.
func (s *AnalysisService) DeleteTemplate(ctx context.Context, templateID string) error {
	record, err := s.repo.Get(ctx, templateID)
	if err != nil {
		return err
	}

	for _, objectName := range []string{record.OriginalGCSPath, record.TemplatedGCSPath} {
		if objectName == "" {
			continue
		}
		if err := s.blobs.DeleteFile(ctx, objectName); err != nil {
			s.log.Warn("delete.blob_failed", "template_id", templateID, "object", objectName, "error", err)
		}
	}

	return s.repo.Delete(ctx, templateID)
}
