package services

import (
	"context"
	"fmt"

	"DF-ANLZ/internal"
	"DF-ANLZ/internal/models"
)

// TemplateRepository persists analysis records. The pipeline only ever saves
// and reads whole records keyed by template ID.
type TemplateRepository interface {
	Save(ctx context.Context, record *models.TemplateAnalysis) error
	Get(ctx context.Context, templateID string) (*models.TemplateAnalysis, error)
	Delete(ctx context.Context, templateID string) error
}

// GormTemplateRepository stores records in MySQL through the shared GORM
// handle.
type GormTemplateRepository struct{}

func NewGormTemplateRepository() *GormTemplateRepository {
	return &GormTemplateRepository{}
}

func (r *GormTemplateRepository) Save(ctx context.Context, record *models.TemplateAnalysis) error {
	if err := internal.DB.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save template analysis: %w", err)
	}
	return nil
}

func (r *GormTemplateRepository) Get(ctx context.Context, templateID string) (*models.TemplateAnalysis, error) {
	var record models.TemplateAnalysis
	if err := internal.DB.WithContext(ctx).First(&record, "id = ?", templateID).Error; err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	return &record, nil
}

func (r *GormTemplateRepository) Delete(ctx context.Context, templateID string) error {
	record, err := r.Get(ctx, templateID)
	if err != nil {
		return err
	}
	return internal.DB.WithContext(ctx).Delete(record).Error
}
