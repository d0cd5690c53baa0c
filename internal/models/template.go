package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility of a stored template analysis.
const (
	VisibilitySystem  = "system"
	VisibilityPrivate = "private"
)

// TemplateAnalysis is the persisted record of one template upload: the
// original file, the rewritten templated file and the full analysis result.
// Records are written once and never mutated; re-analysis creates a new row
// with a new ID.
type TemplateAnalysis struct {
	ID               string         `gorm:"primaryKey" json:"id"`
	OwnerID          string         `gorm:"index" json:"owner_id"`
	Filename         string         `gorm:"not null" json:"filename"`
	OriginalName     string         `json:"original_name"`
	OriginalGCSPath  string         `gorm:"not null" json:"original_gcs_path"`
	TemplatedGCSPath string         `gorm:"not null" json:"templated_gcs_path"`
	OriginalURL      string         `json:"original_url"`
	TemplatedURL     string         `json:"templated_url"`
	FileSize         int64          `json:"file_size"`
	MimeType         string         `json:"mime_type"`
	Analysis         string         `gorm:"type:json" json:"analysis"` // TemplateAnalysisResult JSON
	AIAnalysisScore  float64        `json:"ai_analysis_score"`
	AnalysisSource   string         `gorm:"type:varchar(32)" json:"analysis_source"`
	Visibility       string         `gorm:"type:varchar(16);default:'private'" json:"visibility"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TemplateAnalysis) TableName() string {
	return "template_analyses"
}
