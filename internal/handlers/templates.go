package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"DF-ANLZ/internal/config"
	"DF-ANLZ/internal/docx"
	"DF-ANLZ/internal/models"
	"DF-ANLZ/internal/services"

	"github.com/gin-gonic/gin"
)

type TemplatesHandler struct {
	analysisService *services.AnalysisService
	upload          config.UploadConfig
}

func NewTemplatesHandler(analysisService *services.AnalysisService, upload config.UploadConfig) *TemplatesHandler {
	return &TemplatesHandler{
		analysisService: analysisService,
		upload:          upload,
	}
}

type AnalyzeResponse struct {
	TemplateID      string   `json:"template_id"`
	Filename        string   `json:"filename"`
	AnalysisSource  string   `json:"analysis_source"`
	AIAnalysisScore float64  `json:"ai_analysis_score"`
	TemplatedURL    string   `json:"templated_url"`
	Warnings        []string `json:"warnings,omitempty"`
	Message         string   `json:"message"`
}

// AnalyzeTemplate handles the admin upload route. Admin uploads get the large
// size ceiling and land as system-visible templates.
func (h *TemplatesHandler) AnalyzeTemplate(c *gin.Context) {
	h.analyze(c, services.UploadOptions{
		MaxFileSize: h.upload.AdminMaxBytes,
		Visibility:  models.VisibilitySystem,
		OwnerID:     c.GetHeader("X-Owner-ID"),
	})
}

// AnalyzeUserTemplate handles the user upload route with the smaller ceiling
// and private visibility.
func (h *TemplatesHandler) AnalyzeUserTemplate(c *gin.Context) {
	ownerID := c.GetHeader("X-Owner-ID")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owner ID is required"})
		return
	}
	h.analyze(c, services.UploadOptions{
		MaxFileSize: h.upload.UserMaxBytes,
		Visibility:  models.VisibilityPrivate,
		OwnerID:     ownerID,
	})
}

func (h *TemplatesHandler) analyze(c *gin.Context, opts services.UploadOptions) {
	file, header, err := c.Request.FormFile("template")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, opts.MaxFileSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	record, result, err := h.analysisService.ProcessTemplateUpload(c.Request.Context(), data, header.Filename, opts)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Template validation failed",
				"details":  result.Errors,
				"warnings": result.Warnings,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze template"})
		return
	}

	c.Set("template_id", record.ID)

	c.JSON(http.StatusOK, AnalyzeResponse{
		TemplateID:      record.ID,
		Filename:        record.Filename,
		AnalysisSource:  record.AnalysisSource,
		AIAnalysisScore: record.AIAnalysisScore,
		TemplatedURL:    record.TemplatedURL,
		Warnings:        result.Warnings,
		Message:         "Template analyzed successfully",
	})
}

// GetTemplate returns the stored record including the full analysis result.
func (h *TemplatesHandler) GetTemplate(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	record, err := h.analysisService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	result, err := h.analysisService.GetAnalysisResult(c.Request.Context(), templateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analysis result"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"template": record,
		"analysis": result,
	})
}

// DownloadTemplate streams the templated DOCX back to the caller.
func (h *TemplatesHandler) DownloadTemplate(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	reader, filename, err := h.analysisService.GetTemplatedFileReader(c.Request.Context(), templateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	defer reader.Close()

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", docx.MimeType)

	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}

// DeleteTemplate removes the stored files and the record.
func (h *TemplatesHandler) DeleteTemplate(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	if err := h.analysisService.DeleteTemplate(c.Request.Context(), templateID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}
