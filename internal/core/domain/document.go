package domain

import (
	"time"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusReady, StatusFailed:
		return true
	default:
		return false
	}
}

type Document struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"project_id,omitempty"`
	Filename        string           `json:"filename"`
	MimeType        string           `json:"mime_type"`
	StoragePath     string           `json:"storage_path"`
	SizeBytes       int64            `json:"size_bytes"`
	PageCount       int              `json:"page_count,omitempty"`
	Category        doctype.Category `json:"category,omitempty"`
	Confidence      float64          `json:"confidence"`
	MatchedKeywords []string         `json:"matched_keywords"`
	Status          DocumentStatus   `json:"status"`
	Error           string           `json:"error,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       *time.Time       `json:"deleted_at,omitempty"`
}

type Classification struct {
	Category        doctype.Category `json:"category"`
	Confidence      float64          `json:"confidence"`
	MatchedKeywords []string         `json:"matched_keywords"`
}

// Inspection holds facts read from the stored file itself.
type Inspection struct {
	PageCount int `json:"page_count"`
}

type DocumentFilter struct {
	ProjectID string
	Category  doctype.Category
	Status    DocumentStatus
	Limit     int
	Offset    int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Normalize clamps paging to the supported window.
func (f DocumentFilter) Normalize() DocumentFilter {
	out := f
	if out.Limit <= 0 {
		out.Limit = DefaultListLimit
	}
	if out.Limit > MaxListLimit {
		out.Limit = MaxListLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

type CategoryCount struct {
	Category    doctype.Category `json:"category"`
	DisplayName string           `json:"display_name"`
	Count       int              `json:"count"`
}

// FilenameClassification is the synchronous answer for a bare filename.
type FilenameClassification struct {
	Filename        string           `json:"filename"`
	Category        doctype.Category `json:"category"`
	SimpleCategory  doctype.Category `json:"simple_category"`
	Confidence      float64          `json:"confidence"`
	MatchedKeywords []string         `json:"matched_keywords"`
	MimeType        string           `json:"mime_type"`
	DisplayName     string           `json:"display_name"`
	IconKey         string           `json:"icon_key"`
	ThemeColor      string           `json:"theme_color"`
}
