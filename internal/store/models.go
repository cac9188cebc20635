package store

import "time"

// DocumentType classifies stored documents.
type DocumentType string

const (
	// TypeTender is an uploaded appel d'offre (generation input).
	TypeTender DocumentType = "appel_offre"
	// TypeQuote is an offre de prix writing model (generation reference).
	TypeQuote DocumentType = "offre_prix"
	// TypeGenerated is a quote produced by the pipeline.
	TypeGenerated DocumentType = "generated"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeTender, TypeQuote, TypeGenerated:
		return true
	}
	return false
}

// DocumentStatus tracks a document through its ingestion lifecycle.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusError      DocumentStatus = "error"
)

// Valid reports whether s is one of the known statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Document is a stored source, template or generated file. Immutable once
// created except for status and, for generated quotes, the parent link.
type Document struct {
	ID               uint   `gorm:"primaryKey"`
	Filename         string `gorm:"size:255;not null"`
	OriginalFilename string `gorm:"size:255;not null"`
	FilePath         string `gorm:"size:500;not null"`
	FileType         string `gorm:"size:10;not null"`
	DocumentType     DocumentType `gorm:"size:20;not null;index"`

	Reference   string `gorm:"size:100;index"`
	Title       string `gorm:"size:500"`
	Description string

	// Plain text extracted at ingestion, used for prompts and search.
	ExtractedText string

	Status    DocumentStatus `gorm:"size:20"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Content digest for deduplication.
	FileHash string `gorm:"size:64;uniqueIndex"`

	// For generated quotes, the tender that produced them.
	ParentID *uint

	IsTemplate bool
}

// GenerationRecord is the immutable audit entry written once per completed
// generation. Never updated or deleted by the pipeline.
type GenerationRecord struct {
	ID                  uint `gorm:"primaryKey"`
	SourceDocumentID    uint `gorm:"not null;index"`
	GeneratedDocumentID uint `gorm:"not null"`
	// Template document ids serialized as a JSON array.
	TemplatesUsed string

	PromptUsed     string
	ModelUsed      string `gorm:"size:100"`
	GenerationTime int    // whole seconds

	CreatedAt time.Time
}

// MaxStoredPromptLen caps the prompt text persisted in a GenerationRecord.
const MaxStoredPromptLen = 5000
