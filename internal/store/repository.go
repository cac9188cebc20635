package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// DocumentRepository provides access to Document rows.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Get returns the document with the given id, or nil when it does not exist.
func (r *DocumentRepository) Get(ctx context.Context, id uint) (*Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// FindByHash returns the document with the given content digest, or nil.
func (r *DocumentRepository) FindByHash(ctx context.Context, hash string) (*Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).Where("file_hash = ?", hash).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	return &doc, nil
}

// ListByType returns documents of the given type, newest first. When
// isTemplate is non-nil the template flag is matched as well.
func (r *DocumentRepository) ListByType(ctx context.Context, t DocumentType, isTemplate *bool) ([]Document, error) {
	q := r.db.WithContext(ctx).Where("document_type = ?", t)
	if isTemplate != nil {
		q = q.Where("is_template = ?", *isTemplate)
	}
	var docs []Document
	if err := q.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Templates returns all quote writing models.
func (r *DocumentRepository) Templates(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := r.db.WithContext(ctx).
		Where("document_type = ? AND is_template = ?", TypeQuote, true).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return docs, nil
}

// Search returns documents whose title, reference or extracted text contains
// the term.
func (r *DocumentRepository) Search(ctx context.Context, term string) ([]Document, error) {
	pattern := "%" + term + "%"
	var docs []Document
	err := r.db.WithContext(ctx).
		Where("title LIKE ? OR reference LIKE ? OR extracted_text LIKE ?", pattern, pattern, pattern).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return docs, nil
}

// SetParent links a generated document to its source tender.
func (r *DocumentRepository) SetParent(ctx context.Context, id, parentID uint) error {
	err := r.db.WithContext(ctx).Model(&Document{}).
		Where("id = ?", id).
		Update("parent_id", parentID).Error
	if err != nil {
		return fmt.Errorf("set parent: %w", err)
	}
	return nil
}

// UpdateStatus moves a document to a new lifecycle status.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uint, status DocumentStatus) error {
	err := r.db.WithContext(ctx).Model(&Document{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// Delete removes the document row.
func (r *DocumentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&Document{}, id).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// GenerationRepository provides access to the generation audit trail.
type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create appends one audit record.
func (r *GenerationRepository) Create(ctx context.Context, rec *GenerationRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create generation record: %w", err)
	}
	return nil
}

// List returns records newest first, optionally filtered by source document.
func (r *GenerationRepository) List(ctx context.Context, sourceID *uint) ([]GenerationRecord, error) {
	q := r.db.WithContext(ctx).Model(&GenerationRecord{})
	if sourceID != nil {
		q = q.Where("source_document_id = ?", *sourceID)
	}
	var recs []GenerationRecord
	if err := q.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list generation records: %w", err)
	}
	return recs, nil
}
