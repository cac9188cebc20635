// Package service implements the generation pipeline: deduplicated document
// ingestion, tender analysis and quote generation against a model backend.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tenderloom/tenderloom/internal/extract"
	"github.com/tenderloom/tenderloom/internal/store"
)

// NotFoundError reports a referenced document id that does not exist. It is
// surfaced before any model call is made.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %d non trouvé", e.ID)
}

// DocumentService manages stored documents.
type DocumentService struct {
	docs  *store.DocumentRepository
	files *store.ContentStore
}

func NewDocumentService(docs *store.DocumentRepository, files *store.ContentStore) *DocumentService {
	return &DocumentService{docs: docs, files: files}
}

// UploadInput describes one ingestion request.
type UploadInput struct {
	Content     []byte
	Filename    string
	Type        store.DocumentType
	Reference   string
	Title       string
	Description string
	IsTemplate  bool
}

// Upload stores the bytes, extracts their text and creates the document
// record. Ingestion is idempotent on content: when the digest is already
// known the fresh file is discarded and the existing record returned.
// Extraction failures never abort the upload; the failure text is stored in
// place of the extracted text.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*store.Document, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("invalid document type %q", in.Type)
	}
	path, digest, err := s.files.Put(in.Content, in.Filename)
	if err != nil {
		return nil, err
	}
	existing, err := s.docs.FindByHash(ctx, digest)
	if err != nil {
		_ = s.files.Remove(path)
		return nil, err
	}
	if existing != nil {
		// Identical content already stored: keep the original record.
		_ = s.files.Remove(path)
		return existing, nil
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	text := extract.Text(path, ext)

	reference := in.Reference
	title := in.Title
	if in.Type == store.TypeTender && reference == "" {
		info := extract.KeyInformation(text)
		if info.Reference != "" {
			reference = info.Reference
		}
		if title == "" && info.Title != "" {
			title = info.Title
		}
	}
	if reference == "" {
		reference = "DOC-" + time.Now().Format("20060102150405")
	}
	if title == "" {
		title = in.Filename
	}

	doc := &store.Document{
		Filename:         filepath.Base(path),
		OriginalFilename: in.Filename,
		FilePath:         path,
		FileType:         strings.TrimPrefix(ext, "."),
		DocumentType:     in.Type,
		Reference:        reference,
		Title:            title,
		Description:      in.Description,
		ExtractedText:    text,
		FileHash:         digest,
		IsTemplate:       in.IsTemplate,
		Status:           store.StatusCompleted,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		_ = s.files.Remove(path)
		return nil, err
	}
	return doc, nil
}

// Get returns a document by id, or a NotFoundError.
func (s *DocumentService) Get(ctx context.Context, id uint) (*store.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &NotFoundError{ID: id}
	}
	return doc, nil
}

// ListByType returns documents of the given type, optionally filtered by the
// template flag.
func (s *DocumentService) ListByType(ctx context.Context, t store.DocumentType, isTemplate *bool) ([]store.Document, error) {
	return s.docs.ListByType(ctx, t, isTemplate)
}

// Search finds documents by substring across title, reference and text.
func (s *DocumentService) Search(ctx context.Context, term string) ([]store.Document, error) {
	return s.docs.Search(ctx, term)
}

// Templates returns all quote writing models.
func (s *DocumentService) Templates(ctx context.Context) ([]store.Document, error) {
	return s.docs.Templates(ctx)
}

// Delete removes the document and its backing file.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return &NotFoundError{ID: id}
	}
	if err := s.files.Remove(doc.FilePath); err != nil {
		return err
	}
	return s.docs.Delete(ctx, id)
}
