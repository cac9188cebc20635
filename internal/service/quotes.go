package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tenderloom/tenderloom/internal/ai"
	"github.com/tenderloom/tenderloom/internal/docgen"
	"github.com/tenderloom/tenderloom/internal/prompt"
	"github.com/tenderloom/tenderloom/internal/store"
	"github.com/tenderloom/tenderloom/internal/utils"
)

// Backend is the model capability set the pipeline depends on. *ai.Client
// implements it; tests substitute a stub.
type Backend interface {
	Model() string
	CheckAvailability(ctx context.Context) bool
	ListModels(ctx context.Context) []string
	Generate(ctx context.Context, req ai.Request) (string, error)
	GenerateStream(ctx context.Context, req ai.Request, onDelta func(string)) error
}

// EventStatus tags progress events emitted during streaming generation.
type EventStatus string

const (
	EventGenerating EventStatus = "generating"
	EventCompleted  EventStatus = "completed"
)

// Event is one streaming progress notification. Generating events carry a
// text fragment; the final completed event carries the persisted document and
// the wall-clock duration.
type Event struct {
	Status   EventStatus
	Chunk    string
	Document *store.Document
	Seconds  int
}

// Analysis is the result of a tender analysis call.
type Analysis struct {
	DocumentID uint
	Reference  string
	Analysis   string
}

// HistoryEntry is one audit record enriched with the document titles.
type HistoryEntry struct {
	Record         store.GenerationRecord
	SourceTitle    string
	GeneratedTitle string
}

// QuoteService generates price quotes from tenders.
type QuoteService struct {
	documents    *DocumentService
	docs         *store.DocumentRepository
	gens         *store.GenerationRepository
	backend      Backend
	generatedDir string
	promptBudget int
}

// NewQuoteService wires the generation pipeline. promptBudget is the model
// context window in tokens; template texts are trimmed to fit it. Zero
// disables trimming.
func NewQuoteService(documents *DocumentService, docs *store.DocumentRepository, gens *store.GenerationRepository, backend Backend, generatedDir string, promptBudget int) *QuoteService {
	return &QuoteService{
		documents:    documents,
		docs:         docs,
		gens:         gens,
		backend:      backend,
		generatedDir: generatedDir,
		promptBudget: promptBudget,
	}
}

// AnalyzeTender runs the blocking analysis of a tender document.
func (s *QuoteService) AnalyzeTender(ctx context.Context, tenderID uint) (*Analysis, error) {
	tender, err := s.documents.Get(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	pair := prompt.ForAnalysis(tender.ExtractedText)
	text, err := s.backend.Generate(ctx, ai.Request{Prompt: pair.User, System: pair.System})
	if err != nil {
		return nil, err
	}
	return &Analysis{DocumentID: tender.ID, Reference: tender.Reference, Analysis: text}, nil
}

// AnalyzeTenderStream streams the analysis text fragment by fragment. The
// analysis flow stops after orchestration; nothing is parsed or persisted.
func (s *QuoteService) AnalyzeTenderStream(ctx context.Context, tenderID uint, onDelta func(string)) error {
	tender, err := s.documents.Get(ctx, tenderID)
	if err != nil {
		return err
	}
	pair := prompt.ForAnalysis(tender.ExtractedText)
	return s.backend.GenerateStream(ctx, ai.Request{Prompt: pair.User, System: pair.System}, onDelta)
}

// buildGenerationPrompt resolves the tender and template texts into the
// generation prompt pair. With no explicit template ids, every stored writing
// model is used.
func (s *QuoteService) buildGenerationPrompt(ctx context.Context, tender *store.Document, templateIDs []uint, additionalContext string) (prompt.Pair, error) {
	var templateTexts []string
	if len(templateIDs) > 0 {
		for _, id := range templateIDs {
			tpl, err := s.docs.Get(ctx, id)
			if err != nil {
				return prompt.Pair{}, err
			}
			if tpl != nil && tpl.ExtractedText != "" {
				templateTexts = append(templateTexts, tpl.ExtractedText)
			}
		}
	} else {
		templates, err := s.documents.Templates(ctx)
		if err != nil {
			return prompt.Pair{}, err
		}
		for _, tpl := range templates {
			if tpl.ExtractedText != "" {
				templateTexts = append(templateTexts, tpl.ExtractedText)
			}
		}
	}
	templateTexts = s.fitTemplates(tender, templateTexts, additionalContext)
	return prompt.ForGeneration(tender.ExtractedText, templateTexts, additionalContext), nil
}

// fitTemplates trims the template texts so the full prompt stays within the
// model's context window. The tender text and instructions are never cut;
// templates are kept in order until the budget runs out, the last one
// truncated to the remainder.
func (s *QuoteService) fitTemplates(tender *store.Document, templateTexts []string, additionalContext string) []string {
	if s.promptBudget <= 0 || len(templateTexts) == 0 {
		return templateTexts
	}
	base := prompt.ForGeneration(tender.ExtractedText, nil, additionalContext)
	remaining := s.promptBudget - utils.CountTokens(base.System) - utils.CountTokens(base.User)
	var kept []string
	for _, text := range templateTexts {
		if remaining <= 0 {
			break
		}
		trimmed := utils.TruncateToTokenLimit(text, remaining)
		if trimmed == "" {
			break
		}
		kept = append(kept, trimmed)
		remaining -= utils.CountTokens(trimmed)
	}
	return kept
}

// GenerateQuote runs the whole pipeline in one blocking call and returns the
// persisted generated document.
func (s *QuoteService) GenerateQuote(ctx context.Context, tenderID uint, templateIDs []uint, additionalContext string) (*store.Document, error) {
	start := time.Now()
	tender, err := s.documents.Get(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	pair, err := s.buildGenerationPrompt(ctx, tender, templateIDs, additionalContext)
	if err != nil {
		return nil, err
	}
	content, err := s.backend.Generate(ctx, ai.Request{Prompt: pair.User, System: pair.System})
	if err != nil {
		return nil, err
	}
	generated, _, err := s.finalize(ctx, tender, templateIDs, pair.User, content, start)
	return generated, err
}

// GenerateQuoteStream runs the pipeline with incremental delivery: one
// generating event per fragment, then a single completed event with the
// persisted document. A failed stream emits no completed event and leaves no
// document and no audit record.
func (s *QuoteService) GenerateQuoteStream(ctx context.Context, tenderID uint, templateIDs []uint, additionalContext string, emit func(Event)) error {
	start := time.Now()
	tender, err := s.documents.Get(ctx, tenderID)
	if err != nil {
		return err
	}
	pair, err := s.buildGenerationPrompt(ctx, tender, templateIDs, additionalContext)
	if err != nil {
		return err
	}

	var full strings.Builder
	err = s.backend.GenerateStream(ctx, ai.Request{Prompt: pair.User, System: pair.System}, func(delta string) {
		full.WriteString(delta)
		emit(Event{Status: EventGenerating, Chunk: delta})
	})
	if err != nil {
		return err
	}

	generated, seconds, err := s.finalize(ctx, tender, templateIDs, pair.User, full.String(), start)
	if err != nil {
		return err
	}
	emit(Event{Status: EventCompleted, Document: generated, Seconds: seconds})
	return nil
}

// finalize renders the generated content to a Word document, ingests it as a
// generated document linked to the tender, and writes the audit record.
func (s *QuoteService) finalize(ctx context.Context, tender *store.Document, templateIDs []uint, userPrompt, content string, start time.Time) (*store.Document, int, error) {
	if err := os.MkdirAll(s.generatedDir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("mkdir generated dir: %w", err)
	}
	filename := fmt.Sprintf("Offre_%s_%s.docx", tender.Reference, time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(s.generatedDir, filename)

	blocks := docgen.Parse(content)
	title := "Offre de Prix - " + tender.Reference
	if err := docgen.WriteDocument(blocks, title, tender.Reference, outputPath, ""); err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, 0, fmt.Errorf("read generated document: %w", err)
	}

	generated, err := s.documents.Upload(ctx, UploadInput{
		Content:     data,
		Filename:    filename,
		Type:        store.TypeGenerated,
		Reference:   "OFF-" + tender.Reference,
		Title:       "Offre générée pour " + tender.Reference,
		Description: fmt.Sprintf("Offre automatiquement générée à partir de l'appel d'offre %s", tender.Reference),
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.docs.SetParent(ctx, generated.ID, tender.ID); err != nil {
		return nil, 0, err
	}
	parentID := tender.ID
	generated.ParentID = &parentID

	seconds := int(time.Since(start).Seconds())
	ids := templateIDs
	if ids == nil {
		ids = []uint{}
	}
	templatesJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal template ids: %w", err)
	}
	rec := &store.GenerationRecord{
		SourceDocumentID:    tender.ID,
		GeneratedDocumentID: generated.ID,
		TemplatesUsed:       string(templatesJSON),
		PromptUsed:          truncate(userPrompt, store.MaxStoredPromptLen),
		ModelUsed:           s.backend.Model(),
		GenerationTime:      seconds,
	}
	if err := s.gens.Create(ctx, rec); err != nil {
		return nil, 0, err
	}
	return generated, seconds, nil
}

// History lists past generations newest first, optionally filtered by source
// document, with document titles resolved for display.
func (s *QuoteService) History(ctx context.Context, sourceID *uint) ([]HistoryEntry, error) {
	recs, err := s.gens.List(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entry := HistoryEntry{Record: rec}
		if doc, err := s.docs.Get(ctx, rec.SourceDocumentID); err == nil && doc != nil {
			entry.SourceTitle = doc.Title
		}
		if doc, err := s.docs.Get(ctx, rec.GeneratedDocumentID); err == nil && doc != nil {
			entry.GeneratedTitle = doc.Title
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
