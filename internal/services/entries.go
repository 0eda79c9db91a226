package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/phrasebook/internal/analysis"
	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/embedding"
	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/similarity"
)

const DefaultSimilarLimit = 5

var (
	ErrNotFound        = entries.ErrNotFound
	ErrVersionConflict = entries.ErrVersionConflict
	ErrEmptyContent    = errors.New("content is required")
)

type CreateInput struct {
	Content  string
	Source   string
	Note     string
	DeviceID string
}

// UpdateInput carries a direct edit. Nil fields stay as stored.
type UpdateInput struct {
	Content  *string
	Source   *string
	Note     *string
	Tags     []string
	DeviceID string
}

// SimilarEntry is a neighbour of an entry; Similarity is 1 - cosine distance.
type SimilarEntry struct {
	Entry      entities.Entry `json:"entry"`
	Similarity float32        `json:"similarity"`
}

// EntryService ties the entry store to analysis, embedding and the
// similarity index.
type EntryService struct {
	store     EntryStore
	index     VectorIndex
	embedder  embedding.Embedder
	analyzer  analysis.Analyzer
	scheduler ReanalysisScheduler
	events    EventLogger

	// indexMu orders read-then-upsert index writes against each other.
	indexMu sync.Mutex
}

func NewEntryService(store EntryStore, index VectorIndex, embedder embedding.Embedder, analyzer analysis.Analyzer) *EntryService {
	if analyzer == nil {
		analyzer = analysis.Disabled{}
	}
	return &EntryService{
		store:    store,
		index:    index,
		embedder: embedder,
		analyzer: analyzer,
	}
}

// SetReanalysisScheduler wires the task queue once it exists; the queue's
// processors depend on this service.
func (s *EntryService) SetReanalysisScheduler(scheduler ReanalysisScheduler) {
	s.scheduler = scheduler
}

func (s *EntryService) SetEventLogger(events EventLogger) {
	s.events = events
}

// Create analyzes, stores and indexes a new entry. Analysis failures fall
// back to the default record and schedule a retry.
func (s *EntryService) Create(ctx context.Context, input CreateInput) (*entities.Entry, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyContent
	}

	result := s.analyze(ctx, input.Content, input.Source, input.Note)
	analysisJSON, err := result.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}

	entry := &entities.Entry{
		Content:    input.Content,
		EntryType:  result.EntryType,
		Source:     input.Source,
		Note:       input.Note,
		AIAnalysis: analysisJSON,
		Tags:       entities.JoinTags(result.Tags),
		DeviceID:   input.DeviceID,
	}
	if err := s.store.CreateEntry(entry); err != nil {
		s.logEvent(entities.AuditEventCreate, input.DeviceID, 0, "create entry", err)
		return nil, err
	}

	if err := s.RefreshIndex(entry.ID); err != nil {
		log.Printf("[INDEX] Failed to index entry %d: %v", entry.ID, err)
	}

	if result.Fallback && s.scheduler != nil {
		if err := s.scheduler.ScheduleReanalysis(entry.ID, entry.Version); err != nil {
			log.Printf("[ANALYSIS] Failed to schedule reanalysis of entry %d: %v", entry.ID, err)
		}
	}

	s.logEvent(entities.AuditEventCreate, input.DeviceID, entry.ID, "created "+string(entry.EntryType), nil)
	return entry, nil
}

func (s *EntryService) analyze(ctx context.Context, content, source, note string) *analysis.Result {
	result, err := s.analyzer.Analyze(ctx, content, source, note)
	if err != nil {
		if !errors.Is(err, analysis.ErrDisabled) {
			log.Printf("[ANALYSIS] Using fallback analysis: %v", err)
		}
		return analysis.Fallback(content, source)
	}
	return result
}

func (s *EntryService) List(offset, limit int) ([]entities.Entry, error) {
	return s.store.ListEntries(offset, limit)
}

// Get returns a live entry. Tombstones are reported as not found.
func (s *EntryService) Get(id uint) (*entities.Entry, error) {
	entry, err := s.store.GetEntryByID(id)
	if err != nil {
		return nil, err
	}
	if entry.Deleted {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *EntryService) Search(query string) ([]entities.Entry, error) {
	if query == "" {
		return []entities.Entry{}, nil
	}
	return s.store.SearchEntries(query)
}

// Changes lists live entries updated since the given time, optionally
// leaving out one device's own writes.
func (s *EntryService) Changes(since time.Time, excludeDeviceID string) ([]entities.Entry, error) {
	return s.store.EntriesSince(since, excludeDeviceID)
}

// FindSimilar ranks other entries by embedding distance to entry id.
func (s *EntryService) FindSimilar(id uint, limit int) ([]SimilarEntry, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	entry, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	matches := s.index.Query(s.embedder.Embed(entry.Content), limit+1)

	similar := make([]SimilarEntry, 0, limit)
	for _, match := range matches {
		if match.ID == id {
			continue
		}
		neighbour, err := s.store.GetEntryByID(match.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if neighbour.Deleted {
			continue
		}
		similar = append(similar, SimilarEntry{Entry: *neighbour, Similarity: 1 - match.Distance})
		if len(similar) == limit {
			break
		}
	}
	return similar, nil
}

// Update applies a direct edit guarded by expectedVersion. Changing the
// content re-runs analysis and re-indexes the entry.
func (s *EntryService) Update(ctx context.Context, id uint, input UpdateInput, expectedVersion int) (*entities.Entry, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	fields := entities.EntryFields{
		Source: input.Source,
		Note:   input.Note,
	}
	if input.DeviceID != "" {
		fields.DeviceID = &input.DeviceID
	}

	if input.Content != nil && *input.Content != current.Content {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, ErrEmptyContent
		}
		source := current.Source
		if input.Source != nil {
			source = *input.Source
		}
		result := s.analyze(ctx, *input.Content, source, current.Note)
		analysisJSON, err := result.JSON()
		if err != nil {
			return nil, fmt.Errorf("encode analysis: %w", err)
		}
		tags := entities.JoinTags(result.Tags)
		fields.Content = input.Content
		fields.EntryType = &result.EntryType
		fields.AIAnalysis = &analysisJSON
		fields.Tags = &tags
	}
	if input.Tags != nil {
		tags := entities.JoinTags(entities.NormalizeTags(input.Tags))
		fields.Tags = &tags
	}

	updated, err := s.store.UpdateVersioned(id, fields, expectedVersion)
	if err != nil {
		s.logEvent(entities.AuditEventUpdate, input.DeviceID, id, "update entry", err)
		return nil, err
	}

	if err := s.RefreshIndex(updated.ID); err != nil {
		log.Printf("[INDEX] Failed to re-index entry %d: %v", id, err)
	}
	s.logEvent(entities.AuditEventUpdate, input.DeviceID, id, fmt.Sprintf("updated to version %d", updated.Version), nil)
	return updated, nil
}

// Delete hard-deletes the entry and drops its vector.
func (s *EntryService) Delete(id uint, deviceID string) error {
	if err := s.store.DeleteEntry(id); err != nil {
		return err
	}
	if err := s.RemoveFromIndex(id); err != nil {
		log.Printf("[INDEX] Failed to remove entry %d: %v", id, err)
	}
	s.logEvent(entities.AuditEventDelete, deviceID, id, "deleted entry", nil)
	return nil
}

// Reanalyze retries analysis for an entry still at version. An entry that
// moved on or disappeared is left alone.
func (s *EntryService) Reanalyze(ctx context.Context, id uint, version int) error {
	entry, err := s.store.GetEntryByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if entry.Deleted || entry.Version != version {
		return nil
	}

	result, err := s.analyzer.Analyze(ctx, entry.Content, entry.Source, entry.Note)
	if err != nil {
		return fmt.Errorf("reanalyze entry %d: %w", id, err)
	}
	analysisJSON, err := result.JSON()
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	tags := entities.JoinTags(result.Tags)

	updated, err := s.store.UpdateVersioned(id, entities.EntryFields{
		EntryType:  &result.EntryType,
		AIAnalysis: &analysisJSON,
		Tags:       &tags,
	}, version)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrNotFound) {
			log.Printf("[ANALYSIS] Entry %d changed during reanalysis, dropping result", id)
			return nil
		}
		return err
	}

	if err := s.RefreshIndex(updated.ID); err != nil {
		log.Printf("[INDEX] Failed to re-index entry %d: %v", id, err)
	}
	return nil
}

// RefreshIndex re-reads entry id and makes its vector match the stored row.
// Live entries are re-embedded; tombstones and missing rows are dropped.
// Refreshes are serialized, so the last one to run sees the newest commit.
func (s *EntryService) RefreshIndex(id uint) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	entry, err := s.store.GetEntryByID(id)
	if errors.Is(err, ErrNotFound) {
		return s.index.Remove(id)
	}
	if err != nil {
		return err
	}
	if entry.Deleted {
		return s.index.Remove(id)
	}
	return s.indexEntry(entry)
}

func (s *EntryService) indexEntry(entry *entities.Entry) error {
	return s.index.Upsert(entry.ID, entry.Content, s.embedder.Embed(entry.Content), similarity.Metadata{
		EntryType: string(entry.EntryType),
		Tags:      entry.Tags,
	})
}

func (s *EntryService) RemoveFromIndex(id uint) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	return s.index.Remove(id)
}

// RebuildIndex re-embeds every live entry and replaces the index contents.
func (s *EntryService) RebuildIndex() (int, error) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	live, err := s.store.AllLiveEntries()
	if err != nil {
		s.logEvent(entities.AuditEventReindex, "", 0, "rebuild index", err)
		return 0, fmt.Errorf("load entries: %w", err)
	}

	records := make([]similarity.Record, 0, len(live))
	for _, entry := range live {
		records = append(records, similarity.Record{
			ID:        entry.ID,
			Content:   entry.Content,
			Embedding: s.embedder.Embed(entry.Content),
			Metadata: similarity.Metadata{
				EntryType: string(entry.EntryType),
				Tags:      entry.Tags,
			},
		})
	}

	if err := s.index.Reset(records); err != nil {
		s.logEvent(entities.AuditEventReindex, "", 0, "rebuild index", err)
		return 0, fmt.Errorf("reset index: %w", err)
	}

	log.Printf("[INDEX] Rebuilt index with %d entries", len(records))
	s.logEvent(entities.AuditEventReindex, "", 0, fmt.Sprintf("rebuilt index with %d entries", len(records)), nil)
	return len(records), nil
}

// IndexSize reports how many vectors the index holds.
func (s *EntryService) IndexSize() int {
	return s.index.Len()
}

func (s *EntryService) logEvent(eventType entities.AuditEventType, deviceID string, entryID uint, description string, err error) {
	if s.events == nil {
		return
	}
	s.events.LogEntryEvent(eventType, deviceID, entryID, description, err)
}
