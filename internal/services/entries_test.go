package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/phrasebook/internal/analysis"
	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/embedding"
	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/similarity"
)

type stubAnalyzer struct {
	err   error
	calls int
}

func (a *stubAnalyzer) Analyze(_ context.Context, content, source, _ string) (*analysis.Result, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	result := analysis.Fallback(content, source)
	result.Fallback = false
	if result.Word != nil {
		result.Word.PartOfSpeech = "noun"
		result.Word.Definition = "a real definition"
	}
	result.Tags = analysis.BuildTags(result, source)
	return result, nil
}

type recordingScheduler struct {
	mu    sync.Mutex
	calls []uint
}

func (r *recordingScheduler) ScheduleReanalysis(entryID uint, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, entryID)
	return nil
}

type recordingEvents struct {
	events []entities.AuditEventType
}

func (r *recordingEvents) LogEntryEvent(eventType entities.AuditEventType, _ string, _ uint, _ string, _ error) {
	r.events = append(r.events, eventType)
}

type testEnv struct {
	service   *EntryService
	repo      *entries.Repository
	index     *similarity.Index
	analyzer  *stubAnalyzer
	scheduler *recordingScheduler
	events    *recordingEvents
}

func setupService(t *testing.T) (*testEnv, func()) {
	dbPath := "./test_services_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Entry{}))

	env := &testEnv{
		repo:      entries.NewRepository(db),
		index:     similarity.NewIndex(""),
		analyzer:  &stubAnalyzer{},
		scheduler: &recordingScheduler{},
		events:    &recordingEvents{},
	}
	env.service = NewEntryService(env.repo, env.index, embedding.NewHashEmbedder(0), env.analyzer)
	env.service.SetReanalysisScheduler(env.scheduler)
	env.service.SetEventLogger(env.events)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

func TestEntryService_CreateAndGet(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()

	created, err := env.service.Create(context.Background(), CreateInput{
		Content:  "serendipity",
		Source:   "Novel",
		Note:     "chapter 3",
		DeviceID: "phone",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, entities.EntryTypeWord, created.EntryType)
	assert.Equal(t, "noun,vocabulary,novel", created.Tags)

	got, err := env.service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "serendipity", got.Content)
	assert.Equal(t, "Novel", got.Source)
	assert.Equal(t, "chapter 3", got.Note)
	assert.Equal(t, "phone", got.DeviceID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Contains(t, got.AIAnalysis, "a real definition")

	assert.Equal(t, 1, env.index.Len())
	assert.Empty(t, env.scheduler.calls)
	assert.Equal(t, []entities.AuditEventType{entities.AuditEventCreate}, env.events.events)
}

func TestEntryService_CreateKeepsContentVerbatim(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()

	created, err := env.service.Create(context.Background(), CreateInput{Content: "  padded word  "})
	require.NoError(t, err)
	assert.Equal(t, "  padded word  ", created.Content)
	assert.Equal(t, entities.EntryTypeSentence, created.EntryType)
}

func TestEntryService_CreateFallsBackOnAnalysisFailure(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()
	env.analyzer.err = errors.New("model unavailable")

	created, err := env.service.Create(context.Background(), CreateInput{Content: "lucid"})
	require.NoError(t, err)
	assert.Equal(t, "unknown,vocabulary", created.Tags)
	assert.Contains(t, created.AIAnalysis, "Definition for lucid")
	assert.Equal(t, []uint{created.ID}, env.scheduler.calls)
}

func TestEntryService_CreateRejectsEmptyContent(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()

	_, err := env.service.Create(context.Background(), CreateInput{Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Zero(t, env.analyzer.calls)
}

func TestEntryService_FindSimilar(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	var ids []uint
	for _, content := range []string{"alpha", "beta", "gamma", "delta"} {
		e, err := env.service.Create(ctx, CreateInput{Content: content})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	similar, err := env.service.FindSimilar(ids[0], 2)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	for _, s := range similar {
		assert.NotEqual(t, ids[0], s.Entry.ID)
		assert.LessOrEqual(t, s.Similarity, float32(1.0001))
	}
	assert.GreaterOrEqual(t, similar[0].Similarity, similar[1].Similarity)

	all, err := env.service.FindSimilar(ids[0], 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = env.service.FindSimilar(9999, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryService_FindSimilarSkipsStaleVectors(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	a, err := env.service.Create(ctx, CreateInput{Content: "alpha"})
	require.NoError(t, err)
	b, err := env.service.Create(ctx, CreateInput{Content: "beta"})
	require.NoError(t, err)

	// Soft delete through the store leaves the vector behind.
	require.NoError(t, env.repo.SoftDeleteVersioned(b.ID))

	similar, err := env.service.FindSimilar(a.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, similar)
}

func TestEntryService_Delete(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()

	e, err := env.service.Create(context.Background(), CreateInput{Content: "temporary"})
	require.NoError(t, err)

	require.NoError(t, env.service.Delete(e.ID, "phone"))
	assert.Equal(t, 0, env.index.Len())

	_, err = env.service.Get(e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.service.Delete(e.ID, "phone"), ErrNotFound)
}

func TestEntryService_GetHidesTombstones(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()

	e, err := env.service.Create(context.Background(), CreateInput{Content: "ghost"})
	require.NoError(t, err)
	require.NoError(t, env.repo.SoftDeleteVersioned(e.ID))

	_, err = env.service.Get(e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryService_RefreshIndexFollowsStoredRow(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()

	e, err := env.service.Create(context.Background(), CreateInput{Content: "alpha"})
	require.NoError(t, err)

	// Two merges commit back to back; their index refreshes then run in
	// reverse order.
	beta, gamma := "beta", "gamma"
	_, err = env.repo.UpdateVersioned(e.ID, entities.EntryFields{Content: &beta}, 1)
	require.NoError(t, err)
	_, err = env.repo.UpdateVersioned(e.ID, entities.EntryFields{Content: &gamma}, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.service.RefreshIndex(e.ID))
		}()
	}
	wg.Wait()

	rec, ok := env.index.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, "gamma", rec.Content)

	require.NoError(t, env.repo.SoftDeleteVersioned(e.ID))
	require.NoError(t, env.service.RefreshIndex(e.ID))
	_, ok = env.index.Get(e.ID)
	assert.False(t, ok)

	// Unknown ids are dropped, not reported
	assert.NoError(t, env.service.RefreshIndex(9999))
}

func TestEntryService_Update(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	e, err := env.service.Create(ctx, CreateInput{Content: "draft", DeviceID: "phone"})
	require.NoError(t, err)

	note := "revised"
	updated, err := env.service.Update(ctx, e.ID, UpdateInput{Note: &note, DeviceID: "laptop"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "revised", updated.Note)
	assert.Equal(t, "laptop", updated.DeviceID)

	_, err = env.service.Update(ctx, e.ID, UpdateInput{Note: &note}, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)

	content := "a complete sentence now"
	updated, err = env.service.Update(ctx, e.ID, UpdateInput{Content: &content, Tags: []string{"Custom"}}, 2)
	require.NoError(t, err)
	assert.Equal(t, entities.EntryTypeSentence, updated.EntryType)
	assert.Equal(t, "custom", updated.Tags)

	rec, ok := env.index.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, content, rec.Content)
}

func TestEntryService_Reanalyze(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	env.analyzer.err = errors.New("down")
	e, err := env.service.Create(ctx, CreateInput{Content: "lucid"})
	require.NoError(t, err)

	t.Run("failure is returned for retry", func(t *testing.T) {
		assert.Error(t, env.service.Reanalyze(ctx, e.ID, 1))
	})

	t.Run("success replaces the fallback", func(t *testing.T) {
		env.analyzer.err = nil
		require.NoError(t, env.service.Reanalyze(ctx, e.ID, 1))

		got, err := env.service.Get(e.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, "noun,vocabulary", got.Tags)
	})

	t.Run("stale version is dropped", func(t *testing.T) {
		calls := env.analyzer.calls
		require.NoError(t, env.service.Reanalyze(ctx, e.ID, 1))
		assert.Equal(t, calls, env.analyzer.calls)
	})

	t.Run("missing entry is ignored", func(t *testing.T) {
		assert.NoError(t, env.service.Reanalyze(ctx, 4242, 1))
	})
}

func TestEntryService_RebuildIndex(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	a, err := env.service.Create(ctx, CreateInput{Content: "alpha"})
	require.NoError(t, err)
	_, err = env.service.Create(ctx, CreateInput{Content: "beta"})
	require.NoError(t, err)
	require.NoError(t, env.repo.SoftDeleteVersioned(a.ID))
	require.NoError(t, env.index.Upsert(999, "orphan", []float32{1}, similarity.Metadata{}))

	count, err := env.service.RebuildIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, env.service.IndexSize())
	_, ok := env.index.Get(999)
	assert.False(t, ok)
}

func TestEntryService_SearchAndChanges(t *testing.T) {
	env, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.service.Create(ctx, CreateInput{Content: "Carpe diem", DeviceID: "phone"})
	require.NoError(t, err)
	_, err = env.service.Create(ctx, CreateInput{Content: "tempus fugit", DeviceID: "laptop"})
	require.NoError(t, err)

	found, err := env.service.Search("Carpe")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	empty, err := env.service.Search("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	changes, err := env.service.Changes(time.Time{}, "phone")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "tempus fugit", changes[0].Content)

	list, err := env.service.List(0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
