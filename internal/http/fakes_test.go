package http

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/phrasebook/internal/database/devices"
	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/services"
)

type fakeEntries struct {
	mu      sync.Mutex
	entries map[uint]*entities.Entry
	nextID  uint
	err     error

	lastDeletedBy string
	lastSince     time.Time
	lastExclude   string
}

func newFakeEntries(contents ...string) *fakeEntries {
	f := &fakeEntries{entries: make(map[uint]*entities.Entry), nextID: 1}
	for _, content := range contents {
		f.Create(context.Background(), services.CreateInput{Content: content})
	}
	return f
}

func (f *fakeEntries) Create(ctx context.Context, input services.CreateInput) (*entities.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	entryType := entities.EntryTypeSentence
	if !strings.Contains(strings.TrimSpace(input.Content), " ") {
		entryType = entities.EntryTypeWord
	}
	e := &entities.Entry{
		ID:        f.nextID,
		Content:   input.Content,
		EntryType: entryType,
		Source:    input.Source,
		Note:      input.Note,
		DeviceID:  input.DeviceID,
		Version:   1,
	}
	f.entries[e.ID] = e
	f.nextID++
	out := *e
	return &out, nil
}

func (f *fakeEntries) sorted() []entities.Entry {
	out := make([]entities.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeEntries) List(offset, limit int) ([]entities.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := f.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeEntries) Get(id uint) (*entities.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (f *fakeEntries) Search(query string) ([]entities.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.Entry
	for _, e := range f.sorted() {
		if strings.Contains(e.Content, query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntries) Changes(since time.Time, excludeDeviceID string) ([]entities.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSince = since
	f.lastExclude = excludeDeviceID
	return f.sorted(), nil
}

func (f *fakeEntries) FindSimilar(id uint, limit int) ([]services.SimilarEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return nil, services.ErrNotFound
	}
	var out []services.SimilarEntry
	for _, e := range f.sorted() {
		if e.ID == id {
			continue
		}
		out = append(out, services.SimilarEntry{Entry: e, Similarity: 1 / float32(e.ID)})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEntries) Update(ctx context.Context, id uint, input services.UpdateInput, expectedVersion int) (*entities.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	if e.Version != expectedVersion {
		return nil, services.ErrVersionConflict
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, services.ErrEmptyContent
		}
		e.Content = *input.Content
	}
	if input.Note != nil {
		e.Note = *input.Note
	}
	if input.Tags != nil {
		e.Tags = entities.JoinTags(entities.NormalizeTags(input.Tags))
	}
	e.DeviceID = input.DeviceID
	e.Version++
	out := *e
	return &out, nil
}

func (f *fakeEntries) Delete(id uint, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return services.ErrNotFound
	}
	delete(f.entries, id)
	f.lastDeletedBy = deviceID
	return nil
}

type fakeSyncer struct {
	got  *entities.SyncRequest
	resp *entities.SyncResponse
	err  error
}

func (f *fakeSyncer) Sync(ctx context.Context, req *entities.SyncRequest) (*entities.SyncResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &entities.SyncResponse{
		ServerEntries: []entities.SyncEntry{},
		Conflicts:     []entities.SyncEntry{},
		LastSyncTime:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

type fakeQueue struct {
	enqueued []backlite.Task
	status   backlite.TaskStatus
	err      error
}

func (f *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, task)
	return "task-123", nil
}

func (f *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.status, nil
}

type fakeAudit struct {
	events     []entities.AuditEvent
	lastDevice string
	lastType   entities.AuditEventType
	lastLimit  int
	lastOffset int
}

func (f *fakeAudit) GetEvents(deviceID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	f.lastDevice, f.lastType, f.lastLimit, f.lastOffset = deviceID, eventType, limit, offset
	return f.events, int64(len(f.events)), nil
}

type memoryDeviceStore struct {
	mu      sync.Mutex
	devices map[string]entities.Device
}

func newMemoryDeviceStore() *memoryDeviceStore {
	return &memoryDeviceStore{devices: make(map[string]entities.Device)}
}

func (m *memoryDeviceStore) CreateDevice(device *entities.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[device.DeviceID]; ok {
		return devices.ErrAlreadyExists
	}
	m.devices[device.DeviceID] = *device
	return nil
}

func (m *memoryDeviceStore) GetDevice(deviceID string) (*entities.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceID]
	if !ok {
		return nil, devices.ErrNotFound
	}
	return &d, nil
}

func (m *memoryDeviceStore) UpdateTokenHash(deviceID, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceID]
	if !ok {
		return devices.ErrNotFound
	}
	d.TokenHash = tokenHash
	m.devices[deviceID] = d
	return nil
}

func (m *memoryDeviceStore) TouchLastSeen(deviceID string, at time.Time) error {
	return nil
}

var errBoom = errors.New("boom")
