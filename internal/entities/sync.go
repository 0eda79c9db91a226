package entities

import "time"

// SyncEntry is an entry as a device knows it locally.
type SyncEntry struct {
	ID         uint       `json:"id"`
	Content    string     `json:"content"`
	EntryType  EntryType  `json:"entry_type"`
	Source     *string    `json:"source,omitempty"`
	Note       *string    `json:"note,omitempty"`
	AIAnalysis *string    `json:"ai_analysis,omitempty"`
	Tags       *string    `json:"tags,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Deleted    bool       `json:"deleted"`
	DeviceID   string     `json:"device_id,omitempty"`
	SyncStatus SyncStatus `json:"sync_status,omitempty"`
	Version    int        `json:"version"`
}

// Fields returns the content fields a merge copies onto the server row.
func (e SyncEntry) Fields() EntryFields {
	content := e.Content
	fields := EntryFields{
		Content:    &content,
		Source:     e.Source,
		Note:       e.Note,
		AIAnalysis: e.AIAnalysis,
		Tags:       e.Tags,
	}
	if e.EntryType.Valid() {
		t := e.EntryType
		fields.EntryType = &t
	}
	return fields
}

// NewSyncEntry converts a stored entry into its wire form.
func NewSyncEntry(e Entry) SyncEntry {
	out := SyncEntry{
		ID:         e.ID,
		Content:    e.Content,
		EntryType:  e.EntryType,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		Deleted:    e.Deleted,
		DeviceID:   e.DeviceID,
		SyncStatus: e.SyncStatus,
		Version:    e.Version,
	}
	if e.Source != "" {
		out.Source = stringPtr(e.Source)
	}
	if e.Note != "" {
		out.Note = stringPtr(e.Note)
	}
	if e.AIAnalysis != "" {
		out.AIAnalysis = stringPtr(e.AIAnalysis)
	}
	if e.Tags != "" {
		out.Tags = stringPtr(e.Tags)
	}
	return out
}

type SyncRequest struct {
	LastSyncTime *time.Time  `json:"last_sync_time,omitempty"`
	DeviceID     string      `json:"device_id"`
	LocalEntries []SyncEntry `json:"local_entries"`
}

type SyncResponse struct {
	ServerEntries []SyncEntry `json:"server_entries"`
	Conflicts     []SyncEntry `json:"conflicts"`
	LastSyncTime  time.Time   `json:"last_sync_time"`
}

func stringPtr(s string) *string {
	return &s
}
