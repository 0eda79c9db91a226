package entities

import "time"

type EntryType string

const (
	EntryTypeWord     EntryType = "word"
	EntryTypeSentence EntryType = "sentence"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	return t == EntryTypeWord || t == EntryTypeSentence
}

type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
)

// Entry is a captured word or sentence together with its analysis and the
// bookkeeping needed to reconcile it across devices.
type Entry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	EntryType  EntryType  `gorm:"size:20;index;not null" json:"entry_type"`
	Source     string     `gorm:"size:512" json:"source,omitempty"`
	Note       string     `gorm:"type:text" json:"note,omitempty"`
	AIAnalysis string     `gorm:"type:text" json:"ai_analysis,omitempty"` // JSON
	Tags       string     `gorm:"size:1024" json:"tags"`                  // comma-joined, normalized
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"index" json:"updated_at"`
	Deleted    bool       `gorm:"index;not null;default:false" json:"deleted"`
	DeviceID   string     `gorm:"size:128;index" json:"device_id,omitempty"`
	SyncStatus SyncStatus `gorm:"size:20;not null;default:synced" json:"sync_status"`
	Version    int        `gorm:"not null;default:1" json:"version"`
}

func (Entry) TableName() string {
	return "entries"
}

// TagList returns the stored tags as a slice.
func (e *Entry) TagList() []string {
	return SplitTags(e.Tags)
}

// EntryFields holds the mutable content of an entry. Nil fields are left
// untouched by partial updates.
type EntryFields struct {
	Content    *string
	EntryType  *EntryType
	Source     *string
	Note       *string
	AIAnalysis *string
	Tags       *string
	DeviceID   *string
}

// Empty reports whether no field is set.
func (f EntryFields) Empty() bool {
	return f.Content == nil && f.EntryType == nil && f.Source == nil &&
		f.Note == nil && f.AIAnalysis == nil && f.Tags == nil && f.DeviceID == nil
}

// Columns converts the set fields into a gorm column map.
func (f EntryFields) Columns() map[string]any {
	cols := make(map[string]any)
	if f.Content != nil {
		cols["content"] = *f.Content
	}
	if f.EntryType != nil {
		cols["entry_type"] = *f.EntryType
	}
	if f.Source != nil {
		cols["source"] = *f.Source
	}
	if f.Note != nil {
		cols["note"] = *f.Note
	}
	if f.AIAnalysis != nil {
		cols["ai_analysis"] = *f.AIAnalysis
	}
	if f.Tags != nil {
		cols["tags"] = JoinTags(SplitTags(*f.Tags))
	}
	if f.DeviceID != nil {
		cols["device_id"] = *f.DeviceID
	}
	return cols
}
