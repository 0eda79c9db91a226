package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Noun ", "vocabulary", "", "NOUN", "phrasal   verb", "  "})
	assert.Equal(t, []string{"noun", "vocabulary", "phrasal verb"}, got)
	assert.Empty(t, NormalizeTags(nil))
}

func TestSplitAndJoinTags(t *testing.T) {
	assert.Equal(t, []string{}, SplitTags(""))
	assert.Equal(t, []string{"a", "b"}, SplitTags("a, B ,a"))
	assert.Equal(t, "a,b", JoinTags(SplitTags("a,,b")))
}

func TestEntryFields_Columns(t *testing.T) {
	content := "new"
	tags := "X, y"
	cols := EntryFields{Content: &content, Tags: &tags}.Columns()
	assert.Equal(t, map[string]any{"content": "new", "tags": "x,y"}, cols)
	assert.True(t, EntryFields{}.Empty())
}

func TestSyncEntryRoundTrip(t *testing.T) {
	e := Entry{ID: 3, Content: "c", EntryType: EntryTypeWord, Source: "s", Tags: "a,b", Version: 2}
	se := NewSyncEntry(e)
	if assert.NotNil(t, se.Source) {
		assert.Equal(t, "s", *se.Source)
	}
	assert.Nil(t, se.Note)

	fields := se.Fields()
	if assert.NotNil(t, fields.Content) {
		assert.Equal(t, "c", *fields.Content)
	}
	assert.Nil(t, fields.Note, "absent optional fields are left alone")
}
