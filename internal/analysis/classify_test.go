package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/phrasebook/internal/entities"
)

func TestIsSingleWord(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"serendipity", true},
		{"  ephemeral!  ", true},
		{"well-known", true},
		{"don't", true},
		{"a happy accident", false},
		{"Hello, world.", false},
		{"", false},
		{"...", false},
		{"café", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSingleWord(tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, entities.EntryTypeWord, Classify("quixotic"))
	assert.Equal(t, entities.EntryTypeSentence, Classify("It is what it is."))
}

func TestBuildTags(t *testing.T) {
	t.Run("word", func(t *testing.T) {
		r := &Result{EntryType: entities.EntryTypeWord, Word: &WordAnalysis{PartOfSpeech: "Adjective"}}
		assert.Equal(t, []string{"adjective", "vocabulary", "the economist"}, BuildTags(r, "The Economist"))
	})

	t.Run("word without part of speech", func(t *testing.T) {
		r := &Result{EntryType: entities.EntryTypeWord, Word: &WordAnalysis{}}
		assert.Equal(t, []string{"vocabulary"}, BuildTags(r, ""))
	})

	t.Run("sentence uses first word of function", func(t *testing.T) {
		r := &Result{EntryType: entities.EntryTypeSentence, Sentence: &SentenceAnalysis{Function: "contrasting two ideas"}}
		assert.Equal(t, []string{"sentence", "contrasting"}, BuildTags(r, ""))
	})

	t.Run("sentence without function", func(t *testing.T) {
		r := &Result{EntryType: entities.EntryTypeSentence, Sentence: &SentenceAnalysis{}}
		assert.Equal(t, []string{"sentence", "expression", "podcast"}, BuildTags(r, "Podcast"))
	})
}

func TestFallback(t *testing.T) {
	t.Run("word", func(t *testing.T) {
		r := Fallback(" lucid ", "Book")
		require.NotNil(t, r.Word)
		assert.True(t, r.Fallback)
		assert.Equal(t, entities.EntryTypeWord, r.EntryType)
		assert.Equal(t, "unknown", r.Word.PartOfSpeech)
		assert.Equal(t, "Definition for lucid", r.Word.Definition)
		assert.Equal(t, "Example with lucid.", r.Word.ExampleSentence)
		assert.Empty(t, r.Word.Collocations)
		assert.Equal(t, []string{"unknown", "vocabulary", "book"}, r.Tags)

		js, err := r.JSON()
		require.NoError(t, err)
		assert.JSONEq(t, `{"word":"lucid","part_of_speech":"unknown","definition":"Definition for lucid","collocations":[],"example_sentence":"Example with lucid."}`, js)
	})

	t.Run("sentence", func(t *testing.T) {
		r := Fallback("That said, it works.", "")
		require.NotNil(t, r.Sentence)
		assert.Equal(t, entities.EntryTypeSentence, r.EntryType)
		assert.Equal(t, "unknown", r.Sentence.Function)
		assert.Equal(t, "N/A", r.Sentence.Pattern)
		assert.Equal(t, "Analysis failed", r.Sentence.WhyGood)
		assert.Equal(t, []string{"sentence", "unknown"}, r.Tags)
	})
}
