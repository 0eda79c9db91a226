package analysis

import (
	"regexp"
	"strings"

	"github.com/mrlokans/phrasebook/internal/entities"
)

var punctuation = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)

// IsSingleWord reports whether text is one word once punctuation other than
// hyphens is stripped.
func IsSingleWord(text string) bool {
	clean := punctuation.ReplaceAllString(strings.TrimSpace(text), "")
	return len(strings.Fields(clean)) == 1
}

// Classify returns the entry type for text.
func Classify(text string) entities.EntryType {
	if IsSingleWord(text) {
		return entities.EntryTypeWord
	}
	return entities.EntryTypeSentence
}

// BuildTags derives tags from an analysis: part of speech for words, the
// leading word of the communicative function for sentences, plus the source.
func BuildTags(result *Result, source string) []string {
	var tags []string
	switch result.EntryType {
	case entities.EntryTypeWord:
		pos := ""
		if result.Word != nil {
			pos = result.Word.PartOfSpeech
		}
		tags = []string{pos, "vocabulary"}
	default:
		kind := "expression"
		if result.Sentence != nil {
			if fields := strings.Fields(result.Sentence.Function); len(fields) > 0 {
				kind = fields[0]
			}
		}
		tags = []string{string(entities.EntryTypeSentence), kind}
	}
	if source != "" {
		tags = append(tags, strings.ToLower(source))
	}
	return entities.NormalizeTags(tags)
}
