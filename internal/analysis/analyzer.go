// Package analysis classifies captured content and enriches it with an
// LLM-produced breakdown. Failures never block entry creation: callers fall
// back to Fallback.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mrlokans/phrasebook/internal/entities"
)

var ErrDisabled = errors.New("content analysis is disabled")

// Analyzer produces the structured analysis of a captured entry.
type Analyzer interface {
	Analyze(ctx context.Context, content, source, note string) (*Result, error)
}

type WordAnalysis struct {
	Word            string   `json:"word"`
	PartOfSpeech    string   `json:"part_of_speech"`
	Definition      string   `json:"definition"`
	Collocations    []string `json:"collocations"`
	ExampleSentence string   `json:"example_sentence"`
}

type SentenceAnalysis struct {
	Sentence        string   `json:"sentence"`
	Function        string   `json:"function"`
	Pattern         string   `json:"pattern"`
	WhyGood         string   `json:"why_good"`
	RewriteExamples []string `json:"rewrite_examples"`
}

// Result is the outcome of analyzing one entry. Exactly one of Word and
// Sentence is set, matching EntryType.
type Result struct {
	EntryType entities.EntryType
	Word      *WordAnalysis
	Sentence  *SentenceAnalysis
	Tags      []string
	// Fallback marks a default record produced without the model.
	Fallback bool
}

// JSON serializes the analysis fields for storage in Entry.AIAnalysis.
func (r *Result) JSON() (string, error) {
	var v any = r.Sentence
	if r.EntryType == entities.EntryTypeWord {
		v = r.Word
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Fallback builds the deterministic default record used when the model is
// unavailable.
func Fallback(content, source string) *Result {
	content = strings.TrimSpace(content)
	var result *Result
	if IsSingleWord(content) {
		result = &Result{
			EntryType: entities.EntryTypeWord,
			Word: &WordAnalysis{
				Word:            content,
				PartOfSpeech:    "unknown",
				Definition:      "Definition for " + content,
				Collocations:    []string{},
				ExampleSentence: "Example with " + content + ".",
			},
		}
	} else {
		result = &Result{
			EntryType: entities.EntryTypeSentence,
			Sentence: &SentenceAnalysis{
				Sentence:        content,
				Function:        "unknown",
				Pattern:         "N/A",
				WhyGood:         "Analysis failed",
				RewriteExamples: []string{},
			},
		}
	}
	result.Tags = BuildTags(result, source)
	result.Fallback = true
	return result
}

// Disabled is the analyzer used when no model is configured.
type Disabled struct{}

func (Disabled) Analyze(context.Context, string, string, string) (*Result, error) {
	return nil, ErrDisabled
}
