package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrlokans/phrasebook/internal/entities"
)

const (
	wordSystemPrompt     = "You are an English learning assistant. Always respond with valid JSON only."
	sentenceSystemPrompt = "You are an English learning assistant focusing on sentence patterns and expressions. Always respond with valid JSON only."

	wordMaxTokens     = 500
	sentenceMaxTokens = 800
)

// LLMAnalyzer asks a chat model for a word or sentence breakdown.
type LLMAnalyzer struct {
	completer Completer
}

func NewLLMAnalyzer(completer Completer) *LLMAnalyzer {
	return &LLMAnalyzer{completer: completer}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, content, source, note string) (*Result, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty content")
	}

	var result *Result
	var err error
	if IsSingleWord(content) {
		result, err = a.analyzeWord(ctx, content)
	} else {
		result, err = a.analyzeSentence(ctx, content)
	}
	if err != nil {
		return nil, err
	}

	result.Tags = BuildTags(result, source)
	return result, nil
}

func (a *LLMAnalyzer) analyzeWord(ctx context.Context, word string) (*Result, error) {
	prompt := fmt.Sprintf(`Analyze the English word %q and return a JSON object with the following structure:
{
    "word": %q,
    "part_of_speech": "noun/verb/adjective/etc.",
    "definition": "Clear and concise English definition",
    "collocations": ["common collocation 1", "common collocation 2", "common collocation 3"],
    "example_sentence": "A sentence example in tech/business/analytical context"
}

Keep the response strictly as JSON. Make the definition simple and practical. Focus on tech/business contexts.`, word, word)

	reply, err := a.completer.Complete(ctx, wordSystemPrompt, prompt, wordMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("analyze word: %w", err)
	}

	var analysis WordAnalysis
	if err := json.Unmarshal([]byte(extractJSON(reply)), &analysis); err != nil {
		return nil, fmt.Errorf("parse word analysis: %w", err)
	}
	if analysis.Word == "" {
		analysis.Word = word
	}
	if analysis.Collocations == nil {
		analysis.Collocations = []string{}
	}

	return &Result{EntryType: entities.EntryTypeWord, Word: &analysis}, nil
}

func (a *LLMAnalyzer) analyzeSentence(ctx context.Context, sentence string) (*Result, error) {
	prompt := fmt.Sprintf(`Analyze the following English sentence and return a JSON object with this structure:
{
    "sentence": %q,
    "function": "What is the communicative function? (e.g., emphasizing, contrasting, explaining, expressing opinion)",
    "pattern": "What is the sentence pattern or expression structure?",
    "why_good": "Why is this a good sentence? (brief)",
    "rewrite_examples": ["Example rewrite 1", "Example rewrite 2"]
}

Sentence to analyze: %q

Keep the response strictly as JSON. Focus on what makes this sentence useful for learning and how the pattern can be reused.`, sentence, sentence)

	reply, err := a.completer.Complete(ctx, sentenceSystemPrompt, prompt, sentenceMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("analyze sentence: %w", err)
	}

	var analysis SentenceAnalysis
	if err := json.Unmarshal([]byte(extractJSON(reply)), &analysis); err != nil {
		return nil, fmt.Errorf("parse sentence analysis: %w", err)
	}
	if analysis.Sentence == "" {
		analysis.Sentence = sentence
	}
	if analysis.RewriteExamples == nil {
		analysis.RewriteExamples = []string{}
	}

	return &Result{EntryType: entities.EntryTypeSentence, Sentence: &analysis}, nil
}

// extractJSON strips a markdown code fence around the model's reply.
func extractJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	if _, after, ok := strings.Cut(reply, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(reply, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return reply
}
