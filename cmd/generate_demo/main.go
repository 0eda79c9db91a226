// Command generate_demo creates a demo database and similarity index with
// sample vocabulary.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db] [-index path/to/vectors.json]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/phrasebook/internal/analysis"
	"github.com/mrlokans/phrasebook/internal/config"
	"github.com/mrlokans/phrasebook/internal/database"
	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/embedding"
	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/services"
	"github.com/mrlokans/phrasebook/internal/similarity"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	defaultDemoIndexPath    = "./demo/vectors.json"
)

type demoEntry struct {
	Content string
	Source  string
	Note    string
	Result  *analysis.Result
}

// demoAnalyzer serves canned analyses so the demo needs no model.
type demoAnalyzer map[string]*analysis.Result

func (a demoAnalyzer) Analyze(_ context.Context, content, source, _ string) (*analysis.Result, error) {
	result, ok := a[content]
	if !ok {
		return analysis.Fallback(content, source), nil
	}
	result.Tags = analysis.BuildTags(result, source)
	return result, nil
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	indexPath := flag.String("index", defaultDemoIndexPath, "path to the demo index snapshot")
	dim := flag.Int("dim", config.DefaultEmbeddingDimension, "embedding dimension")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Start fresh
	for _, path := range []string{*dbPath, *indexPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove %s: %v", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	index, err := similarity.Open(*indexPath)
	if err != nil {
		log.Fatalf("Failed to open index: %v", err)
	}

	samples := demoEntries()
	analyzer := make(demoAnalyzer, len(samples))
	for _, s := range samples {
		analyzer[s.Content] = s.Result
	}

	svc := services.NewEntryService(entries.NewRepository(db.DB), index, embedding.NewHashEmbedder(*dim), analyzer)

	for _, s := range samples {
		entry, err := svc.Create(context.Background(), services.CreateInput{
			Content:  s.Content,
			Source:   s.Source,
			Note:     s.Note,
			DeviceID: "demo",
		})
		if err != nil {
			log.Printf("Failed to create %q: %v", s.Content, err)
			continue
		}
		log.Printf("Saved %s #%d: %s [%s]", entry.EntryType, entry.ID, s.Content, strings.ReplaceAll(entry.Tags, ",", ", "))
	}

	log.Printf("Index holds %d vectors at %s", index.Len(), *indexPath)
	log.Println("Demo database generated successfully!")
}

func word(w, pos, definition, example string, collocations ...string) *analysis.Result {
	return &analysis.Result{
		EntryType: entities.EntryTypeWord,
		Word: &analysis.WordAnalysis{
			Word:            w,
			PartOfSpeech:    pos,
			Definition:      definition,
			Collocations:    collocations,
			ExampleSentence: example,
		},
	}
}

func sentence(s, function, pattern, whyGood string, rewrites ...string) *analysis.Result {
	return &analysis.Result{
		EntryType: entities.EntryTypeSentence,
		Sentence: &analysis.SentenceAnalysis{
			Sentence:        s,
			Function:        function,
			Pattern:         pattern,
			WhyGood:         whyGood,
			RewriteExamples: rewrites,
		},
	}
}

func demoEntries() []demoEntry {
	return []demoEntry{
		{
			Content: "serendipity",
			Source:  "Meditations",
			Result: word("serendipity", "noun",
				"The occurrence of happy events by chance.",
				"Finding the book was pure serendipity.",
				"pure serendipity", "a moment of serendipity"),
		},
		{
			Content: "ephemeral",
			Source:  "Letters from a Stoic",
			Result: word("ephemeral", "adjective",
				"Lasting for a very short time.",
				"Fame on social media is often ephemeral.",
				"ephemeral nature", "ephemeral pleasures"),
		},
		{
			Content: "transient",
			Source:  "Letters from a Stoic",
			Note:    "close to ephemeral",
			Result: word("transient", "adjective",
				"Lasting only for a short time; impermanent.",
				"Their happiness proved transient.",
				"transient population", "transient state"),
		},
		{
			Content: "resilience",
			Result: word("resilience", "noun",
				"The capacity to recover quickly from difficulties.",
				"She showed remarkable resilience after the setback.",
				"build resilience", "emotional resilience"),
		},
		{
			Content: "We suffer more often in imagination than in reality.",
			Source:  "Letters from a Stoic",
			Result: sentence("We suffer more often in imagination than in reality.",
				"contrast statement", "We [verb] more often in X than in Y.",
				"A compact comparison that turns an abstract idea into a memorable contrast.",
				"We worry more often about the future than about the present.",
				"We lose more often to doubt than to difficulty."),
		},
		{
			Content: "Difficulties strengthen the mind, as labor does the body.",
			Source:  "Letters from a Stoic",
			Result: sentence("Difficulties strengthen the mind, as labor does the body.",
				"analogy", "X [verb] A, as Y does B.",
				"The parallel structure lets the second clause drop its verb.",
				"Reading sharpens the mind, as exercise does the body."),
		},
		{
			Content: "You have power over your mind, not outside events.",
			Source:  "Meditations",
			Note:    "good opener for essays",
			Result: sentence("You have power over your mind, not outside events.",
				"advice", "You have X over A, not B.",
				"Direct address plus a negated contrast makes the claim feel personal.",
				"You have control over your effort, not the outcome."),
		},
	}
}
