package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/phrasebook/internal/analysis"
	"github.com/mrlokans/phrasebook/internal/config"
	"github.com/mrlokans/phrasebook/internal/database"
	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/embedding"
	"github.com/mrlokans/phrasebook/internal/services"
	"github.com/mrlokans/phrasebook/internal/similarity"
)

// ReindexCommand rebuilds the similarity index from every live entry.
type ReindexCommand struct {
	DatabasePath string
	IndexPath    string
	Dimension    int
}

func NewReindexCommand() *ReindexCommand {
	return &ReindexCommand{}
}

func (cmd *ReindexCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the entries database")
	fs.StringVar(&cmd.IndexPath, "index", cfg.Index.Path, "Path to the similarity index snapshot")
	fs.IntVar(&cmd.Dimension, "dim", cfg.Index.Dimension, "Embedding dimension")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reindex [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rebuild the similarity index from the entries database.\n")
		fmt.Fprintf(os.Stderr, "Stop the server first; it keeps its own copy of the index in memory.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Dimension <= 0 {
		return fmt.Errorf("-dim must be positive, got %d", cmd.Dimension)
	}
	return nil
}

func (cmd *ReindexCommand) Run() error {
	db, err := database.NewQuietDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	index, err := similarity.Open(cmd.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	svc := services.NewEntryService(
		entries.NewRepository(db.DB),
		index,
		embedding.NewHashEmbedder(cmd.Dimension),
		analysis.Disabled{},
	)

	before := index.Len()
	count, err := svc.RebuildIndex()
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Printf("Indexed %d entries into %s (previously %d vectors)\n", count, cmd.IndexPath, before)
	return nil
}
