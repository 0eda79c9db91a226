package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./phrasebook.db"

	// DefaultIndexPath is where the similarity index snapshot lives
	DefaultIndexPath = "./vector_db/vectors.json"

	DefaultEmbeddingDimension = 384

	DefaultAnalyzerBaseURL = "https://api.deepseek.com"
	DefaultAnalyzerModel   = "deepseek-chat"
)
