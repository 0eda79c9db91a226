// Package database opens the server's SQLite database and owns its schema.
//
// Domain access lives in sub-packages, each exposing a Repository built on
// the shared *gorm.DB:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── entries/         # Entry Store: versioned entries, soft delete, search
//	├── devices/         # Registered sync devices and their token hashes
//	└── audit/           # Audit event log
//
// Usage:
//
//	db, err := database.NewDatabase("./phrasebook.db")
//	entryRepo := entries.NewRepository(db.DB)
//	entry, err := entryRepo.GetEntryByID(42)
package database
