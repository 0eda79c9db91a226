package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/phrasebook/internal/entities"
)

// connectionParams keep concurrent request handlers from failing fast with
// SQLITE_BUSY while a sync round holds the write lock.
const connectionParams = "?_journal=WAL&_timeout=5000&_busy_timeout=5000&_fk=true"

type Database struct {
	DB *gorm.DB
}

// Models lists every table owned by the server database.
func Models() []any {
	return []any{
		&entities.Entry{},
		&entities.Device{},
		&entities.AuditEvent{},
	}
}

func NewDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Info)
}

// NewQuietDatabase opens the database without SQL statement logging, for
// CLI commands.
func NewQuietDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Warn)
}

func open(dbPath string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+connectionParams), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
