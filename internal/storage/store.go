// Package storage persists journal entries, analyses and blob images in
// PostgreSQL with the pgvector extension.
package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/easeaico/echoverse/internal/journal"
)

// Store holds the DB pool and repositories.
type Store struct {
	db        *gorm.DB
	Entries   journal.EntryRepo
	Analyses  journal.AnalysisRepo
	MoodBlobs journal.BlobRepo
}

// NewStore opens the database, verifies the connection and builds the
// repositories.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:        db,
		Entries:   NewEntryRepo(db),
		Analyses:  NewAnalysisRepo(db),
		MoodBlobs: NewBlobRepo(db),
	}, nil
}

// Migrate enables pgvector and creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	if err := db.AutoMigrate(&entryModel{}, &analysisModel{}, &blobModel{}, &snapshotModel{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Close() {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
