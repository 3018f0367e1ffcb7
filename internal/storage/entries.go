package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/echoverse/internal/journal"
	"github.com/easeaico/echoverse/internal/types"
)

// entryModel maps to the journal_entries table.
type entryModel struct {
	ID        int    `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Title     string
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

func (entryModel) TableName() string {
	return "journal_entries"
}

type entryRepo struct {
	db *gorm.DB
}

// NewEntryRepo returns a journal.EntryRepo.
func NewEntryRepo(db *gorm.DB) journal.EntryRepo {
	return &entryRepo{db: db}
}

func (r *entryRepo) Create(ctx context.Context, entry *types.JournalEntry) error {
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}
	record := entryModel{
		UserID:    entry.UserID,
		Title:     entry.Title,
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	entry.ID = record.ID
	entry.CreatedAt = record.CreatedAt
	return nil
}

func (r *entryRepo) Get(ctx context.Context, id int) (*types.JournalEntry, error) {
	var record entryModel
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("journal entry %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	entry := entryFromModel(record)
	return &entry, nil
}

func (r *entryRepo) ListPending(ctx context.Context, version, limit int) ([]types.JournalEntry, error) {
	var records []entryModel
	if err := r.db.WithContext(ctx).
		Table("journal_entries AS e").
		Select("e.*").
		Joins("LEFT JOIN emotion_analyses a ON a.entry_id = e.id").
		Where("a.id IS NULL OR a.analysis_version < ?", version).
		Order("e.created_at ASC, e.id ASC").
		Limit(limit).
		Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query pending entries: %w", err)
	}

	results := make([]types.JournalEntry, 0, len(records))
	for _, record := range records {
		results = append(results, entryFromModel(record))
	}
	return results, nil
}

func entryFromModel(model entryModel) types.JournalEntry {
	return types.JournalEntry{
		ID:        model.ID,
		UserID:    model.UserID,
		Title:     model.Title,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}
