package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/echoverse/internal/journal"
	"github.com/easeaico/echoverse/internal/types"
)

// blobModel maps to the mood_blobs table; one row per identity.
type blobModel struct {
	UserID    string `gorm:"primaryKey"`
	Image     []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

func (blobModel) TableName() string {
	return "mood_blobs"
}

// snapshotModel maps to the mood_snapshots table; one row per entry.
type snapshotModel struct {
	ID        int    `gorm:"primaryKey"`
	EntryID   int    `gorm:"uniqueIndex;not null"`
	UserID    string `gorm:"index;not null"`
	Image     []byte `gorm:"type:bytea;not null"`
	CreatedAt time.Time
}

func (snapshotModel) TableName() string {
	return "mood_snapshots"
}

type blobRepo struct {
	db *gorm.DB
}

// NewBlobRepo returns a journal.BlobRepo.
func NewBlobRepo(db *gorm.DB) journal.BlobRepo {
	return &blobRepo{db: db}
}

func (r *blobRepo) Get(ctx context.Context, userID string) (*types.MoodBlob, error) {
	var record blobModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mood blob: %w", err)
	}
	return &types.MoodBlob{UserID: record.UserID, Image: record.Image, UpdatedAt: record.UpdatedAt}, nil
}

// Put replaces the identity's image in place.
func (r *blobRepo) Put(ctx context.Context, blob *types.MoodBlob) error {
	if blob == nil {
		return fmt.Errorf("blob cannot be nil")
	}
	record := blobModel{UserID: blob.UserID, Image: blob.Image, UpdatedAt: blob.UpdatedAt}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"image", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return fmt.Errorf("failed to upsert mood blob: %w", err)
	}
	return nil
}

var snapshotColumns = []string{"user_id", "image", "created_at"}

// AddSnapshot stores the snapshot of an entry, replacing an earlier one.
func (r *blobRepo) AddSnapshot(ctx context.Context, snapshot *types.MoodSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	record := snapshotModel{
		EntryID:   snapshot.EntryID,
		UserID:    snapshot.UserID,
		Image:     snapshot.Image,
		CreatedAt: snapshot.CreatedAt,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_id"}},
			DoUpdates: clause.AssignmentColumns(snapshotColumns),
		}).
		Create(&record).Error; err != nil {
		return fmt.Errorf("failed to upsert mood snapshot: %w", err)
	}
	snapshot.ID = record.ID
	return nil
}
