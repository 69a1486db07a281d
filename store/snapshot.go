// Package store keeps snapshots of documents in a SQLite database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cozy/quill-go/delta"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a document has no snapshot.
var ErrNotFound = errors.New("store: snapshot not found")

// Snapshot is the content of a document at a revision, as delta JSON.
type Snapshot struct {
	ID         uint   `gorm:"primaryKey"`
	DocumentID string `gorm:"size:64;not null;uniqueIndex:snapshot_revision,priority:1"`
	Revision   uint64 `gorm:"not null;uniqueIndex:snapshot_revision,priority:2"`
	Content    string `gorm:"not null"`
	CreatedAt  time.Time
}

// SnapshotStore saves and loads snapshots.
type SnapshotStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at dsn. ":memory:" keeps it in
// memory.
func Open(dsn string, l *zap.Logger) (*SnapshotStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dsn, err)
	}
	return NewSnapshotStore(db, l)
}

// NewSnapshotStore uses an open database, creating the table if needed.
func NewSnapshotStore(db *gorm.DB, l *zap.Logger) (*SnapshotStore, error) {
	if l == nil {
		l = zap.NewNop()
	}
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &SnapshotStore{db: db, logger: l}, nil
}

// SaveDocumentSnapshot saves the content of a document at a revision. A
// revision already saved is kept as is.
func (s *SnapshotStore) SaveDocumentSnapshot(ctx context.Context, docID string, rev uint64, content *delta.Delta) error {
	if !content.IsDocument() {
		return delta.ErrNotDocument
	}
	data, err := json.Marshal(content)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Snapshot{DocumentID: docID, Revision: rev, Content: string(data)})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		s.logger.Debug("duplicate snapshot", zap.String("document", docID), zap.Uint64("revision", rev))
	}
	return nil
}

// LoadLatest returns the snapshot of a document with the highest revision.
func (s *SnapshotStore) LoadLatest(ctx context.Context, docID string) (*delta.Delta, uint64, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("revision DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	d, err := delta.FromJSON([]byte(snap.Content))
	if err != nil {
		return nil, 0, fmt.Errorf("store: snapshot %s@%d: %w", docID, snap.Revision, err)
	}
	return d, snap.Revision, nil
}

// Revisions lists the saved revisions of a document, oldest first.
func (s *SnapshotStore) Revisions(ctx context.Context, docID string) ([]uint64, error) {
	var revs []uint64
	err := s.db.WithContext(ctx).Model(&Snapshot{}).
		Where("document_id = ?", docID).
		Order("revision").
		Pluck("revision", &revs).Error
	return revs, err
}

// Close closes the database.
func (s *SnapshotStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
