package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the local key-value store.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// TableName overrides the GORM default.
func (Entry) TableName() string {
	return "local_entries"
}

// LocalStore is the durable key-value store backing the session and the
// offline cache.
type LocalStore struct {
	db *gorm.DB
}

// NewLocalStore creates a store on an opened database.
func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

// Get returns the value under key. The second return value reports whether
// the key exists.
func (s *LocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Put writes value under key, replacing any previous value.
func (s *LocalStore) Put(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

// Delete removes the value under key. Deleting a missing key is not an
// error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error
}
