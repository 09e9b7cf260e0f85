package cache

import (
	"errors"
	"sync/atomic"

	"var-manager/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row is one persisted parse result. The key is the triple
// (filename, file_size, mtime_ticks); a file whose size or timestamp
// changes simply produces a new row, and stale rows for the same
// package base are cleared on Remove.
type Row struct {
	ID          uint   `gorm:"primaryKey"`
	Filename    string `gorm:"uniqueIndex:idx_cache_key;size:512"`
	FileSize    int64  `gorm:"uniqueIndex:idx_cache_key"`
	MtimeTicks  int64  `gorm:"uniqueIndex:idx_cache_key"`
	PackageBase string `gorm:"index"`
	// ContentHash is the xxhash of the manifest, bit-cast to int64
	// for SQLite storage. Zero is reserved for "never cache".
	ContentHash int64
	// Payload is the JSON-encoded metadata record.
	Payload []byte
}

// TableName keeps the table name stable across model renames.
func (Row) TableName() string {
	return "package_cache"
}

// Store is the persistent metadata cache. Read and write failures are
// swallowed: a failed read reports a miss (forcing a reparse), a failed
// write leaves the previous row in place. The engine must never fail a
// scan because of the cache.
type Store struct {
	db  *gorm.DB
	log *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Store over the given database, migrating the cache
// table if needed.
func New(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if columns, err := database.GetTableColumns(db, Row{}.TableName()); err == nil {
		log.Debug("Cache table ready", zap.Int("columns", len(columns)))
	}
	return &Store{db: db, log: log}, nil
}

// Get looks up a cached parse result. The bool result reports a hit;
// any storage failure is reported as a miss.
func (s *Store) Get(filename string, size, mtimeTicks int64) ([]byte, uint64, bool) {
	var row Row
	err := s.db.
		Where("filename = ? AND file_size = ? AND mtime_ticks = ?", filename, size, mtimeTicks).
		First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("Cache read failed, treating as miss",
				zap.String("filename", filename), zap.Error(err))
		}
		s.misses.Add(1)
		return nil, 0, false
	}
	s.hits.Add(1)
	return row.Payload, uint64(row.ContentHash), true
}

// Put stores a parse result, replacing any row with the same key.
func (s *Store) Put(filename string, size, mtimeTicks int64, packageBase string, payload []byte, contentHash uint64) {
	row := Row{
		Filename:    filename,
		FileSize:    size,
		MtimeTicks:  mtimeTicks,
		PackageBase: packageBase,
		ContentHash: int64(contentHash),
		Payload:     payload,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "filename"}, {Name: "file_size"}, {Name: "mtime_ticks"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		s.log.Debug("Cache write failed",
			zap.String("filename", filename), zap.Error(err))
	}
}

// Remove deletes every cached row belonging to the given package base,
// across all variants and historical (size, mtime) keys.
func (s *Store) Remove(packageBase string) {
	err := s.db.Where("package_base = ?", packageBase).Delete(&Row{}).Error
	if err != nil {
		s.log.Debug("Cache remove failed",
			zap.String("package_base", packageBase), zap.Error(err))
	}
}

// Hits returns the number of successful lookups since construction.
func (s *Store) Hits() int64 { return s.hits.Load() }

// Misses returns the number of failed lookups since construction.
func (s *Store) Misses() int64 { return s.misses.Load() }

// Count returns the number of persisted rows, or -1 when the count
// itself cannot be read.
func (s *Store) Count() int64 {
	var n int64
	if err := s.db.Model(&Row{}).Count(&n).Error; err != nil {
		return -1
	}
	return n
}
