// Package database opens the embedded SQLite store backing the
// persistent metadata cache.
//
// It provides a wrapper around GORM configured for a single-writer,
// many-reader embedded database. The cache survives process restarts;
// wiping the database file simply forces a full reparse on the next
// catalog resync.
//
// # Schema Inspection
//
// GetTableColumns exposes the live table schema (via PRAGMA table_info)
// so the integrity check can verify the cache layout matches the model
// a given build expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Cache)
//	if err != nil {
//	    log.Fatal("Cache database open failed", err)
//	}
package database
