package database

// DefaultPath is the fallback location of the cache database file.
const DefaultPath = "cache/metadata.db"

// Config holds configuration for the embedded cache database.
type Config struct {
	// Path is the filesystem location of the SQLite database file.
	// ":memory:" opens an ephemeral database.
	Path string `mapstructure:"path" default:"cache/metadata.db"`
}
