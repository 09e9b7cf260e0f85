package catalog

import "strings"

// Config holds configuration for the catalog scanner.
type Config struct {
	// LoadedDir is the folder whose packages are live in the host
	// application.
	LoadedDir string `mapstructure:"loaded_dir" default:"AddonPackages"`
	// AvailableDirs is a comma-separated list of library folders holding
	// inactive packages. Paths containing an ArchivedPackages segment
	// are treated as archived.
	AvailableDirs string `mapstructure:"available_dirs" default:""`
	// Workers is the archive-parse concurrency. Zero selects the
	// processor count.
	Workers int `mapstructure:"workers" default:"0"`
}

// AvailableDirList splits the configured library folders.
func (c Config) AvailableDirList() []string {
	var dirs []string
	for _, d := range strings.Split(c.AvailableDirs, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
