package archive

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ErrFormat indicates the file is not a readable archive (corrupt or
// unsupported), as opposed to a plain I/O failure. Callers downgrade
// records on ErrFormat instead of skipping the file.
var ErrFormat = errors.New("archive: unsupported or corrupt format")

// Entry describes a single file inside an archive.
type Entry struct {
	// Name is the forward-slash separated path of the entry.
	Name string
	// Size is the uncompressed size in bytes.
	Size int64
	// Modified is the entry's recorded modification time.
	Modified time.Time
	// IsDir reports whether the entry is a directory marker.
	IsDir bool
}

// Reader provides read access to one opened archive.
type Reader interface {
	// Entries returns all entries in archive order.
	Entries() []Entry
	// Open returns a stream for the named entry.
	Open(name string) (io.ReadCloser, error)
	// Close releases the underlying file handle.
	Close() error
}

// Opener opens an archive at a filesystem path. It is the injection
// point for tests and for alternative container formats.
type Opener func(path string) (Reader, error)

// OpenZip opens a zip-container archive for reading.
// Format-level failures are wrapped in ErrFormat so callers can
// distinguish them from I/O errors.
func OpenZip(path string) (Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, zip.ErrChecksum) {
			return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
		}
		return nil, err
	}
	return &zipReader{rc: rc}, nil
}

type zipReader struct {
	rc *zip.ReadCloser
}

func (z *zipReader) Entries() []Entry {
	entries := make([]Entry, 0, len(z.rc.File))
	for _, f := range z.rc.File {
		entries = append(entries, Entry{
			Name:     f.Name,
			Size:     int64(f.UncompressedSize64),
			Modified: f.Modified,
			IsDir:    f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/"),
		})
	}
	return entries
}

func (z *zipReader) Open(name string) (io.ReadCloser, error) {
	for _, f := range z.rc.File {
		if f.Name == name {
			r, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: entry %s: %v", ErrFormat, name, err)
			}
			return r, nil
		}
	}
	return nil, fmt.Errorf("archive: entry not found: %s", name)
}

func (z *zipReader) Close() error {
	return z.rc.Close()
}
