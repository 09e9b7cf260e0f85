package archive

import "errors"

// ErrAccessDenied is returned by an AccessCoordinator when read access
// cannot be granted this cycle, typically because an external writer
// holds or is waiting for exclusive access to the file.
var ErrAccessDenied = errors.New("archive: read access denied")

// AccessCoordinator arbitrates read access to archive files against
// external writers (content rewriting tools). Acquisition fails fast
// rather than blocking; a denied file is skipped for the current scan
// cycle and picked up on the next one.
type AccessCoordinator interface {
	// AcquireRead attempts to obtain shared read access to path.
	// On success the returned release function must be called once
	// reading is finished. On denial it returns ErrAccessDenied.
	AcquireRead(path string) (release func(), err error)
}

// OpenAccess is an AccessCoordinator that always grants access.
// It is the default when no external writer coordination is configured.
type OpenAccess struct{}

func (OpenAccess) AcquireRead(string) (func(), error) {
	return func() {}, nil
}
