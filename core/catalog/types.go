package catalog

// Role classifies the storage location of one physical package file.
// The numeric order is the product's role priority: a loaded variant
// outranks an available one, which outranks an archived one. This
// ordering is baked into variant resolution and must not change.
type Role int

const (
	RoleLoaded Role = iota
	RoleAvailable
	RoleArchived
)

// String returns the lowercase role name used in suffixed store keys.
func (r Role) String() string {
	switch r {
	case RoleLoaded:
		return "loaded"
	case RoleAvailable:
		return "available"
	case RoleArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// Status returns the display status mirroring the role.
func (r Role) Status() Status {
	switch r {
	case RoleLoaded:
		return StatusLoaded
	case RoleAvailable:
		return StatusAvailable
	case RoleArchived:
		return StatusArchived
	default:
		return StatusUnknown
	}
}

// Status is the published state of a variant.
type Status string

const (
	StatusLoaded    Status = "Loaded"
	StatusAvailable Status = "Available"
	StatusArchived  Status = "Archived"
	StatusDuplicate Status = "Duplicate"
	StatusUnknown   Status = "Unknown"
)

// Descriptor is the raw, per-scan description of one package file on
// disk, before any archive is opened.
type Descriptor struct {
	// PackageBase is the filename without its extension, e.g.
	// "Acme.Outfit.3".
	PackageBase string
	// Role is the storage-location classification.
	Role Role
	// Status mirrors the role at scan time.
	Status Status
	// Path is the file's location as given by the folder scan.
	Path string
	// FileSize is the file size in bytes at stat time.
	FileSize int64
	// LastWriteTicks is the modification time in nanosecond ticks.
	LastWriteTicks int64
}

// Variant is one physical archive instance of a logical package,
// resolved against its siblings. A Variant is owned exclusively by its
// Snapshot; its Meta is replaced, never mutated, once published.
type Variant struct {
	Role           Role
	Status         Status
	Path           string
	FileSize       int64
	LastWriteTicks int64
	Meta           *Metadata
	// ContentHash identifies the archive's manifest content. Zero is
	// reserved for "do not reuse or cache this result".
	ContentHash uint64
}
