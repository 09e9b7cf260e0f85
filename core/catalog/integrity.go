package catalog

// Validator is the external integrity-validation hook run against every
// assembled record. Implementations must be safe for concurrent use;
// the parser invokes them from its worker pool.
type Validator interface {
	// Validate inspects a record and returns a damage verdict.
	Validate(m *Metadata) (damaged bool, reason string)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(m *Metadata) (bool, string)

func (f ValidatorFunc) Validate(m *Metadata) (bool, string) {
	return f(m)
}

// StandardValidator applies the default structural checks: a readable
// archive must contain content and carry a complete identity.
func StandardValidator() Validator {
	return ValidatorFunc(func(m *Metadata) (bool, string) {
		if m.IsCorrupted {
			return true, m.DamageReason
		}
		if len(m.Contents) == 0 {
			return true, "package contains no content files"
		}
		if m.CreatorName == "" || m.PackageName == "" {
			return true, "package identity is incomplete"
		}
		return false, ""
	})
}
