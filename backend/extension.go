package backend

import (
	"fmt"
	"sort"
	"strings"
)

// ExtMode defines how an extension takes part in negotiation.
type ExtMode int

const (
	// ExtModeDisabled marks an extension that is never requested.
	ExtModeDisabled ExtMode = iota

	// ExtModeOptional marks an extension that is requested when
	// supported and silently omitted otherwise.
	ExtModeOptional

	// ExtModeRequired marks an extension whose absence fails
	// negotiation, and with it device creation.
	ExtModeRequired

	// ExtModePassive marks an extension that is never requested
	// directly but reports enabled when the implementation already
	// provides it (a no-op capability probe).
	ExtModePassive
)

// String returns the mode name.
func (m ExtMode) String() string {
	switch m {
	case ExtModeDisabled:
		return "disabled"
	case ExtModeOptional:
		return "optional"
	case ExtModeRequired:
		return "required"
	case ExtModePassive:
		return "passive"
	default:
		return "unknown"
	}
}

// Ext stores negotiation state for a single named extension.
// An extension is enabled iff its negotiated revision is nonzero.
type Ext struct {
	name     string
	mode     ExtMode
	revision uint32
}

// NewExt creates an extension entry with the given name and mode.
func NewExt(name string, mode ExtMode) *Ext {
	return &Ext{name: name, mode: mode}
}

// Name returns the extension name.
func (e *Ext) Name() string { return e.name }

// Mode returns the extension mode.
func (e *Ext) Mode() ExtMode { return e.mode }

// SetMode changes the extension mode. Useful to flip an optional
// extension to disabled before negotiation.
func (e *Ext) SetMode(mode ExtMode) { e.mode = mode }

// Enabled reports whether the extension was negotiated successfully.
func (e *Ext) Enabled() bool { return e.revision != 0 }

// Revision returns the negotiated revision, or zero when disabled.
func (e *Ext) Revision() uint32 { return e.revision }

// Enable marks the extension enabled at the given revision.
func (e *Ext) Enable(revision uint32) { e.revision = revision }

// Disable resets the extension to the disabled state.
func (e *Ext) Disable() { e.revision = 0 }

// NameSet maps extension names to their supported revision.
// A revision of zero means unsupported.
type NameSet map[string]uint32

// Add inserts a name with revision 1 unless a higher revision is
// already present.
func (s NameSet) Add(name string) {
	s.AddRevision(name, 1)
}

// AddRevision inserts a name with the given revision, keeping the
// higher revision on duplicates.
func (s NameSet) AddRevision(name string, revision uint32) {
	if s[name] < revision {
		s[name] = revision
	}
}

// Merge adds all names from the other set, avoiding downgrades.
func (s NameSet) Merge(other NameSet) {
	for name, rev := range other {
		s.AddRevision(name, rev)
	}
}

// Supports returns the supported revision of the named extension, or
// zero when it is not in the set.
func (s NameSet) Supports(name string) uint32 {
	return s[name]
}

// Names returns the set's names in sorted order.
func (s NameSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Negotiate walks the requested extensions against the supported set
// and returns the names to actually request from the host API.
//
// Required entries that are unsupported fail negotiation as a whole
// with ErrExtensionNotSupported. Optional entries are silently omitted
// when unsupported. Disabled entries are never requested. Passive
// entries are enabled when supported but never added to the request
// set. Each entry's revision is updated in place, so callers can check
// Ext.Enabled after negotiation.
func Negotiate(supported NameSet, exts []*Ext) (NameSet, error) {
	enabled := make(NameSet, len(exts))
	var missing []string

	for _, ext := range exts {
		rev := supported.Supports(ext.Name())

		switch ext.Mode() {
		case ExtModeDisabled:
			ext.Disable()

		case ExtModePassive:
			// Implied by the implementation when present; nothing
			// to request.
			ext.Enable(rev)

		case ExtModeOptional, ExtModeRequired:
			if rev == 0 {
				ext.Disable()
				if ext.Mode() == ExtModeRequired {
					missing = append(missing, ext.Name())
				}
				continue
			}
			ext.Enable(rev)
			enabled.AddRevision(ext.Name(), rev)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrExtensionNotSupported, strings.Join(missing, ", "))
	}
	return enabled, nil
}
