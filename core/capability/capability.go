// Package capability defines the optional cross-cutting capabilities a
// model can enable: namespace, visibility, tags, owner-id, maintainer-id
// and edition.
//
// Each capability is a self-contained module contributing an ordered set
// of field descriptors, validation rules and a default policy. Modules
// never reference each other; cross-capability consistency rules live in
// the composer.
package capability

import (
	"errors"
	"fmt"
	"strings"
)

// ID identifies a capability.
type ID string

const (
	// Namespace scopes records to a dot-separated namespace.
	Namespace ID = "namespace"

	// Visibility marks records as public, private or internal.
	Visibility ID = "visibility"

	// Tags attaches an ordered list of free-form tags.
	Tags ID = "tags"

	// OwnerID records the owning user.
	OwnerID ID = "owner-id"

	// MaintainerID records the maintaining user.
	MaintainerID ID = "maintainer-id"

	// Edition carries a monotonically incrementing version counter used
	// for optimistic concurrency.
	Edition ID = "edition"
)

// canonical is the fixed total order over capabilities. Composed field
// and rule order follows this order regardless of how a set was built.
var canonical = []ID{Namespace, Visibility, Tags, OwnerID, MaintainerID, Edition}

// ErrUnknown is returned when a capability name is not recognized.
var ErrUnknown = errors.New("unknown capability")

// All returns every capability in canonical order.
func All() []ID {
	out := make([]ID, len(canonical))
	copy(out, canonical)
	return out
}

// String returns the string representation of the capability.
func (id ID) String() string {
	return string(id)
}

// index returns the canonical position of the capability, or -1.
func (id ID) index() int {
	for i, c := range canonical {
		if c == id {
			return i
		}
	}
	return -1
}

// Parse parses a capability name. It accepts both the dashed form
// ("owner-id") and the field form ("owner_id").
func Parse(s string) (ID, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	id := ID(name)
	if id.index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return id, nil
}
