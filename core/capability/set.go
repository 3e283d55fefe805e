package capability

import "strings"

// Set is an enabled-capability set, represented as a bitmask over the
// canonical capability order. The zero Set is empty. Sets built from
// the same capabilities are equal regardless of insertion order, which
// makes them usable as cache keys.
type Set uint64

// NewSet builds a set from the given capabilities.
func NewSet(ids ...ID) Set {
	var s Set
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

// ParseSet parses capability names into a set. Unknown names fail with
// ErrUnknown.
func ParseSet(names []string) (Set, error) {
	var s Set
	for _, name := range names {
		id, err := Parse(name)
		if err != nil {
			return 0, err
		}
		s = s.With(id)
	}
	return s, nil
}

// With returns a set with the capability enabled. Enabling is
// idempotent; unknown capabilities are ignored.
func (s Set) With(id ID) Set {
	i := id.index()
	if i < 0 {
		return s
	}
	return s | 1<<uint(i)
}

// Has reports whether the capability is enabled.
func (s Set) Has(id ID) bool {
	i := id.index()
	if i < 0 {
		return false
	}
	return s&(1<<uint(i)) != 0
}

// IDs returns the enabled capabilities in canonical order.
func (s Set) IDs() []ID {
	var out []ID
	for i, id := range canonical {
		if s&(1<<uint(i)) != 0 {
			out = append(out, id)
		}
	}
	return out
}

// Mask returns the raw bitmask, suitable as a cache key component.
func (s Set) Mask() uint64 {
	return uint64(s)
}

// String returns the enabled capability names in canonical order.
func (s Set) String() string {
	ids := s.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return strings.Join(names, ",")
}
