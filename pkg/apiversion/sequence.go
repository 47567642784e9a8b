package apiversion

import "sort"

// Sequence is the ordered set of versions known to one run. The serializer
// resolves "removed in" through it rather than incrementing a number, since
// the successor of 35.1 may be 36 rather than 35.2.
type Sequence struct {
	order []Version
	pos   map[string]int
}

// NewSequence builds a Sequence from the given versions, deduplicated and
// sorted ascending.
func NewSequence(versions ...Version) *Sequence {
	sorted := make([]Version, 0, len(versions))
	seen := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		key := v.canonical()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sorted = append(sorted, v)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	pos := make(map[string]int, len(sorted))
	for i, v := range sorted {
		pos[v.canonical()] = i
	}
	return &Sequence{order: sorted, pos: pos}
}

// Len returns the number of versions in the sequence.
func (s *Sequence) Len() int { return len(s.order) }

// Latest returns the highest version, or None for an empty sequence.
func (s *Sequence) Latest() Version {
	if len(s.order) == 0 {
		return None
	}
	return s.order[len(s.order)-1]
}

// Oldest returns the lowest version, or None for an empty sequence.
func (s *Sequence) Oldest() Version {
	if len(s.order) == 0 {
		return None
	}
	return s.order[0]
}

// After returns the version immediately following v, if v is in the
// sequence and has a successor.
func (s *Sequence) After(v Version) (Version, bool) {
	i, ok := s.pos[v.canonical()]
	if !ok || i+1 >= len(s.order) {
		return None, false
	}
	return s.order[i+1], true
}

// Before returns the version immediately preceding v, if v is in the
// sequence and has a predecessor.
func (s *Sequence) Before(v Version) (Version, bool) {
	i, ok := s.pos[v.canonical()]
	if !ok || i == 0 {
		return None, false
	}
	return s.order[i-1], true
}

// Contains reports whether v is one of the sequence's versions.
func (s *Sequence) Contains(v Version) bool {
	_, ok := s.pos[v.canonical()]
	return ok
}
