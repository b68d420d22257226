package tree

import (
	"encoding/json"
)

// IDSet is an insertion-ordered set of node ids. The zero value is an empty set.
// Methods never modify the receiver; they return a new set.
type IDSet []string

// NewIDSet builds a set from ids, dropping duplicates and keeping first occurrence order.
func NewIDSet(ids ...string) IDSet {
	if len(ids) == 0 {
		return IDSet{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make(IDSet, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int { return len(s) }

// Contains reports whether id is a member.
func (s IDSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// With returns a copy of s with id appended if it is not already present.
func (s IDSet) With(id string) IDSet {
	if s.Contains(id) {
		return s.clone()
	}
	out := make(IDSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, id)
}

// Without returns a copy of s with id removed.
func (s IDSet) Without(id string) IDSet {
	out := make(IDSet, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Union returns s followed by every id of the other sets not already present.
func (s IDSet) Union(others ...IDSet) IDSet {
	n := len(s)
	for _, o := range others {
		n += len(o)
	}
	all := make([]string, 0, n)
	all = append(all, s...)
	for _, o := range others {
		all = append(all, o...)
	}
	return NewIDSet(all...)
}

// ContainsAll reports whether every id in ids is a member of s.
func (s IDSet) ContainsAll(ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	idx := s.index()
	for _, id := range ids {
		if _, ok := idx[id]; !ok {
			return false
		}
	}
	return true
}

// Equal reports set equality, ignoring order.
func (s IDSet) Equal(other IDSet) bool {
	a, b := s.index(), other.index()
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

// Strings returns the ids as a plain slice, never nil.
func (s IDSet) Strings() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (s IDSet) clone() IDSet {
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}

func (s IDSet) index() map[string]struct{} {
	idx := make(map[string]struct{}, len(s))
	for _, id := range s {
		idx[id] = struct{}{}
	}
	return idx
}

// MarshalJSON encodes the set as a JSON array; an empty set encodes as [] rather than null.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes a JSON array, dropping duplicate entries.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
