// Package sparse provides a sparse set of instruction addresses.
//
// The set supports O(1) insertion, membership testing and clearing while
// keeping a dense list of members in insertion order. Insertion order is
// what the breadth-first evaluator uses as thread priority.
package sparse

// Set is a set of uint32 values in the range [0, capacity).
//
// sparse maps a value to its index in dense; a value is a member only when
// that index is in range and dense points back at it, so sparse never needs
// to be cleared.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// New creates a set able to hold values in [0, capacity).
func New(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds v and reports whether it was newly added.
// Values outside the capacity are never added.
func (s *Set) Insert(v uint32) bool {
	if int64(v) >= int64(len(s.sparse)) || s.Contains(v) {
		return false
	}
	s.sparse[v] = uint32(len(s.dense)) //nolint:gosec // len(dense) <= len(sparse) which fits uint32 values
	s.dense = append(s.dense, v)
	return true
}

// Contains reports whether v is a member.
func (s *Set) Contains(v uint32) bool {
	if int64(v) >= int64(len(s.sparse)) {
		return false
	}
	i := s.sparse[v]
	return int(i) < len(s.dense) && s.dense[i] == v
}

// Clear removes all members in O(1).
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.dense)
}

// Cap returns the exclusive upper bound of storable values.
func (s *Set) Cap() int {
	return len(s.sparse)
}

// Values returns the members in insertion order.
// The slice is valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}

// Resize makes room for values in [0, capacity), dropping all members.
func (s *Set) Resize(capacity int) {
	if cap(s.sparse) >= capacity {
		s.sparse = s.sparse[:capacity]
	} else {
		s.sparse = make([]uint32, capacity)
	}
	if cap(s.dense) < capacity {
		s.dense = make([]uint32, 0, capacity)
	}
	s.dense = s.dense[:0]
}
