package tags

import "slices"

// State maps identifiers to a single value slot, remembering the order in
// which identifiers were first set. It can hold at most one value per
// identifier. The zero value is an empty, usable State.
type State struct {
	order  []Identifier
	values map[Identifier]Value
}

// NewState builds a state from assignments in order. A later assignment for
// an identifier replaces the earlier value but keeps its position.
func NewState(assignments ...Assignment) State {
	var s State
	for _, a := range assignments {
		s.Set(a.ID, a.Value)
	}
	return s
}

// Set stores value under id and returns the previous value, if any.
func (s *State) Set(id Identifier, value Value) (Value, bool) {
	if s.values == nil {
		s.values = make(map[Identifier]Value)
	}
	prev, existed := s.values[id]
	if !existed {
		s.order = append(s.order, id)
	}
	s.values[id] = value
	return prev, existed
}

// Get returns the value stored for id.
func (s State) Get(id Identifier) (Value, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Has reports whether id has a value.
func (s State) Has(id Identifier) bool {
	_, ok := s.values[id]
	return ok
}

// Delete removes id from the state.
func (s *State) Delete(id Identifier) {
	if _, ok := s.values[id]; !ok {
		return
	}
	delete(s.values, id)
	s.order = slices.DeleteFunc(s.order, func(existing Identifier) bool { return existing == id })
}

// Len returns the number of identifiers with a value.
func (s State) Len() int { return len(s.order) }

// Identifiers returns identifiers in insertion order.
func (s State) Identifiers() []Identifier {
	return slices.Clone(s.order)
}

// Assignments returns the state as assignments in insertion order.
func (s State) Assignments() []Assignment {
	out := make([]Assignment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Assignment{ID: id, Value: s.values[id]})
	}
	return out
}

// Clone returns an independent copy. Values are shared; they are treated as
// immutable.
func (s State) Clone() State {
	return State{order: slices.Clone(s.order), values: cloneMap(s.values)}
}

// Sorted returns a copy ordered by canonical identifier order.
func (s State) Sorted() State {
	out := s.Clone()
	slices.Sort(out.order)
	return out
}

// Equal compares identifier-to-value mappings, ignoring order.
func (s State) Equal(other State) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id, v := range s.values {
		ov, ok := other.values[id]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Contains reports whether the exact assignment is present.
func (s State) Contains(a Assignment) bool {
	v, ok := s.values[a.ID]
	return ok && a.Value != nil && v.Equal(a.Value)
}

func cloneMap(m map[Identifier]Value) map[Identifier]Value {
	if m == nil {
		return nil
	}
	out := make(map[Identifier]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
