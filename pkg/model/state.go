package model

import "sort"

// FormState maps field identities to their current values. It is the explicit
// state the rule engine reads; only the session mutates it.
type FormState struct {
	values map[Identity]Value
}

// NewState seeds a state with the provided values.
func NewState(seed map[Identity]Value) *FormState {
	s := &FormState{values: make(map[Identity]Value, len(seed))}
	for id, v := range seed {
		s.values[id] = v.Clone()
	}
	return s
}

// Get returns the stored value; absent identities yield the zero Value.
func (s *FormState) Get(id Identity) Value {
	if s == nil {
		return Value{}
	}
	return s.values[id]
}

// Lookup returns the stored value and whether it exists.
func (s *FormState) Lookup(id Identity) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.values[id]
	return v, ok
}

// Text is shorthand for Get(id).Text.
func (s *FormState) Text(id Identity) string {
	return s.Get(id).Text
}

// Set stores a value.
func (s *FormState) Set(id Identity, v Value) {
	if s.values == nil {
		s.values = make(map[Identity]Value)
	}
	s.values[id] = v.Clone()
}

// Clear blanks a value while keeping its shape (sets stay sets). It reports
// whether a non-empty value was removed.
func (s *FormState) Clear(id Identity) bool {
	current, ok := s.Lookup(id)
	if !ok {
		return false
	}
	s.values[id] = Value{Multi: current.Multi}
	return !current.Empty()
}

// Delete removes the identity entirely.
func (s *FormState) Delete(id Identity) {
	if s == nil {
		return
	}
	delete(s.values, id)
}

// Move transfers the value stored under from to to, removing from.
func (s *FormState) Move(from, to Identity) {
	v, ok := s.Lookup(from)
	delete(s.values, from)
	if !ok {
		delete(s.values, to)
		return
	}
	s.Set(to, v)
}

// Len reports the number of stored identities.
func (s *FormState) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Identities returns the stored identities sorted by wire key.
func (s *FormState) Identities() []Identity {
	if s == nil {
		return nil
	}
	out := make([]Identity, 0, len(s.values))
	for id := range s.values {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Block returns the values of the block containing id, keyed by field name.
func (s *FormState) Block(id Identity) map[string]Value {
	out := make(map[string]Value)
	if s == nil {
		return out
	}
	for candidate, v := range s.values {
		if candidate.InBlock(id) {
			out[candidate.Name] = v
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *FormState) Clone() *FormState {
	if s == nil {
		return NewState(nil)
	}
	return NewState(s.values)
}

// Encode flattens the state into wire keys.
func (s *FormState) Encode() map[string]Value {
	out := make(map[string]Value, s.Len())
	if s == nil {
		return out
	}
	for id, v := range s.values {
		out[id.Key()] = v.Clone()
	}
	return out
}
