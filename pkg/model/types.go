package model

import (
	"fmt"
	"strings"
)

// Group identifies the dynamic section a field belongs to. Household fields
// use GroupNone.
type Group string

const (
	GroupNone      Group = ""
	GroupChild     Group = "child"
	GroupJobSeeker Group = "jobseeker"
	GroupDependent Group = "dependent"
)

// Positional reports whether blocks of the group are addressed by position.
func (g Group) Positional() bool {
	return g == GroupChild || g == GroupJobSeeker
}

// Kind is the declared value kind of a field. It drives input normalisation
// and format validation.
type Kind string

const (
	KindText     Kind = "text"
	KindTextOnly Kind = "text-only"
	KindPhone    Kind = "phone"
	KindPostal   Kind = "pincode"
	KindEmail    Kind = "email"
	KindDate     Kind = "date"
	KindNumber   Kind = "number"
	KindSingle   Kind = "single"
	KindMulti    Kind = "multi"
)

// Identity is the structured identity of a field. Position is 1-based and only
// meaningful for positional groups; Namespace is only used by dependents.
type Identity struct {
	Group     Group  `json:"group,omitempty"`
	Position  int    `json:"position,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
}

// Household returns the identity of a household (non-repeating) field.
func Household(name string) Identity {
	return Identity{Name: name}
}

// Child returns the identity of a field inside child block n.
func Child(n int, name string) Identity {
	return Identity{Group: GroupChild, Position: n, Name: name}
}

// JobSeeker returns the identity of a field inside job seeker block n.
func JobSeeker(n int, name string) Identity {
	return Identity{Group: GroupJobSeeker, Position: n, Name: name}
}

// Dependent returns the identity of a field inside the dependent block keyed by
// namespace.
func Dependent(namespace, name string) Identity {
	return Identity{Group: GroupDependent, Namespace: namespace, Name: name}
}

// Key composes the wire key for the identity.
func (id Identity) Key() string {
	switch id.Group {
	case GroupChild, GroupJobSeeker:
		return fmt.Sprintf("%s%d_%s", id.Group, id.Position, id.Name)
	case GroupDependent:
		if id.Namespace == "" {
			return id.Name
		}
		return id.Namespace + "_" + id.Name
	default:
		return id.Name
	}
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	return id.Key()
}

// InBlock reports whether id belongs to the same block as other.
func (id Identity) InBlock(other Identity) bool {
	return id.Group == other.Group && id.Position == other.Position && id.Namespace == other.Namespace
}

// Sibling returns the identity of name inside the same block as id.
func (id Identity) Sibling(name string) Identity {
	out := id
	out.Name = name
	return out
}

// AtPosition returns a copy of id moved to block position n.
func (id Identity) AtPosition(n int) Identity {
	out := id
	out.Position = n
	return out
}

// Field declares a single input. Required is the requirement that applies
// while the field is visible; Hidden is the initial visibility for gated
// fields before the rule engine first runs.
type Field struct {
	ID        Identity `json:"id"`
	Kind      Kind     `json:"kind"`
	Label     string   `json:"label,omitempty"`
	Step      int      `json:"step"`
	Required  bool     `json:"required,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Options   []string `json:"options,omitempty"`
}

// Multi reports whether the field stores a set of values.
func (f Field) Multi() bool {
	return f.Kind == KindMulti
}

// DisplayLabel falls back to a humanised field name when no label is set.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	name := strings.ReplaceAll(f.ID.Name, "_", " ")
	if name == "" {
		return f.ID.Key()
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Presence is the dynamic visible/required pair the rule engine maintains for
// every registered field. A hidden field is never required.
type Presence struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
}

// Shown returns a visible presence with the given requirement.
func Shown(required bool) Presence {
	return Presence{Visible: true, Required: required}
}

// Hidden is the presence of a field removed from the form.
var Hidden = Presence{}

// Normalized enforces the hidden-implies-optional invariant.
func (p Presence) Normalized() Presence {
	if !p.Visible {
		p.Required = false
	}
	return p
}
