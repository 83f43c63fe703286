package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Value holds either a scalar string or a set of strings (multi-select). The
// zero value is an absent scalar.
type Value struct {
	Text  string
	Items []string
	Multi bool
}

// Text builds a scalar value.
func Text(s string) Value {
	return Value{Text: s}
}

// Set builds a multi value; duplicates are dropped and order is preserved.
func Set(items ...string) Value {
	out := Value{Multi: true}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out.Items = append(out.Items, item)
	}
	return out
}

// Empty reports whether the value counts as unanswered: a blank trimmed
// string or an empty set.
func (v Value) Empty() bool {
	if v.Multi {
		for _, item := range v.Items {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(v.Text) == ""
}

// Has reports set membership. Scalars match by equality.
func (v Value) Has(item string) bool {
	if !v.Multi {
		return v.Text == item
	}
	for _, candidate := range v.Items {
		if candidate == item {
			return true
		}
	}
	return false
}

// String renders the value for display; sets are comma separated.
func (v Value) String() string {
	if v.Multi {
		return strings.Join(v.Items, ", ")
	}
	return v.Text
}

// Equal compares two values, treating sets as unordered.
func (v Value) Equal(other Value) bool {
	if v.Multi != other.Multi {
		return v.Empty() && other.Empty()
	}
	if !v.Multi {
		return v.Text == other.Text
	}
	if len(v.Items) != len(other.Items) {
		return false
	}
	a := append([]string(nil), v.Items...)
	b := append([]string(nil), other.Items...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share the item slice.
func (v Value) Clone() Value {
	if v.Items != nil {
		v.Items = append([]string(nil), v.Items...)
	}
	return v
}

// Interface converts the value into JSON-decoded shapes (string or []any).
func (v Value) Interface() any {
	if !v.Multi {
		return v.Text
	}
	out := make([]any, 0, len(v.Items))
	for _, item := range v.Items {
		out = append(out, item)
	}
	return out
}

// MarshalJSON encodes scalars as strings and sets as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Multi {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a string, an array of strings, or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*v = Value{}
		return nil
	case trimmed[0] == '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("model: decode value set: %w", err)
		}
		*v = Value{Items: items, Multi: true}
		return nil
	case trimmed[0] == '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("model: decode value: %w", err)
		}
		*v = Value{Text: text}
		return nil
	default:
		// numbers and booleans written by older drafts keep their literal form
		*v = Value{Text: string(trimmed)}
		return nil
	}
}
