// Package draft persists form snapshots under a single fixed key. Drafts are
// best-effort: the Manager logs persistence failures and never returns them to
// the interactive flow.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-census/pkg/model"
)

// ErrNotFound is returned by stores when no snapshot is saved under a key.
var ErrNotFound = errors.New("draft: not found")

// Snapshot is a point-in-time copy of the form: the current step, every field
// value keyed by wire key, and the block count of each dynamic group.
type Snapshot struct {
	Step      int                    `json:"currentStep"`
	Timestamp time.Time              `json:"timestamp"`
	Values    map[string]model.Value `json:"values"`
	Counts    map[model.Group]int    `json:"counts,omitempty"`
}

// Count returns the saved block count for group.
func (s Snapshot) Count(group model.Group) int {
	return s.Counts[group]
}

// Encode serialises the snapshot.
func Encode(s Snapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("draft: encode: %w", err)
	}
	return raw, nil
}

// Decode parses a serialised snapshot. Snapshots written without the values
// wrapper are accepted as a bare value map.
func Decode(raw []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("draft: decode: %w", err)
	}
	if s.Values == nil {
		var bare map[string]model.Value
		if err := json.Unmarshal(raw, &bare); err == nil {
			s.Values = bare
		}
	}
	if s.Step < 1 {
		s.Step = 1
	}
	return s, nil
}

// Store is a key-value string store.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Clear(ctx context.Context, key string) error
}
