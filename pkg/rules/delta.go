package rules

import (
	"sort"

	"github.com/goliatone/go-census/pkg/model"
)

// Delta is the outcome of evaluating rules for one trigger. The session
// applies it in order: clears, then defaults, then presence and warnings, so a
// hidden field never keeps a stale value between the two steps.
type Delta struct {
	Presence map[model.Identity]model.Presence
	Clear    map[model.Identity]struct{}
	Defaults map[model.Identity]model.Value
	Warnings map[model.Identity]bool
}

// Show marks id visible with the given requirement.
func (d *Delta) Show(id model.Identity, required bool) {
	d.setPresence(id, model.Shown(required))
}

// Hide marks ids hidden and schedules their values to be cleared.
func (d *Delta) Hide(ids ...model.Identity) {
	for _, id := range ids {
		d.setPresence(id, model.Hidden)
		if d.Clear == nil {
			d.Clear = make(map[model.Identity]struct{})
		}
		d.Clear[id] = struct{}{}
	}
}

// Default proposes a value for id that is only applied when id is empty.
func (d *Delta) Default(id model.Identity, v model.Value) {
	if d.Defaults == nil {
		d.Defaults = make(map[model.Identity]model.Value)
	}
	d.Defaults[id] = v
}

// Warn raises or lowers the non-blocking warning flag id.
func (d *Delta) Warn(id model.Identity, on bool) {
	if d.Warnings == nil {
		d.Warnings = make(map[model.Identity]bool)
	}
	d.Warnings[id] = on
}

// Merge folds other into d; entries in other win.
func (d *Delta) Merge(other Delta) {
	for id, p := range other.Presence {
		d.setPresence(id, p)
	}
	for id := range other.Clear {
		if d.Clear == nil {
			d.Clear = make(map[model.Identity]struct{})
		}
		d.Clear[id] = struct{}{}
	}
	for id, v := range other.Defaults {
		d.Default(id, v)
	}
	for id, on := range other.Warnings {
		d.Warn(id, on)
	}
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.Presence) == 0 && len(d.Clear) == 0 && len(d.Defaults) == 0 && len(d.Warnings) == 0
}

// Cleared returns the identities scheduled for clearing, sorted by wire key.
func (d Delta) Cleared() []model.Identity {
	out := make([]model.Identity, 0, len(d.Clear))
	for id := range d.Clear {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func (d *Delta) setPresence(id model.Identity, p model.Presence) {
	if d.Presence == nil {
		d.Presence = make(map[model.Identity]model.Presence)
	}
	d.Presence[id] = p.Normalized()
}
