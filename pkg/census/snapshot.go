package census

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-census/pkg/age"
	"github.com/goliatone/go-census/pkg/draft"
	"github.com/goliatone/go-census/pkg/model"
)

// Snapshot captures the step, every value and the block counts.
func (f *Form) Snapshot() draft.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return draft.Snapshot{
		Step:      f.step,
		Timestamp: f.now().UTC(),
		Values:    f.state.Encode(),
		Counts: map[model.Group]int{
			model.GroupChild:     f.builder.Count(model.GroupChild),
			model.GroupJobSeeker: f.builder.Count(model.GroupJobSeeker),
			model.GroupDependent: f.builder.Count(model.GroupDependent),
		},
	}
}

// Restore rebuilds the form from a snapshot: blocks first (children, job
// seeking and its blocks, dependents), then values, then a full rule pass
// and finally the saved step. Keys the current form does not bind are
// ignored; missing keys stay empty.
func (f *Form) Restore(s draft.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return ErrLocked
	}
	f.reset()

	children, ok := s.Counts[model.GroupChild]
	if !ok {
		children, _ = strconv.Atoi(strings.TrimSpace(s.Values[FieldNumChildren].Text))
	}
	if err := f.setChildCount(children); err != nil {
		return err
	}

	seeking := model.Household(FieldJobSeeking)
	if v, ok := s.Values[FieldJobSeeking]; ok {
		f.restoreValue(seeking, v)
	}
	if JobSeekingOpen(f.state.Text(seeking)) {
		if err := f.setJobSeekers(s.Count(model.GroupJobSeeker)); err != nil {
			return err
		}
	}

	if v, ok := s.Values[FieldDependents]; ok {
		f.restoreValue(model.Household(FieldDependents), v)
		if err := f.setDependents(f.state.Get(model.Household(FieldDependents)).Items); err != nil {
			return err
		}
	}

	ignored := 0
	for key, v := range s.Values {
		switch key {
		case FieldNumChildren, FieldJobSeeking, FieldDependents:
			continue
		}
		id, ok := f.registry.Resolve(key)
		if !ok {
			ignored++
			continue
		}
		f.restoreValue(id, v)
	}

	f.refresh()
	f.scrub()
	f.goTo(s.Step)
	f.draftUsed = true

	f.logger.V(1).Info("draft restored", "step", f.step, "fields", len(s.Values), "ignored", ignored)
	return nil
}

func (f *Form) restoreValue(id model.Identity, v model.Value) {
	field, ok := f.registry.Lookup(id)
	if !ok {
		return
	}
	f.state.Set(id, model.Normalize(field, coerce(field, v)))
}

// Payload flattens the form into the submission shape: every bound field by
// wire key (strings, or string arrays for multi-selects with a selection)
// plus child{n}_age for children with a birth date.
func (f *Form) Payload() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]any, f.registry.Len())
	for _, field := range f.registry.Fields() {
		v := f.state.Get(field.ID)
		if !field.Multi() {
			out[field.ID.Key()] = v.Text
			continue
		}
		if v.Empty() {
			continue
		}
		out[field.ID.Key()] = append([]string(nil), v.Items...)
	}

	today := f.now()
	for n := 1; n <= f.builder.Count(model.GroupChild); n++ {
		if years, ok := age.Of(f.state.Text(model.Child(n, ChildDOB)), today); ok {
			out[model.Child(n, "age").Key()] = years
		}
	}
	return out
}
