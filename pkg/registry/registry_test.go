package registry_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/registry"
)

func TestBindIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	field := model.Field{ID: model.Child(1, "dob"), Kind: model.KindDate, Step: 2, Required: true}

	if !reg.Bind(field) {
		t.Fatalf("first bind should register")
	}
	changed := field
	changed.Required = false
	if reg.Bind(changed) {
		t.Fatalf("second bind should be a no-op")
	}
	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}
	got, ok := reg.Lookup(field.ID)
	if !ok || !got.Required {
		t.Fatalf("original declaration should be kept, got %+v", got)
	}
}

func TestResolveAndUnbind(t *testing.T) {
	t.Parallel()

	reg := registry.New(
		model.Field{ID: model.Household("head_dob"), Step: 1},
		model.Field{ID: model.Dependent("father", "age"), Step: 3},
	)

	id, ok := reg.Resolve("father_age")
	if !ok {
		t.Fatalf("expected father_age to resolve")
	}
	if diff := cmp.Diff(model.Dependent("father", "age"), id); diff != "" {
		t.Fatalf("identity mismatch (-want +got):\n%s", diff)
	}

	if !reg.Unbind(id) {
		t.Fatalf("unbind should report removal")
	}
	if _, ok := reg.Resolve("father_age"); ok {
		t.Fatalf("key should no longer resolve")
	}
	if reg.Unbind(id) {
		t.Fatalf("second unbind should be a no-op")
	}
}

func TestFieldsOrderedByStep(t *testing.T) {
	t.Parallel()

	reg := registry.New(
		model.Field{ID: model.Household("rite"), Step: 3},
		model.Field{ID: model.Child(2, "firstname"), Step: 2},
		model.Field{ID: model.Household("head_firstname"), Step: 1},
		model.Field{ID: model.Child(1, "firstname"), Step: 2},
		model.Field{ID: model.Household("num_children"), Step: 2},
	)

	var keys []string
	for _, field := range reg.Fields() {
		keys = append(keys, field.ID.Key())
	}
	want := []string{"head_firstname", "child2_firstname", "child1_firstname", "num_children", "rite"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	var step2 []string
	for _, field := range reg.ForStep(2) {
		step2 = append(step2, field.ID.Key())
	}
	if len(step2) != 3 {
		t.Fatalf("ForStep(2) = %v", step2)
	}
}

func TestBindRefusesTakenKey(t *testing.T) {
	t.Parallel()

	seeker := model.Field{ID: model.JobSeeker(1, "name"), Step: 4}
	reg := registry.New(seeker)

	clash := model.Field{ID: model.Dependent("jobseeker1", "name"), Step: 3}
	if reg.Bind(clash) {
		t.Fatalf("bind should refuse a key owned by another identity")
	}
	if reg.Bound(clash.ID) {
		t.Fatalf("refused identity should not be bound")
	}
	id, ok := reg.Resolve("jobseeker1_name")
	if !ok {
		t.Fatalf("expected jobseeker1_name to resolve")
	}
	if diff := cmp.Diff(seeker.ID, id); diff != "" {
		t.Fatalf("identity mismatch (-want +got):\n%s", diff)
	}

	if reg.Unbind(clash.ID) {
		t.Fatalf("unbinding the refused identity should be a no-op")
	}
	if _, ok := reg.Resolve("jobseeker1_name"); !ok {
		t.Fatalf("key should still resolve to the job seeker")
	}
}
