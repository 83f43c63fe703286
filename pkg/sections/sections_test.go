package sections

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-census/pkg/model"
)

func testBuilder() *Builder {
	return New(
		Template{
			Group: model.GroupJobSeeker,
			Title: "Job Seeker",
			Max:   3,
			Fields: []model.Field{
				{ID: model.Identity{Name: "name"}, Kind: model.KindTextOnly, Step: 4},
				{ID: model.Identity{Name: "age"}, Kind: model.KindNumber, Step: 4},
			},
		},
		Template{
			Group: model.GroupDependent,
			Fields: []model.Field{
				{ID: model.Identity{Name: "name"}, Label: "Name", Step: 3},
			},
			Extra: []model.Field{
				{ID: model.Dependent("dependent_other", "relationship"), Label: "Relationship", Step: 3},
			},
		},
	)
}

func keys(ids []model.Identity) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Key())
	}
	return out
}

func fieldKeys(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.ID.Key())
	}
	return out
}

func TestSetGroupCountClampsAndRecreates(t *testing.T) {
	t.Parallel()

	b := testBuilder()
	change, err := b.SetGroupCount(model.GroupJobSeeker, 9)
	if err != nil {
		t.Fatalf("SetGroupCount: %v", err)
	}
	if b.Count(model.GroupJobSeeker) != 3 {
		t.Fatalf("count = %d, want clamp to 3", b.Count(model.GroupJobSeeker))
	}
	if len(change.Bind) != 6 || len(change.Drop) != 0 {
		t.Fatalf("unexpected change %+v", change)
	}

	change, err = b.SetGroupCount(model.GroupJobSeeker, -2)
	if err != nil {
		t.Fatalf("SetGroupCount: %v", err)
	}
	if b.Count(model.GroupJobSeeker) != 0 || len(change.Drop) != 6 || len(change.Unbind) != 6 {
		t.Fatalf("expected full teardown, got %+v", change)
	}
}

func TestAddBeyondMax(t *testing.T) {
	t.Parallel()

	b := testBuilder()
	for i := 0; i < 3; i++ {
		if _, err := b.Add(model.GroupJobSeeker); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
	if _, err := b.Add(model.GroupJobSeeker); !errors.Is(err, ErrGroupFull) {
		t.Fatalf("expected ErrGroupFull, got %v", err)
	}
}

func TestRemoveRenumbersContiguously(t *testing.T) {
	t.Parallel()

	b := testBuilder()
	if _, err := b.SetGroupCount(model.GroupJobSeeker, 3); err != nil {
		t.Fatalf("SetGroupCount: %v", err)
	}

	change, err := b.Remove(model.GroupJobSeeker, 1)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if diff := cmp.Diff([]string{"jobseeker1_name", "jobseeker1_age"}, keys(change.Drop)); diff != "" {
		t.Fatalf("drop mismatch (-want +got):\n%s", diff)
	}
	var moves []string
	for _, m := range change.Moves {
		moves = append(moves, m.From.Key()+">"+m.To.Key())
	}
	wantMoves := []string{
		"jobseeker2_name>jobseeker1_name",
		"jobseeker2_age>jobseeker1_age",
		"jobseeker3_name>jobseeker2_name",
		"jobseeker3_age>jobseeker2_age",
	}
	if diff := cmp.Diff(wantMoves, moves); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"jobseeker3_name", "jobseeker3_age"}, keys(change.Unbind)); diff != "" {
		t.Fatalf("unbind mismatch (-want +got):\n%s", diff)
	}
	if b.Count(model.GroupJobSeeker) != 2 {
		t.Fatalf("count = %d, want 2", b.Count(model.GroupJobSeeker))
	}

	if _, err := b.Remove(model.GroupJobSeeker, 5); !errors.Is(err, ErrNoBlock) {
		t.Fatalf("expected ErrNoBlock, got %v", err)
	}
}

func TestSetSelectedCategories(t *testing.T) {
	t.Parallel()

	b := testBuilder()
	change, err := b.SetSelectedCategories([]string{"Father-in-Law", "Other", "father in law", "  "})
	if err != nil {
		t.Fatalf("SetSelectedCategories: %v", err)
	}
	want := []string{"father_in_law_name", "other_name", "dependent_other_relationship"}
	if diff := cmp.Diff(want, fieldKeys(change.Bind)); diff != "" {
		t.Fatalf("bind mismatch (-want +got):\n%s", diff)
	}
	if change.Bind[0].Label != "Father-in-Law's Name" {
		t.Fatalf("label = %q", change.Bind[0].Label)
	}

	change, err = b.SetSelectedCategories([]string{"Mother"})
	if err != nil {
		t.Fatalf("SetSelectedCategories: %v", err)
	}
	if diff := cmp.Diff(want, keys(change.Drop)); diff != "" {
		t.Fatalf("drop mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Mother"}, b.Selected()); diff != "" {
		t.Fatalf("selected mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Father":              "father",
		"  Grand-Mother (M) ": "grand_mother_m",
		"Other":               "other",
		"---":                 "",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnknownGroup(t *testing.T) {
	t.Parallel()

	if _, err := testBuilder().SetGroupCount(model.GroupChild, 1); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
}
