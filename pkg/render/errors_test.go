package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-census/pkg/render"
	"github.com/goliatone/go-census/pkg/validation"
)

func TestMapErrorPayload(t *testing.T) {
	keys := []string{"head_mobile", "email", "child1_dob", "illness"}
	payload := map[string][]string{
		"/body/head_mobile":       {"Mobile must have 10 digits"},
		"body.email":              {"Email invalid"},
		"$.payload.illness[0]":    {"Unknown option"},
		"/child1_dob":             {" Date required ", "Date required"},
		"non_field_errors":        {"Form level error"},
		"request/body/unknown":    {"Should fall back to form errors"},
		"":                        {"Unscoped form error"},
		"/body/head_mobile/extra": {""},
	}

	mapped := render.MapErrorPayload(keys, payload)

	wantFields := map[string][]string{
		"head_mobile": {"Mobile must have 10 digits"},
		"email":       {"Email invalid"},
		"illness":     {"Unknown option"},
		"child1_dob":  {"Date required"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapIssues(t *testing.T) {
	mapped := render.MapIssues([]validation.Issue{
		{Field: "email", Message: "Please enter a valid email address"},
		{Field: "email", Message: "Please enter a valid email address"},
		{Message: "Submission endpoint not configured"},
	})
	want := render.ErrorMapping{
		Fields: map[string][]string{"email": {"Please enter a valid email address"}},
		Form:   []string{"Submission endpoint not configured"},
	}
	if diff := cmp.Diff(want, mapped); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeMessages(t *testing.T) {
	merged := render.MergeMessages([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged messages mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewDropsBlankItems(t *testing.T) {
	var review render.Review
	review.Add("Basic",
		render.Item{Label: "Head of Family", Value: "Mr. Joseph Thomas"},
		render.Item{Label: "Email", Value: "  "},
	)
	review.Add("Children", render.Item{Label: "Child 1 DOB", Value: ""})

	want := render.Review{Sections: []render.Section{{
		Title: "Basic",
		Items: []render.Item{{Label: "Head of Family", Value: "Mr. Joseph Thomas"}},
	}}}
	if diff := cmp.Diff(want, review); diff != "" {
		t.Fatalf("review mismatch (-want +got):\n%s", diff)
	}
	if _, ok := review.Section("Children"); ok {
		t.Fatalf("expected empty section to be dropped")
	}
}

type namedRenderer struct{ render.Renderer }

func (namedRenderer) Name() string { return "stub" }

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry, err := render.NewRegistry(namedRenderer{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := registry.Register(namedRenderer{}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if _, err := registry.Get("missing"); !errors.Is(err, render.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := registry.Get(" STUB "); err != nil {
		t.Fatalf("lookup should ignore case and spaces: %v", err)
	}
	if diff := cmp.Diff([]string{"stub"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
