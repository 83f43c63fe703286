package validation

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-census/pkg/model"
)

type fakeSubject struct {
	fields   []model.Field
	values   map[model.Identity]model.Value
	presence map[model.Identity]model.Presence
}

func (s *fakeSubject) Fields() []model.Field { return s.fields }

func (s *fakeSubject) Value(id model.Identity) model.Value { return s.values[id] }

func (s *fakeSubject) Presence(id model.Identity) model.Presence { return s.presence[id] }

func (s *fakeSubject) add(field model.Field, p model.Presence, v model.Value) {
	s.fields = append(s.fields, field)
	if s.values == nil {
		s.values = map[model.Identity]model.Value{}
		s.presence = map[model.Identity]model.Presence{}
	}
	s.values[field.ID] = v
	s.presence[field.ID] = p
}

var fixedNow = func() time.Time { return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC) }

func TestCheckStepIsSoft(t *testing.T) {
	t.Parallel()

	s := &fakeSubject{}
	s.add(model.Field{ID: model.Household("head_firstname"), Step: 1, Label: "First Name"}, model.Shown(true), model.Text(" "))
	s.add(model.Field{ID: model.Household("spouse_firstname"), Step: 1}, model.Hidden, model.Value{})
	s.add(model.Field{ID: model.Household("email"), Kind: model.KindEmail, Step: 1}, model.Shown(false), model.Text("nope"))
	s.add(model.Field{ID: model.Household("rite"), Step: 3}, model.Shown(true), model.Value{})

	report := New(WithClock(fixedNow)).CheckStep(s, 1)
	if report.Incomplete != 1 {
		t.Fatalf("Incomplete = %d, want 1", report.Incomplete)
	}
	wantErrors := map[model.Identity]bool{
		model.Household("head_firstname"):   true,
		model.Household("spouse_firstname"): false,
		model.Household("email"):            true,
	}
	if diff := cmp.Diff(wantErrors, report.Errors); diff != "" {
		t.Fatalf("error state mismatch (-want +got):\n%s", diff)
	}
	if report.Warning == "" {
		t.Fatalf("expected warning text")
	}
}

func TestCheckAllExactMissingSet(t *testing.T) {
	t.Parallel()

	s := &fakeSubject{}
	s.add(model.Field{ID: model.Household("head_dob"), Kind: model.KindDate, Step: 1}, model.Shown(true), model.Text("2030-01-01"))
	s.add(model.Field{ID: model.Household("head_mobile"), Kind: model.KindPhone, Step: 1}, model.Shown(true), model.Text("98260 12345"))
	s.add(model.Field{ID: model.Household("address_pincode"), Kind: model.KindPostal, Step: 1}, model.Shown(false), model.Text("4520"))
	s.add(model.Field{ID: model.Child(1, "education"), Step: 2}, model.Hidden, model.Value{})
	s.add(model.Field{ID: model.Child(1, "mobile"), Kind: model.KindPhone, Step: 2}, model.Shown(false), model.Value{})
	s.add(model.Field{ID: model.Household("illness"), Kind: model.KindMulti, Step: 4}, model.Shown(true), model.Set())
	s.add(model.Field{ID: model.Household("rite"), Step: 3}, model.Shown(true), model.Value{})

	report := New(WithClock(fixedNow)).CheckAll(s)
	if report.OK {
		t.Fatalf("expected failure")
	}
	want := []string{"head_dob", "address_pincode", "rite", "illness"}
	if diff := cmp.Diff(want, report.Missing()); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if report.FirstStep != 1 || report.FirstField != model.Household("head_dob") {
		t.Fatalf("first = %d %s", report.FirstStep, report.FirstField)
	}
	kinds := map[string]IssueKind{}
	for _, issue := range report.Issues {
		kinds[issue.Field] = issue.Kind
	}
	if kinds["head_dob"] != IssueFormat || kinds["rite"] != IssueMissing {
		t.Fatalf("unexpected kinds %v", kinds)
	}
}

func TestCheckAllPasses(t *testing.T) {
	t.Parallel()

	s := &fakeSubject{}
	s.add(model.Field{ID: model.Household("email"), Kind: model.KindEmail, Step: 1}, model.Shown(true), model.Text("a@b.in"))
	s.add(model.Field{ID: model.Household("marital_status"), Kind: model.KindSingle, Step: 1, Options: []string{"Single", "Married"}}, model.Shown(true), model.Text("Married"))

	if report := New(WithClock(fixedNow)).CheckAll(s); !report.OK {
		t.Fatalf("expected success, got %+v", report.Issues)
	}
}

func TestFormatValidators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		field model.Field
		value model.Value
		ok    bool
	}{
		{model.Field{Kind: model.KindEmail}, model.Text("x@y.z"), true},
		{model.Field{Kind: model.KindEmail}, model.Text("x @y.z"), false},
		{model.Field{Kind: model.KindPhone}, model.Text("(982) 601-2345"), true},
		{model.Field{Kind: model.KindPhone}, model.Text("98260"), false},
		{model.Field{Kind: model.KindPostal}, model.Text("452 001"), true},
		{model.Field{Kind: model.KindDate}, model.Text("1890-01-01"), false},
		{model.Field{Kind: model.KindDate}, model.Text("2024-06-15"), true},
		{model.Field{Kind: model.KindText, MaxLength: 3}, model.Text("abcd"), false},
		{model.Field{Kind: model.KindMulti, Options: []string{"Car", "Other"}}, model.Set("Car", "Boat"), false},
		{model.Field{Kind: model.KindText, Pattern: `[A-Z]+`}, model.Text("ABC"), true},
	}
	v := New(WithClock(fixedNow))
	for i, tc := range cases {
		msg := v.format(tc.field, tc.value)
		if (msg == "") != tc.ok {
			t.Fatalf("case %d (%s %v): message %q, want ok=%v", i, tc.field.Kind, tc.value, msg, tc.ok)
		}
	}
}

func TestSummaryCapsPerStep(t *testing.T) {
	t.Parallel()

	var report Report
	for i := 1; i <= 13; i++ {
		report.Issues = append(report.Issues, Issue{Step: 2, Label: fmt.Sprintf("Field %d", i)})
	}
	report.Issues = append(report.Issues, Issue{Step: 4, Label: "Job Seeking"})

	summary := New().Summary(report)
	if len(summary) != 2 {
		t.Fatalf("expected two steps, got %d", len(summary))
	}
	if len(summary[0].Labels) != 10 || summary[0].More != 3 {
		t.Fatalf("step 2 summary = %+v", summary[0])
	}
	want := "Step 4:\n  - Job Seeking"
	if got := summary[1].Format(); got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}
