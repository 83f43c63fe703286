package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-census/pkg/census"
	"github.com/goliatone/go-census/pkg/draft"
	"github.com/goliatone/go-census/pkg/testsupport"
)

// stubDriver answers prompts from per-message queues. An exhausted queue
// behaves like pressing enter: the prompt default is accepted.
type stubDriver struct {
	answers  map[string][]string
	multi    map[string][][]string
	confirm  []bool
	asked    []string
	messages []string
}

func (s *stubDriver) next(message string) (string, bool) {
	key := strings.TrimSuffix(message, " *")
	s.asked = append(s.asked, key)
	queue := s.answers[key]
	if len(queue) == 0 {
		return "", false
	}
	s.answers[key] = queue[1:]
	return queue[0], true
}

func (s *stubDriver) Text(_ context.Context, p TextPrompt) (string, error) {
	answer, ok := s.next(p.Label)
	if !ok {
		return p.Default, nil
	}
	if p.Check != nil {
		if err := p.Check(answer); err != nil {
			return "", fmt.Errorf("scripted answer %q for %q: %w", answer, p.Label, err)
		}
	}
	return answer, nil
}

func (s *stubDriver) Confirm(_ context.Context, label string, _ bool) (bool, error) {
	s.asked = append(s.asked, label)
	if len(s.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[0]
	s.confirm = s.confirm[1:]
	return val, nil
}

func (s *stubDriver) Choose(_ context.Context, p ChoicePrompt) (string, error) {
	answer, ok := s.next(p.Label)
	if !ok {
		if offered(p.Options, p.Default) {
			return p.Default, nil
		}
		return p.Options[0], nil
	}
	if !offered(p.Options, answer) {
		return "", fmt.Errorf("option %q not offered for %q", answer, p.Label)
	}
	return answer, nil
}

func (s *stubDriver) ChooseMany(_ context.Context, p ChoicePrompt) ([]string, error) {
	key := strings.TrimSuffix(p.Label, " *")
	s.asked = append(s.asked, key)
	queue := s.multi[key]
	if len(queue) == 0 {
		return p.Defaults, nil
	}
	s.multi[key] = queue[1:]
	return queue[0], nil
}

func (s *stubDriver) Say(_ context.Context, msg string) error {
	s.messages = append(s.messages, msg)
	return nil
}

func (s *stubDriver) wasAsked(message string) bool {
	for _, asked := range s.asked {
		if asked == message {
			return true
		}
	}
	return false
}

func (s *stubDriver) said(fragment string) bool {
	for _, msg := range s.messages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func completeHousehold() map[string][]string {
	return map[string][]string{
		"Head Prefix":           {"Mr."},
		"Head First Name":       {"Joseph"},
		"Head Last Name":        {"Thomas"},
		"Head Date of Birth":    {testsupport.BirthDate(45)},
		"Mobile Number":         {"9876543210"},
		"Marital Status":        {"Married"},
		"Spouse Prefix":         {"Mrs."},
		"Spouse First Name":     {"Mary"},
		"Spouse Last Name":      {"Joseph"},
		"Spouse Date of Birth":  {testsupport.BirthDate(40)},
		"House Number":          {"12B"},
		"City":                  {"Kochi"},
		"State":                 {"Kerala"},
		"PIN Code":              {"682031"},
		"Number of Children":    {"1"},
		"Child 1 Gender":        {"Female"},
		"Child 1 First Name":    {"Anna"},
		"Child 1 Last Name":     {"Thomas"},
		"Child 1 Date of Birth": {testsupport.BirthDate(12)},
		"Child 1 Education":     {"In school"},
		"Rite":                  {"Latin"},
		"Father's Name":         {"Thomas"},
		"Father's Age":          {"78"},
		"Job Seeking":           {census.JobSeekingFamily},
		"Job Seeker 1 Name":     {"Anna"},

		"How many job seekers? (0-5)": {"1"},
	}
}

func newForm() *census.Form {
	return census.New(census.WithClock(testsupport.Clock()))
}

func TestFillWalksVisibleFields(t *testing.T) {
	t.Parallel()
	driver := &stubDriver{
		answers: completeHousehold(),
		multi:   map[string][][]string{"Dependents": {{"Father"}}},
	}
	form := newForm()

	report, err := New(WithPromptDriver(driver)).Fill(context.Background(), form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !report.OK {
		t.Fatalf("expected a complete form, got issues %+v", report.Issues)
	}
	if form.Step() != form.Config().TotalSteps {
		t.Fatalf("expected the review step, got %d", form.Step())
	}

	if driver.asked[0] != "Head Prefix" {
		t.Fatalf("expected the first household field first, got %q", driver.asked[0])
	}
	for _, want := range []string{"Spouse First Name", "Child 1 Education", "Father's Name", "Job Seeker 1 Name"} {
		if !driver.wasAsked(want) {
			t.Fatalf("expected %q to be asked; asked %v", want, driver.asked)
		}
	}
	for _, unwanted := range []string{"Child 2 Gender", "Child 1 Working Status", "Other Blood Group", "Mother's Name"} {
		if driver.wasAsked(unwanted) {
			t.Fatalf("hidden field %q was asked", unwanted)
		}
	}

	for key, want := range map[string]string{
		"head_mobile":      "98765 43210",
		"spouse_firstname": "Mary",
		"child1_education": "In school",
		"father_name":      "Thomas",
		"jobseeker1_name":  "Anna",
	} {
		if got := form.Value(key).Text; got != want {
			t.Fatalf("%s: want %q, got %q", key, want, got)
		}
	}
	if !driver.said("Step 4: Additional Information") {
		t.Fatalf("expected step headings, got %v", driver.messages)
	}
}

func TestFillRepromptsInvalidFormat(t *testing.T) {
	t.Parallel()
	answers := completeHousehold()
	answers["Mobile Number"] = []string{"123", "9876543210"}
	driver := &stubDriver{answers: answers, multi: map[string][][]string{}}
	form := newForm()

	if _, err := New(WithPromptDriver(driver)).Fill(context.Background(), form); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !driver.said("Mobile Number: ") {
		t.Fatalf("expected a format message, got %v", driver.messages)
	}
	if got := form.Value("head_mobile").Text; got != "98765 43210" {
		t.Fatalf("unexpected mobile %q", got)
	}
}

func TestFillWithoutRetryReturnsIncompleteReport(t *testing.T) {
	t.Parallel()
	driver := &stubDriver{answers: map[string][]string{}, multi: map[string][][]string{}}
	form := newForm()

	report, err := New(WithPromptDriver(driver), WithRetry(false)).Fill(context.Background(), form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if report.OK || report.FirstStep != 1 {
		t.Fatalf("expected an incomplete first step, got %+v", report)
	}
	if form.Step() != 1 {
		t.Fatalf("form should move to the first failing step, got %d", form.Step())
	}
	if !driver.said("look incomplete") {
		t.Fatalf("expected the soft step warning, got %v", driver.messages)
	}
	if !driver.said("Head First Name") {
		t.Fatalf("expected the missing summary, got %v", driver.messages)
	}
}

func TestFillRetriesFromFirstFailingStep(t *testing.T) {
	t.Parallel()
	answers := completeHousehold()
	answers["Head First Name"] = []string{"", "Joseph"}
	driver := &stubDriver{
		answers: answers,
		multi:   map[string][][]string{},
		confirm: []bool{true},
	}
	store := draft.NewMemoryStore()
	drafts := draft.NewManager(store, draft.WithClock(testsupport.Clock()))
	form := newForm()

	report, err := New(WithPromptDriver(driver), WithDrafts(drafts)).Fill(context.Background(), form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !report.OK {
		t.Fatalf("expected a complete form after retry, got %+v", report.Issues)
	}
	if !driver.wasAsked("Go back to step 1?") {
		t.Fatalf("expected a retry prompt, asked %v", driver.asked)
	}
	if got := form.Value("child1_firstname").Text; got != "Anna" {
		t.Fatalf("second pass should keep earlier answers, got %q", got)
	}
	if got := form.Value("jobseeker1_name").Text; got != "Anna" || form.Count("jobseeker") != 1 {
		t.Fatalf("job seekers should survive the second pass")
	}
	if !drafts.Exists(context.Background()) {
		t.Fatalf("expected a draft saved when leaving steps")
	}
}

func TestFillRejectsLockedForm(t *testing.T) {
	t.Parallel()
	form := newForm()
	form.Lock()
	if _, err := New(WithPromptDriver(&stubDriver{})).Fill(context.Background(), form); !errors.Is(err, census.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := New(WithPromptDriver(&stubDriver{})).Fill(context.Background(), nil); !errors.Is(err, ErrNoForm) {
		t.Fatalf("expected ErrNoForm, got %v", err)
	}
}
