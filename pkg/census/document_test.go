package census

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-census/pkg/testsupport"
)

func TestDocument(t *testing.T) {
	t.Parallel()
	f := newForm(t)
	mustSet(t, f, FieldHeadDOB, testsupport.BirthDate(40))
	mustSet(t, f, FieldNumChildren, "1")
	mustSet(t, f, "child1_dob", testsupport.BirthDate(41))

	doc := f.Document(f.CheckAll())
	if doc.Title != "Review & Submit" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if diff := cmp.Diff([]string{"Child 1: " + AgeWarningMessage}, doc.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Missing) == 0 || doc.Missing[0].Step != 1 {
		t.Fatalf("expected a missing summary starting at step 1, got %+v", doc.Missing)
	}

	complete := newForm(t)
	fillHousehold(t, complete)
	doc = complete.Document(complete.CheckAll())
	if doc.Missing != nil {
		t.Fatalf("complete form should have no missing summary, got %+v", doc.Missing)
	}
	if doc.Review.Empty() {
		t.Fatalf("expected review sections")
	}
}
