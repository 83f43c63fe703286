package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-census/pkg/render"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema", "--format", "yaml")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, want := range []string{"openapi: 3.0.3", "operationId: submitCensus", "head_firstname:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("schema output is missing %q", want)
		}
	}

	if _, err := execute(t, "schema", "--format", "xml"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestValidateCommandReportsMissingFields(t *testing.T) {
	answers := writeFile(t, "answers.json", `{"currentStep": 1, "values": {"head_firstname": "Joseph"}}`)

	out, err := execute(t, "validate", "--answers", answers)
	if !errors.Is(err, errIncomplete) {
		t.Fatalf("expected errIncomplete, got %v", err)
	}
	if !strings.Contains(out, "Please complete the following:") || !strings.Contains(out, "Head Last Name") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Head First Name") {
		t.Fatalf("answered field should not be listed:\n%s", out)
	}
}

func TestValidateCommandPrintsJSON(t *testing.T) {
	answers := writeFile(t, "answers.json", `{"currentStep": 1, "values": {"head_firstname": "Joseph", "head_mobile": "12345"}}`)

	out, err := execute(t, "validate", "--answers", answers, "--json")
	if !errors.Is(err, errIncomplete) {
		t.Fatalf("expected errIncomplete, got %v", err)
	}
	var mapping render.ErrorMapping
	if err := json.Unmarshal([]byte(out), &mapping); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(mapping.Fields["head_mobile"]) == 0 || len(mapping.Fields["head_lastname"]) == 0 {
		t.Fatalf("expected issues for head_mobile and head_lastname, got %v", mapping.Fields)
	}
	if _, ok := mapping.Fields["head_firstname"]; ok {
		t.Fatalf("answered field should not be reported: %v", mapping.Fields)
	}
}

func TestReviewCommandRendersHTML(t *testing.T) {
	answers := writeFile(t, "answers.json", `{"currentStep": 5, "values": {"head_prefix": "Mr.", "head_firstname": "Joseph", "head_lastname": "Thomas"}}`)
	output := filepath.Join(t.TempDir(), "review.html")

	if _, err := execute(t, "review", "--answers", answers, "--format", "html", "--output", output); err != nil {
		t.Fatalf("review: %v", err)
	}
	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	page := string(raw)
	for _, want := range []string{"<!DOCTYPE html>", "Mr. Joseph Thomas", "--color-primary: #1d4ed8;", "Please complete the following"} {
		if !strings.Contains(page, want) {
			t.Fatalf("review page is missing %q", want)
		}
	}
}

func TestDraftCommandsWithFileStore(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "draft", "show", "--store", "file", "--store-path", dir)
	if err != nil {
		t.Fatalf("draft show: %v", err)
	}
	if !strings.Contains(out, "No saved draft.") {
		t.Fatalf("unexpected output %q", out)
	}

	if err := os.WriteFile(filepath.Join(dir, "hfc_draft.json"), []byte(`{"currentStep": 2, "values": {"head_firstname": "Joseph"}}`), 0o600); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	out, err = execute(t, "validate", "--store", "file", "--store-path", dir)
	if !errors.Is(err, errIncomplete) || !strings.Contains(out, "Head Last Name") {
		t.Fatalf("validate should read the saved draft, got %v:\n%s", err, out)
	}

	if _, err := execute(t, "draft", "clear", "--store", "file", "--store-path", dir); err != nil {
		t.Fatalf("draft clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "hfc_draft.json")); !os.IsNotExist(err) {
		t.Fatalf("draft file should be removed, stat err %v", err)
	}
}

func TestUnknownStoreIsRejected(t *testing.T) {
	if _, err := execute(t, "draft", "clear", "--store", "redis"); err == nil {
		t.Fatalf("expected an error for an unknown store")
	}
}
