package openapi_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-census/pkg/census"
	"github.com/goliatone/go-census/pkg/config"
	"github.com/goliatone/go-census/pkg/openapi"
	"github.com/goliatone/go-census/pkg/testsupport"
)

var cmpSorted = cmpopts.SortSlices(func(a, b string) bool { return a < b })

func buildContract(t *testing.T, cfg config.Config) *openapi.Contract {
	t.Helper()
	contract, err := openapi.Build(census.DefaultCatalog(cfg).Expanded(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return contract
}

func withMetadata(payload map[string]any) map[string]any {
	payload["public_submission_id"] = "HFC-20240615-A1B2"
	payload["client_time"] = "2024-06-15T10:30:00.000Z"
	payload["client_request_id"] = "0b6d1b9e-3c52-4f59-9e1f-3f5b7c1d2a10"
	payload["draft_used"] = false
	return payload
}

func TestBuildProducesValidDocument(t *testing.T) {
	t.Parallel()
	contract := buildContract(t, config.Defaults())

	if err := contract.Document().Validate(context.Background()); err != nil {
		t.Fatalf("document should validate: %v", err)
	}
	if contract.Path() != openapi.DefaultPath {
		t.Fatalf("unexpected path %q", contract.Path())
	}

	keys := make(map[string]bool)
	for _, key := range contract.Keys() {
		keys[key] = true
	}
	for _, key := range []string{
		"head_firstname", "child4_dob", "child4_age", "jobseeker5_name",
		"father_in_law_name", "dependent_other_relationship", "public_submission_id",
	} {
		if !keys[key] {
			t.Fatalf("contract is missing %s", key)
		}
	}
	if keys["child5_dob"] {
		t.Fatalf("contract should stop at the configured child maximum")
	}
}

func TestBuildUsesConfiguredEndpoint(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.SubmitURL = "https://script.google.com/macros/s/AKfy-cb_123/exec"
	contract := buildContract(t, cfg)

	if contract.Path() != "/exec" {
		t.Fatalf("unexpected path %q", contract.Path())
	}
	servers := contract.Document().Servers
	if len(servers) != 1 || servers[0].URL != "https://script.google.com/macros/s/AKfy-cb_123" {
		t.Fatalf("unexpected servers %+v", servers)
	}
}

func TestValidatePayloadAcceptsFormPayload(t *testing.T) {
	t.Parallel()
	contract := buildContract(t, config.Defaults())

	form := census.New(census.WithClock(testsupport.Clock()))
	for _, kv := range [][2]string{
		{"head_firstname", "Joseph"},
		{"head_mobile", "9876543210"},
		{census.FieldHeadDOB, testsupport.BirthDate(45)},
		{census.FieldNumChildren, "1"},
		{"child1_dob", testsupport.BirthDate(12)},
		{"address_pincode", "682031"},
	} {
		if err := form.SetText(kv[0], kv[1]); err != nil {
			t.Fatalf("set %s: %v", kv[0], err)
		}
	}
	if err := form.SetDependents("Father", "Other"); err != nil {
		t.Fatalf("set dependents: %v", err)
	}

	if err := contract.ValidatePayload(withMetadata(form.Payload())); err != nil {
		t.Fatalf("payload should validate: %v", err)
	}
}

func TestValidatePayloadMapsErrors(t *testing.T) {
	t.Parallel()
	contract := buildContract(t, config.Defaults())

	form := census.New(census.WithClock(testsupport.Clock()))
	payload := withMetadata(form.Payload())
	payload["head_mobile"] = "12345"
	payload["marital_status"] = "Widowed"
	payload["illness"] = []string{"Flu"}
	payload["legacy_field"] = "x"
	delete(payload, "head_lastname")

	err := contract.ValidatePayload(payload)
	var perr *openapi.PayloadError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PayloadError, got %v", err)
	}

	got := make([]string, 0, len(perr.Mapping.Fields))
	for key := range perr.Mapping.Fields {
		got = append(got, key)
	}
	want := []string{"head_lastname", "head_mobile", "illness", "marital_status"}
	if diff := cmp.Diff(want, got, cmpSorted); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if len(perr.Mapping.Form) != 1 || !strings.Contains(perr.Mapping.Form[0], "legacy_field") {
		t.Fatalf("unknown key should be a form-level message, got %v", perr.Mapping.Form)
	}
	if !strings.Contains(err.Error(), "head_mobile:") {
		t.Fatalf("error text should name the field: %v", err)
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	built := buildContract(t, config.Defaults())
	jsonDoc, err := built.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	yamlDoc, err := built.YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(yamlDoc)), "{") {
		t.Fatalf("yaml should use block style")
	}

	ctx := context.Background()
	bad := withMetadata(map[string]any{"head_mobile": "12"})
	for name, raw := range map[string][]byte{"json": jsonDoc, "yaml": yamlDoc} {
		parsed, err := openapi.Parse(ctx, raw)
		if err != nil {
			t.Fatalf("%s parse: %v", name, err)
		}
		if diff := cmp.Diff(built.Keys(), parsed.Keys()); diff != "" {
			t.Fatalf("%s keys mismatch (-want +got):\n%s", name, diff)
		}
		if err := parsed.ValidatePayload(bad); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestLoadFromFS(t *testing.T) {
	t.Parallel()
	raw, err := buildContract(t, config.Defaults()).JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	files := fstest.MapFS{"contracts/census.json": &fstest.MapFile{Data: raw}}
	ctx := context.Background()

	contract, err := openapi.Load(ctx, openapi.SourceFromFS("contracts/census.json"), openapi.WithFileSystem(files))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if contract.Path() != openapi.DefaultPath {
		t.Fatalf("unexpected path %q", contract.Path())
	}

	if _, err := openapi.Load(ctx, openapi.SourceFromFS("contracts/census.json")); err == nil {
		t.Fatalf("expected error without a filesystem")
	}
	if _, err := openapi.Parse(ctx, []byte(`openapi: 3.0.3
info: {title: empty, version: "1"}
paths: {}
`)); err == nil {
		t.Fatalf("expected error for a document without operations")
	}
}
