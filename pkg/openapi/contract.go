package openapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-census/pkg/config"
	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/render"
)

// DefaultPath is the operation path used when no endpoint is configured.
const DefaultPath = "/exec"

const (
	phonePattern    = `^$|^[0-9]{5} ?[0-9]{5}$`
	postalPattern   = `^$|^[0-9]{6}$`
	emailPattern    = `^$|^[^\s@]+@[^\s@]+\.[^\s@]+$`
	datePattern     = `^$|^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
	digitsPattern   = `^[0-9]*$`
	publicIDPattern = `^[A-Za-z0-9]+-[0-9]{8}-[0-9A-Z]{4}$`
	uuidPattern     = `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`
	timePattern     = `^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9:.]+(Z|[+-][0-9:]+)$`
)

// Contract is a parsed or generated OpenAPI document together with the
// request body schema of its submission operation.
type Contract struct {
	doc  *openapi3.T
	path string
	body *openapi3.Schema
}

// PayloadError reports a payload rejected by the contract, with the messages
// resolved to field keys where possible.
type PayloadError struct {
	Mapping render.ErrorMapping
}

func (e *PayloadError) Error() string {
	keys := make([]string, 0, len(e.Mapping.Fields))
	for key := range e.Mapping.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+len(e.Mapping.Form))
	for _, key := range keys {
		parts = append(parts, key+": "+strings.Join(e.Mapping.Fields[key], "; "))
	}
	parts = append(parts, e.Mapping.Form...)
	return "openapi: payload rejected: " + strings.Join(parts, ", ")
}

// Build generates the submission contract for fields. Multi-selects are
// string arrays, choices are enums, shaped kinds carry patterns that also
// accept the empty answer. Metadata added at submission time and child ages
// are described as well. Unknown keys are rejected.
func Build(fields []model.Field, cfg config.Config) (*Contract, error) {
	body := openapi3.NewObjectSchema()
	body.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}

	required := make([]string, 0, len(fields)+4)
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		key := field.ID.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		body.WithProperty(key, fieldSchema(field))
		if field.ID.Group == model.GroupNone && !field.Multi() {
			required = append(required, key)
		}
	}

	for n := 1; n <= cfg.MaxChildren; n++ {
		body.WithProperty(model.Child(n, "age").Key(), openapi3.NewIntegerSchema().WithMin(0))
	}
	body.WithProperty("public_submission_id", openapi3.NewStringSchema().WithPattern(publicIDPattern))
	body.WithProperty("client_time", openapi3.NewStringSchema().WithPattern(timePattern))
	body.WithProperty("client_request_id", openapi3.NewStringSchema().WithPattern(uuidPattern))
	body.WithProperty("draft_used", openapi3.NewBoolSchema())
	required = append(required, "public_submission_id", "client_time", "client_request_id", "draft_used")
	body.Required = required

	op := openapi3.NewOperation()
	op.OperationID = "submitCensus"
	op.Summary = "Submit a household census form"
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
	}
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(200, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Accepted. The response body is opaque."),
	}))

	path, server := endpoint(cfg.SubmitURL)
	paths := openapi3.NewPaths()
	paths.Set(path, &openapi3.PathItem{Post: op})

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Household census submission",
			Version: "1.0.0",
		},
		Paths: paths,
	}
	if server != "" {
		doc.Servers = openapi3.Servers{{URL: server}}
	}
	return &Contract{doc: doc, path: path, body: body}, nil
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Kind {
	case model.KindMulti:
		items := openapi3.NewStringSchema()
		if len(field.Options) > 0 {
			items.Enum = enum(field.Options)
		}
		schema = openapi3.NewArraySchema().WithItems(items)
		schema.MinItems = 1
	case model.KindSingle:
		schema = openapi3.NewStringSchema()
		if len(field.Options) > 0 {
			schema.Enum = append(enum(field.Options), "")
		}
	case model.KindPhone:
		schema = openapi3.NewStringSchema().WithPattern(phonePattern)
	case model.KindPostal:
		schema = openapi3.NewStringSchema().WithPattern(postalPattern)
	case model.KindEmail:
		schema = openapi3.NewStringSchema().WithPattern(emailPattern)
	case model.KindDate:
		schema = openapi3.NewStringSchema().WithPattern(datePattern)
	case model.KindNumber:
		schema = openapi3.NewStringSchema().WithPattern(digitsPattern)
	default:
		schema = openapi3.NewStringSchema()
	}
	if field.MaxLength > 0 && field.Kind != model.KindMulti {
		schema.WithMaxLength(int64(field.MaxLength))
	}
	schema.Title = field.DisplayLabel()
	return schema
}

func enum(options []string) []any {
	out := make([]any, 0, len(options))
	for _, option := range options {
		out = append(out, option)
	}
	return out
}

func endpoint(raw string) (path, server string) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || u.Path == "" {
		return DefaultPath, ""
	}
	dir, file := u.Path[:strings.LastIndex(u.Path, "/")], u.Path[strings.LastIndex(u.Path, "/"):]
	return file, u.Scheme + "://" + u.Host + dir
}

// Document returns the underlying OpenAPI document.
func (c *Contract) Document() *openapi3.T { return c.doc }

// Path returns the path of the submission operation.
func (c *Contract) Path() string { return c.path }

// Keys lists the payload properties, sorted.
func (c *Contract) Keys() []string {
	keys := make([]string, 0, len(c.body.Properties))
	for key := range c.body.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ValidatePayload checks payload against the request body schema. A
// rejection is returned as *PayloadError.
func (c *Contract) ValidatePayload(payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openapi: encode payload: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("openapi: decode payload: %w", err)
	}

	err = c.body.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	messages := make(map[string][]string)
	collect(err, messages)
	return &PayloadError{Mapping: render.MapErrorPayload(c.Keys(), messages)}
}

func collect(err error, into map[string][]string) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collect(inner, into)
		}
	case *openapi3.SchemaError:
		path := "/" + strings.Join(e.JSONPointer(), "/")
		into[path] = append(into[path], e.Reason)
	default:
		into[""] = append(into[""], err.Error())
	}
}

// JSON renders the document as indented JSON.
func (c *Contract) JSON() ([]byte, error) {
	return json.MarshalIndent(c.doc, "", "  ")
}

// YAML renders the document as block-style YAML, keeping the key order of
// the JSON rendering.
func (c *Contract) YAML() ([]byte, error) {
	raw, err := json.Marshal(c.doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("openapi: convert document: %w", err)
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
