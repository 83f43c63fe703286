package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-census/pkg/validation"
)

// ErrorMapping splits error messages into field-level messages keyed by wire
// key and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// MergeMessages concatenates message slices, trimming whitespace and
// removing blanks and duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapIssues groups validation issues by field key.
func MapIssues(issues []validation.Issue) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for _, issue := range issues {
		if issue.Field == "" {
			mapping.Form = append(mapping.Form, issue.Message)
			continue
		}
		mapping.Fields[issue.Field] = append(mapping.Fields[issue.Field], issue.Message)
	}
	for key, messages := range mapping.Fields {
		mapping.Fields[key] = normalizeMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapErrorPayload resolves error paths (JSON pointers, dotted paths, wrapped
// request bodies) against the known field keys. Unknown paths become
// form-level messages so nothing is lost.
func MapErrorPayload(keys []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		known[key] = struct{}{}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		key, ok := mapErrorPath(rawPath, known)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	segments := parsePathSegments(trimmed)
	for _, variant := range [][]string{segments, stripNumericSegments(dropWrapperSegments(segments))} {
		if len(variant) == 0 {
			continue
		}
		if _, ok := known[variant[0]]; ok {
			return variant[0], true
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
		"values":  {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
