package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// LoaderOptions configures how Load resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceFromFS sources.
	FileSystem fs.FS
}

// LoaderOption mutates LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects the fs.FS used for SourceFromFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// Load reads a contract document from src and parses it.
func Load(ctx context.Context, src Source, options ...LoaderOption) (*Contract, error) {
	if src == nil {
		return nil, errors.New("openapi loader: source is nil")
	}
	opts := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		raw []byte
		err error
	)
	switch src.Kind() {
	case SourceKindFile:
		raw, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if opts.FileSystem == nil {
			return nil, errors.New("openapi loader: filesystem is not configured")
		}
		raw, err = fs.ReadFile(opts.FileSystem, src.Location())
	default:
		err = fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("openapi loader: %s: %w", src.Location(), err)
	}
	return Parse(ctx, raw)
}

// Parse loads a JSON or YAML OpenAPI document and takes the JSON request body
// of its first POST operation, by path, as the payload schema.
func Parse(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi parser: validate document: %w", err)
	}
	return newContract(doc)
}

func newContract(doc *openapi3.T) (*Contract, error) {
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("openapi parser: document does not contain any paths")
	}

	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := items[path]
		if item == nil || item.Post == nil || item.Post.RequestBody == nil || item.Post.RequestBody.Value == nil {
			continue
		}
		media := item.Post.RequestBody.Value.Content.Get("application/json")
		if media == nil || media.Schema == nil || media.Schema.Value == nil {
			continue
		}
		return &Contract{doc: doc, path: path, body: media.Schema.Value}, nil
	}
	return nil, errors.New("openapi parser: no POST operation with a JSON request body")
}
