package html_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-census/pkg/renderers/html"
)

func TestThemesResolveMergesVariant(t *testing.T) {
	t.Parallel()
	themes, err := html.NewThemes(html.DefaultManifest(), &theme.Manifest{
		Name:    "parish",
		Version: "0.1.0",
		Tokens:  map[string]string{"color-primary": "#7c2d12"},
		Templates: map[string]string{
			"census.review": "templates/review.tpl",
		},
		Assets: theme.Assets{
			Prefix: "/static/parish/",
			Files:  map[string]string{html.StylesheetAsset: "parish.css"},
		},
		Variants: map[string]theme.Variant{
			"print": {
				Tokens: map[string]string{"color-primary": "#000000"},
				Assets: theme.Assets{
					Files: map[string]string{html.StylesheetAsset: "print.css"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	if diff := cmp.Diff([]string{"census", "parish"}, themes.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	base, err := themes.Resolve("parish", "")
	if err != nil {
		t.Fatalf("resolve base: %v", err)
	}
	if got := base.AssetURL(html.StylesheetAsset); got != "/static/parish/parish.css" {
		t.Fatalf("unexpected base stylesheet %q", got)
	}

	cfg, err := themes.Resolve("parish", "print")
	if err != nil {
		t.Fatalf("resolve variant: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"--color-primary": "#000000"}, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.AssetURL(html.StylesheetAsset); got != "/static/parish/print.css" {
		t.Fatalf("unexpected variant stylesheet %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("unknown asset should resolve empty, got %q", got)
	}
	if base.Tokens["color-primary"] != "#7c2d12" {
		t.Fatalf("variant overrides leaked into the base theme: %v", base.Tokens)
	}
}

func TestThemesResolveErrors(t *testing.T) {
	t.Parallel()
	themes, err := html.NewThemes()
	if err != nil {
		t.Fatalf("themes: %v", err)
	}

	tests := []struct {
		name    string
		theme   string
		variant string
		want    error
	}{
		{name: "unknown theme", theme: "acme", want: html.ErrUnknownTheme},
		{name: "unknown variant", theme: "census", variant: "sepia", want: html.ErrUnknownVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := themes.Resolve(tt.theme, tt.variant); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
