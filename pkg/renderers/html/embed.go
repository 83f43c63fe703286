package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/partials/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// StylesheetName is the stock stylesheet inside AssetsFS.
const StylesheetName = "census.css"

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet so callers can serve it or copy
// it next to rendered pages.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}
