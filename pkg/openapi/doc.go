// Package openapi describes the submission payload as an OpenAPI document.
//
// Build derives the document from the field catalog so the contract always
// matches the form. Load and Parse read an externally maintained document
// instead. Either way the resulting Contract validates outgoing payloads
// with kin-openapi before they are sent.
package openapi
