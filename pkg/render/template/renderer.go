package template

// TemplateRenderer executes a named template with a data context and returns
// the output.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
}
