package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers depend on. Data is
// exposed to templates through its JSON form, so struct fields are addressed
// by their json tag names.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
