package common

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

// Component adapts a named html/template to a templ.Component, so templates
// can be streamed with datastar's PatchElementTempl.
func Component(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}
