// Package view renders the htmx pages and fragments. Rendering is pure: the same
// input always produces the same bytes, and user text is escaped by html/template.
package view

import (
	"embed"
	"html/template"
	"io"

	"hypertodo/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("view").
		Funcs(template.FuncMap{
			"flag": func(s domain.CompletionState) int { return int(s) },
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// RenderPage writes the full todo document with every item in order.
func RenderPage(w io.Writer, items []domain.TodoItem) error {
	return templates.ExecuteTemplate(w, "page", items)
}

// RenderItem writes the <li> fragment for one item.
func RenderItem(w io.Writer, item domain.TodoItem) error {
	return templates.ExecuteTemplate(w, "item", item)
}

// RenderEmpty writes nothing. Toggle and delete answer with an empty body.
func RenderEmpty(w io.Writer) error {
	return nil
}

func RenderCounterPage(w io.Writer, value int64) error {
	return templates.ExecuteTemplate(w, "counter_page", value)
}

func RenderCounter(w io.Writer, value int64) error {
	return templates.ExecuteTemplate(w, "counter", value)
}
