package factory

import (
	"strings"

	fab "github.com/Goldziher/fabricator"

	"hypertodo/internal/core/domain"
)

// NewTodo builds a TodoItem with random data. Later maps override earlier ones.
func NewTodo(customData ...map[string]any) domain.TodoItem {
	instance := fab.New(domain.TodoItem{})

	data := append([]map[string]any{{"State": domain.TodoPending}}, customData...)
	item := instance.Build(data...)

	if strings.TrimSpace(item.Text) == "" {
		item.Text = "todo " + item.State.String()
	}

	return item
}
