package port

import (
	"context"

	"hypertodo/internal/core/domain"
)

type TodoRepository interface {
	ListAll(ctx context.Context) ([]domain.TodoItem, error)
	Insert(ctx context.Context, text string) (int64, error)
	FetchOne(ctx context.Context, id int64) (domain.TodoItem, error)
	SetCompletion(ctx context.Context, id int64, state domain.CompletionState) error
	Toggle(ctx context.Context, id int64) (domain.CompletionState, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type TodoService interface {
	ListTodos(ctx context.Context) ([]domain.TodoItem, error)
	GetTodo(ctx context.Context, id int64) (domain.TodoItem, error)
	AddTodo(ctx context.Context, rawText string) (domain.TodoItem, error)
	ToggleTodo(ctx context.Context, id int64) (domain.CompletionState, error)
	RemoveTodo(ctx context.Context, id int64) error
}
