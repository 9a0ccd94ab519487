package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"hypertodo/internal/core/domain"
	"hypertodo/internal/core/port"
	"hypertodo/internal/core/telemetry"
)

const todoServiceName = "todo"

type TodoService struct {
	repo      port.TodoRepository
	telemetry port.Telemetry
}

func NewTodoService(repo port.TodoRepository, probe port.Telemetry) *TodoService {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	return &TodoService{repo: repo, telemetry: probe}
}

func (ts *TodoService) ListTodos(ctx context.Context) ([]domain.TodoItem, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "ListTodos", nil)
	defer span.End()

	start := time.Now()

	items, err := ts.repo.ListAll(ctx)
	ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "ListTodos", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"todo.count": len(items)})

	return items, nil
}

func (ts *TodoService) GetTodo(ctx context.Context, id int64) (domain.TodoItem, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "GetTodo", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	start := time.Now()

	item, err := ts.repo.FetchOne(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "GetTodo", time.Since(start), err)

	return item, err
}

// AddTodo stores rawText verbatim. Blank or whitespace-only text is rejected.
func (ts *TodoService) AddTodo(ctx context.Context, rawText string) (domain.TodoItem, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "AddTodo", nil)
	defer span.End()

	start := time.Now()

	if strings.TrimSpace(rawText) == "" {
		err := domain.NewValidationError("todo", domain.ErrBlank)
		ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "AddTodo", time.Since(start), err)
		return domain.TodoItem{}, err
	}

	id, err := ts.repo.Insert(ctx, rawText)
	ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "AddTodo", time.Since(start), err)

	if err != nil {
		slog.ErrorContext(ctx, "Repository insert failed", "error", err)
		return domain.TodoItem{}, err
	}

	item := domain.NewTodoItem(id, rawText)

	ts.telemetry.RecordBusinessEvent(ctx, "created", "todo", strconv.FormatInt(id, 10), map[string]interface{}{
		"state": item.State.String(),
	})

	return item, nil
}

// ToggleTodo flips the completion state in one atomic store statement and returns the new state.
func (ts *TodoService) ToggleTodo(ctx context.Context, id int64) (domain.CompletionState, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "ToggleTodo", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	start := time.Now()

	state, err := ts.repo.Toggle(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "ToggleTodo", time.Since(start), err)

	if err != nil {
		return domain.TodoPending, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "toggled", "todo", strconv.FormatInt(id, 10), map[string]interface{}{
		"state": state.String(),
	})

	return state, nil
}

// RemoveTodo deletes the item. Removing an absent item succeeds.
func (ts *TodoService) RemoveTodo(ctx context.Context, id int64) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, "RemoveTodo", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	start := time.Now()

	err := ts.repo.Delete(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, todoServiceName, "RemoveTodo", time.Since(start), err)

	if err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", strconv.FormatInt(id, 10), nil)

	return nil
}
