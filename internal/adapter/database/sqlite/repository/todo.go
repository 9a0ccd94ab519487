package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"hypertodo/internal/adapter/database/sqlite"
	"hypertodo/internal/core/domain"
	"hypertodo/internal/core/port"
	tel "hypertodo/internal/core/telemetry"
)

const todoEntity = "todo"

type TodoRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) startSpan(ctx context.Context, operation, statement string, attrs map[string]interface{}) (context.Context, port.Span) {
	base := map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "todos",
		"db.operation": statement,
	}
	for key, value := range attrs {
		base[key] = value
	}

	return tr.telemetry.StartRepositorySpan(ctx, operation, todoEntity, base)
}

func (tr *TodoRepository) ListAll(ctx context.Context) ([]domain.TodoItem, error) {
	ctx, span := tr.startSpan(ctx, "ListAll", "SELECT", nil)
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "ListAll", todoEntity)

	query, args, err := tr.db.QueryBuilder.
		Select("id", "todo", "is_complete").
		From("todos").
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, op.End(domain.StorageError("list todos", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "ListAll", todoEntity, query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, op.End(domain.StorageError("list todos", err))
	}

	defer rows.Close()

	items := []domain.TodoItem{}

	for rows.Next() {
		item, err := scanTodo(rows)

		if err != nil {
			return nil, op.End(domain.StorageError("list todos", err))
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, op.End(domain.StorageError("list todos", err))
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(items)})

	return items, op.End(nil)
}

func (tr *TodoRepository) Insert(ctx context.Context, text string) (int64, error) {
	ctx, span := tr.startSpan(ctx, "Insert", "INSERT", nil)
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Insert", todoEntity)

	query, args, err := tr.db.QueryBuilder.
		Insert("todos").
		Columns("todo", "is_complete").
		Values(text, int(domain.TodoPending)).
		ToSql()

	if err != nil {
		return 0, op.End(domain.StorageError("insert todo", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Insert", todoEntity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return 0, op.End(domain.StorageError("insert todo", err))
	}

	id, err := result.LastInsertId()

	if err != nil {
		return 0, op.End(domain.StorageError("insert todo", err))
	}

	span.SetAttributes(map[string]interface{}{"todo.id": id})

	return id, op.End(nil)
}

func (tr *TodoRepository) FetchOne(ctx context.Context, id int64) (domain.TodoItem, error) {
	ctx, span := tr.startSpan(ctx, "FetchOne", "SELECT", map[string]interface{}{"todo.id": id})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "FetchOne", todoEntity)

	query, args, err := tr.db.QueryBuilder.
		Select("id", "todo", "is_complete").
		From("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return domain.TodoItem{}, op.End(domain.StorageError("fetch todo", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "FetchOne", todoEntity, query, args)

	item, err := scanTodo(tr.db.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.TodoItem{}, op.End(domain.NotFound(id))
	}

	if err != nil {
		return domain.TodoItem{}, op.End(domain.StorageError("fetch todo", err))
	}

	return item, op.End(nil)
}

func (tr *TodoRepository) SetCompletion(ctx context.Context, id int64, state domain.CompletionState) error {
	ctx, span := tr.startSpan(ctx, "SetCompletion", "UPDATE", map[string]interface{}{
		"todo.id":    id,
		"todo.state": state.String(),
	})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "SetCompletion", todoEntity)

	query, args, err := tr.db.QueryBuilder.
		Update("todos").
		Set("is_complete", int(state)).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return op.End(domain.StorageError("set completion", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "SetCompletion", todoEntity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return op.End(domain.StorageError("set completion", err))
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return op.End(domain.StorageError("set completion", err))
	}

	if affected == 0 {
		return op.End(domain.NotFound(id))
	}

	return op.End(nil)
}

// Toggle flips is_complete in a single statement so concurrent toggles never lose an update.
func (tr *TodoRepository) Toggle(ctx context.Context, id int64) (domain.CompletionState, error) {
	ctx, span := tr.startSpan(ctx, "Toggle", "UPDATE", map[string]interface{}{"todo.id": id})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Toggle", todoEntity)

	query, args, err := tr.db.QueryBuilder.
		Update("todos").
		Set("is_complete", sq.Expr("1 - is_complete")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING is_complete").
		ToSql()

	if err != nil {
		return domain.TodoPending, op.End(domain.StorageError("toggle todo", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Toggle", todoEntity, query, args)

	var flag int

	err = tr.db.QueryRowContext(ctx, query, args...).Scan(&flag)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.TodoPending, op.End(domain.NotFound(id))
	}

	if err != nil {
		return domain.TodoPending, op.End(domain.StorageError("toggle todo", err))
	}

	state, err := domain.StateFromFlag(flag)

	if err != nil {
		return domain.TodoPending, op.End(domain.StorageError("toggle todo", err))
	}

	span.SetAttributes(map[string]interface{}{"todo.state": state.String()})

	return state, op.End(nil)
}

func (tr *TodoRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tr.startSpan(ctx, "Delete", "DELETE", map[string]interface{}{"todo.id": id})
	defer span.End()

	op := tel.StartOperation(ctx, tr.telemetry, "Delete", todoEntity)

	query, args, err := tr.db.QueryBuilder.
		Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return op.End(domain.StorageError("delete todo", err))
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Delete", todoEntity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return op.End(domain.StorageError("delete todo", err))
	}

	if affected, err := result.RowsAffected(); err == nil {
		span.SetAttributes(map[string]interface{}{"db.rows_affected": affected})
	}

	return op.End(nil)
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	if err := tr.db.PingContext(ctx); err != nil {
		return domain.StorageError("ping", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.TodoItem, error) {
	var (
		item domain.TodoItem
		flag int
	)

	if err := row.Scan(&item.ID, &item.Text, &flag); err != nil {
		return domain.TodoItem{}, err
	}

	state, err := domain.StateFromFlag(flag)

	if err != nil {
		return domain.TodoItem{}, err
	}

	item.State = state

	return item, nil
}
