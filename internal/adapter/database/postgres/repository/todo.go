package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"hypertodo/internal/adapter/database/postgres"
	"hypertodo/internal/core/domain"
	"hypertodo/internal/core/port"
	tel "hypertodo/internal/core/telemetry"
	"hypertodo/pkg/tracing"
)

const (
	dbSystem   = "postgresql"
	todoEntity = "todo"
)

type TodoRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *postgres.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{db: db, telemetry: telemetry}
}

func (tr *TodoRepository) record(ctx context.Context, operation string, start time.Time, err error) error {
	tr.telemetry.RecordRepositoryOperation(ctx, operation, todoEntity, time.Since(start), err)
	return err
}

func (tr *TodoRepository) ListAll(ctx context.Context) ([]domain.TodoItem, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.ListAll", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "SELECT"),
	})
	defer span.End()

	start := time.Now()

	query, args, err := tr.db.QueryBuilder.
		Select("id", "todo", "is_complete").
		From("todos").
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, tr.record(ctx, "ListAll", start, domain.StorageError("list todos", err))
	}

	tracing.AddDatabaseAttributes(span, dbSystem, "todos", "SELECT", query)

	rows, err := tr.db.Query(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, tr.record(ctx, "ListAll", start, domain.StorageError("list todos", err))
	}

	defer rows.Close()

	items := []domain.TodoItem{}

	for rows.Next() {
		item, err := scanTodo(rows)

		if err != nil {
			tracing.AddSpanError(span, err)
			return nil, tr.record(ctx, "ListAll", start, domain.StorageError("list todos", err))
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		tracing.AddSpanError(span, err)
		return nil, tr.record(ctx, "ListAll", start, domain.StorageError("list todos", err))
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(items)))

	return items, tr.record(ctx, "ListAll", start, nil)
}

func (tr *TodoRepository) Insert(ctx context.Context, text string) (int64, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Insert", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "INSERT"),
	})
	defer span.End()

	start := time.Now()

	query, args, err := tr.db.QueryBuilder.
		Insert("todos").
		Columns("todo", "is_complete").
		Values(text, int(domain.TodoPending)).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return 0, tr.record(ctx, "Insert", start, domain.StorageError("insert todo", err))
	}

	var id int64

	if err := tr.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		tracing.AddSpanError(span, err)
		return 0, tr.record(ctx, "Insert", start, domain.StorageError("insert todo", err))
	}

	span.SetAttributes(attribute.Int64("todo.id", id))

	return id, tr.record(ctx, "Insert", start, nil)
}

func (tr *TodoRepository) FetchOne(ctx context.Context, id int64) (domain.TodoItem, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.FetchOne", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "SELECT"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	start := time.Now()

	query, args, err := tr.db.QueryBuilder.
		Select("id", "todo", "is_complete").
		From("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.TodoItem{}, tr.record(ctx, "FetchOne", start, domain.StorageError("fetch todo", err))
	}

	item, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TodoItem{}, tr.record(ctx, "FetchOne", start, domain.NotFound(id))
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.TodoItem{}, tr.record(ctx, "FetchOne", start, domain.StorageError("fetch todo", err))
	}

	return item, tr.record(ctx, "FetchOne", start, nil)
}

func (tr *TodoRepository) SetCompletion(ctx context.Context, id int64, state domain.CompletionState) error {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.SetCompletion", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "UPDATE"),
		attribute.Int64("todo.id", id),
		attribute.String("todo.state", state.String()),
	})
	defer span.End()

	start := time.Now()

	query, args, err := tr.db.QueryBuilder.
		Update("todos").
		Set("is_complete", int(state)).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return tr.record(ctx, "SetCompletion", start, domain.StorageError("set completion", err))
	}

	tag, err := tr.db.Exec(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return tr.record(ctx, "SetCompletion", start, domain.StorageError("set completion", err))
	}

	if tag.RowsAffected() == 0 {
		return tr.record(ctx, "SetCompletion", start, domain.NotFound(id))
	}

	return tr.record(ctx, "SetCompletion", start, nil)
}

// Toggle flips is_complete in a single statement so concurrent toggles never lose an update.
func (tr *TodoRepository) Toggle(ctx context.Context, id int64) (domain.CompletionState, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Toggle", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "UPDATE"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	start := time.Now()

	query, args, err := tr.db.QueryBuilder.
		Update("todos").
		Set("is_complete", sq.Expr("1 - is_complete")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING is_complete").
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.TodoPending, tr.record(ctx, "Toggle", start, domain.StorageError("toggle todo", err))
	}

	var flag int16

	err = tr.db.QueryRow(ctx, query, args...).Scan(&flag)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TodoPending, tr.record(ctx, "Toggle", start, domain.NotFound(id))
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.TodoPending, tr.record(ctx, "Toggle", start, domain.StorageError("toggle todo", err))
	}

	state, err := domain.StateFromFlag(int(flag))

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.TodoPending, tr.record(ctx, "Toggle", start, domain.StorageError("toggle todo", err))
	}

	span.SetAttributes(attribute.String("todo.state", state.String()))

	return state, tr.record(ctx, "Toggle", start, nil)
}

func (tr *TodoRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Delete", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "DELETE"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	start := time.Now()

	query, args, err := tr.db.QueryBuilder.
		Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return tr.record(ctx, "Delete", start, domain.StorageError("delete todo", err))
	}

	tag, err := tr.db.Exec(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return tr.record(ctx, "Delete", start, domain.StorageError("delete todo", err))
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))

	return tr.record(ctx, "Delete", start, nil)
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	return tracing.DatabaseSpanWrapper(ctx, dbSystem, "todos", "Ping", func(ctx context.Context) error {
		if err := tr.db.Pool.Ping(ctx); err != nil {
			return domain.StorageError("ping", err)
		}

		return nil
	})
}

func scanTodo(row pgx.Row) (domain.TodoItem, error) {
	var (
		item domain.TodoItem
		flag int16
	)

	if err := row.Scan(&item.ID, &item.Text, &flag); err != nil {
		return domain.TodoItem{}, err
	}

	state, err := domain.StateFromFlag(int(flag))

	if err != nil {
		return domain.TodoItem{}, err
	}

	item.State = state

	return item, nil
}
