package handler

import (
	"fmt"
	"io"
	"net/http"

	. "hypertodo/internal/adapter/http/helper"
	"hypertodo/internal/adapter/http/middleware"
	. "hypertodo/internal/adapter/http/validation"
	"hypertodo/internal/adapter/http/view"
	"hypertodo/internal/core/model/request"
	"hypertodo/internal/core/port"
	"hypertodo/internal/core/util"
	"hypertodo/pkg/config"
	. "hypertodo/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *config.Logger
}

func NewTodoHandler(todoService port.TodoService, logger *config.Logger) *TodoHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TodoHandler{
		svc:    todoService,
		Logger: logger,
	}
}

// Index renders the whole page with every todo.
func (t *TodoHandler) Index(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.Index", []attribute.KeyValue{
		attribute.String("handler.operation", "Index"),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	items, err := t.svc.ListTodos(ctx)

	if err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
		return
	}

	span.SetAttributes(attribute.Int("todo.count", len(items)))

	if err := SendHTML(c, http.StatusOK, func(w io.Writer) error { return view.RenderPage(w, items) }); err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
	}
}

// AddTodo answers with the new <li>, which htmx appends to #todos.
func (t *TodoHandler) AddTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.AddTodo", []attribute.KeyValue{
		attribute.String("handler.operation", "AddTodo"),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	params, err := util.FormToStruct[request.TodoRequest](c)

	if err != nil {
		c.Error(fmt.Errorf("%w: %v", middleware.ErrBadRequest, err))
		c.Abort()
		return
	}

	if err := Validator.Struct(params); err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	item, err := t.svc.AddTodo(ctx, params.Todo)

	if err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
		return
	}

	span.SetAttributes(attribute.Int64("todo.id", item.ID))

	t.Logger.InfoWithTrace(ctx, "Todo created", zap.Int64("todo_id", item.ID))

	if err := SendHTML(c, http.StatusOK, func(w io.Writer) error { return view.RenderItem(w, item) }); err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
	}
}

// ToggleTodo flips the checkbox state. The body is empty, the browser already shows the new state.
func (t *TodoHandler) ToggleTodo(c *gin.Context) {
	id, ok := t.pathID(c)
	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.ToggleTodo", []attribute.KeyValue{
		attribute.String("handler.operation", "ToggleTodo"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	state, err := t.svc.ToggleTodo(ctx, id)

	if err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
		return
	}

	t.Logger.InfoWithTrace(ctx, "Todo toggled",
		zap.Int64("todo_id", id),
		zap.Stringer("state", state))

	if err := SendHTML(c, http.StatusOK, view.RenderEmpty); err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
	}
}

// DeleteTodo removes the item; htmx replaces the <li> with the empty body.
func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	id, ok := t.pathID(c)
	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.DeleteTodo", []attribute.KeyValue{
		attribute.String("handler.operation", "DeleteTodo"),
		attribute.Int64("todo.id", id),
	})
	defer span.End()

	if err := t.svc.RemoveTodo(ctx, id); err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
		return
	}

	if err := SendHTML(c, http.StatusOK, view.RenderEmpty); err != nil {
		AddSpanError(span, err)
		c.Error(err)
		c.Abort()
	}
}

func (t *TodoHandler) pathID(c *gin.Context) (int64, bool) {
	params, err := util.URIToStruct[request.TodoPathRequest](c)

	if err != nil {
		c.Error(fmt.Errorf("%w: invalid todo id %q", middleware.ErrBadRequest, c.Param("id")))
		c.Abort()
		return 0, false
	}

	return params.ID, true
}
