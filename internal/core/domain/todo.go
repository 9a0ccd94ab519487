package domain

import (
	"fmt"
	"strconv"
)

type CompletionState int

const (
	TodoPending CompletionState = iota
	TodoComplete
)

type TodoItem struct {
	ID    int64
	Text  string
	State CompletionState
}

// NewTodoItem builds the record of a freshly inserted row. Items always start pending.
func NewTodoItem(id int64, text string) TodoItem {
	return TodoItem{
		ID:    id,
		Text:  text,
		State: TodoPending,
	}
}

func (t TodoItem) IsComplete() bool {
	return t.State.IsComplete()
}

// Path is the resource path used by the update and delete controls of the item.
func (t TodoItem) Path() string {
	return "/todo/" + strconv.FormatInt(t.ID, 10)
}

func (s CompletionState) IsComplete() bool {
	return s == TodoComplete
}

func (s CompletionState) Toggle() CompletionState {
	if s == TodoComplete {
		return TodoPending
	}

	return TodoComplete
}

func (s CompletionState) String() string {
	switch s {
	case TodoPending:
		return "pending"
	case TodoComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// StateFromFlag maps the is_complete column to a state.
func StateFromFlag(flag int) (CompletionState, error) {
	switch CompletionState(flag) {
	case TodoPending, TodoComplete:
		return CompletionState(flag), nil
	default:
		return TodoPending, fmt.Errorf("invalid completion flag: %d", flag)
	}
}
