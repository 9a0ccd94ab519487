package request

type TodoRequest struct {
	Todo string `form:"todo" validate:"required,notblank"`
}

type TodoPathRequest struct {
	ID int64 `uri:"id"`
}
