package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/nnkern/internal/model"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 32 << 20

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{Message: msg, Type: errType},
	})
}

// writeModelError maps model and request errors onto HTTP statuses.
func writeModelError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrModelNotFound), errors.Is(err, ErrSessionNotFound):
		return writeNotFound(c, err.Error())
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, model.ErrShape), errors.Is(err, model.ErrWrongKind):
		return writeBadRequest(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, newInvalidRequest(fmt.Sprintf("decode body: %v", err))
	}
	return out, nil
}

// inputBatch packs request rows into a batch of width values per row.
func inputBatch(rows [][]float32, width int) (model.Batch, error) {
	if len(rows) == 0 {
		return model.Batch{}, newInvalidRequest("inputs must hold at least one row")
	}
	b, err := model.BatchFromRows(rows, width)
	if err != nil {
		return model.Batch{}, newInvalidRequest(err.Error())
	}
	return b, nil
}

// stateRows splits a hidden-major state buffer into batch rows. A nil
// buffer gives nil.
func stateRows(buf []float32, batch, hidden int) [][]float32 {
	if buf == nil {
		return nil
	}
	out := make([][]float32, batch)
	for b := range out {
		out[b] = append([]float32(nil), buf[b*hidden:(b+1)*hidden]...)
	}
	return out
}
