package api

import (
	"net/http"
	"strings"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/server"
)

// ER maps an error to the response sent to the client. Only the innermost
// message of an *errors.Error is exposed.
func ER(err error) *server.ErrorResponse {
	code := http.StatusInternalServerError
	msg := err.Error()

	if e, ok := err.(*errors.Error); ok {
		lines := strings.Split(msg, errors.Separator)
		slices := strings.Split(lines[len(lines)-1], ": ")
		msg = slices[len(slices)-1]
		switch {
		case errors.Is(errors.Duplicate, e), errors.Is(errors.Invalid, e):
			code = http.StatusBadRequest
		case errors.Is(errors.NotFound, e):
			code = http.StatusNotFound
		case errors.Is(errors.Permission, e):
			code = http.StatusUnauthorized
		case errors.Is(errors.Transient, e):
			code = http.StatusConflict
		default:
			msg = http.StatusText(code)
		}
	}

	return &server.ErrorResponse{
		Code:    code,
		Message: msg,
	}
}
