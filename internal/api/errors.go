package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/plyio/internal/columns"
	"github.com/samcharles93/plyio/pkg/ply"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// ResponseError is the body of every non-2xx response, wrapped as
// {"error": {...}}.
type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type errorEnvelope struct {
	Error ResponseError `json:"error"`
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, errorEnvelope{Error: ResponseError{
		Message: msg,
		Type:    errType,
		Code:    code,
		Param:   param,
	}})
}

func writeBadRequest(c *echo.Context, msg, param string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, param, "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

// writePLYError reports a codec failure on the uploaded file.
func writePLYError(c *echo.Context, err error) error {
	return writeError(c, http.StatusBadRequest, "invalid_ply_error", err.Error(), "", plyErrorCode(err))
}

func plyErrorCode(err error) string {
	switch {
	case errors.Is(err, ply.ErrSyntax):
		return "header_syntax"
	case errors.Is(err, ply.ErrNoEndHeader):
		return "missing_end_header"
	case errors.Is(err, ply.ErrTruncated):
		return "truncated"
	case errors.Is(err, ply.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ply.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ply.ErrListLength):
		return "invalid_list_length"
	case errors.Is(err, columns.ErrTooLarge):
		return "element_count_too_large"
	case errors.Is(err, columns.ErrRaggedList):
		return "variable_list_length"
	case errors.Is(err, columns.ErrListTruncated):
		return "list_exceeds_capacity"
	case errors.Is(err, ply.ErrOutOfBounds), errors.Is(err, ply.ErrBinding):
		return "binding"
	default:
		return ""
	}
}
