package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/logging"
	"github.com/iliyamo/musicuration-desk/internal/middleware"
	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/service"
	"github.com/iliyamo/musicuration-desk/internal/validation"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

var errBadBody = errors.New("invalid request body")

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"detail": msg})
}

// writeError maps domain errors to HTTP responses. Anything it does not
// recognise is logged and answered with a bare 500.
func writeError(c echo.Context, err error) error {
	var (
		ue *service.UnauthorizedError
		ve *validation.RequestValidationError
		nf *repository.NotFoundError
		ce *repository.ConflictError
	)
	switch {
	case errors.As(err, &ue):
		return middleware.Unauthorized(c, ue.Detail)
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": ve.Fields})
	case errors.As(err, &nf):
		return detail(c, http.StatusNotFound, nf.Error())
	case errors.As(err, &ce):
		return detail(c, http.StatusBadRequest, ce.Message)
	case errors.Is(err, repository.ErrUnknownEntityType):
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errBadBody):
		return detail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logging.Error().Err(err).Str("path", c.Path()).Msg("request timed out")
		return detail(c, http.StatusServiceUnavailable, "request timed out")
	default:
		logging.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
		return detail(c, http.StatusInternalServerError, "internal server error")
	}
}

// bind decodes the request into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return bodyError(err)
	}
	return c.Validate(dst)
}

var dateType = reflect.TypeOf(model.Date{})

// bodyError turns a decode failure into a field error when the JSON was
// well formed but a value had the wrong type. Anything else is errBadBody.
func bodyError(err error) error {
	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) {
		return errBadBody
	}
	field := ute.Field
	if field == "" {
		field = "body"
	}
	fe := validation.FieldError{Field: field, Tag: "type", Param: jsonKind(ute.Type)}
	if ute.Type == dateType {
		fe.Tag, fe.Param = "date", model.DateLayout
		fe.Message = field + " must be a date in YYYY-MM-DD format"
	} else {
		fe.Message = field + " must be " + fe.Param
	}
	return &validation.RequestValidationError{Fields: []validation.FieldError{fe}}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	}
	return "a valid value"
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field:   name,
			Tag:     "uint",
			Message: name + " must be a positive integer",
		}}}
	}
	return id, nil
}

// page reads skip and limit: skip >= 0, limit in 1..100, default 100.
func page(c echo.Context) (skip, limit int, err error) {
	skip, limit = 0, repository.DefaultListLimit
	var fields []validation.FieldError
	if s := c.QueryParam("skip"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 0 {
			fields = append(fields, validation.FieldError{Field: "skip", Tag: "min", Param: "0", Message: "skip must be at least 0"})
		}
		skip = n
	}
	if s := c.QueryParam("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 1 || n > repository.DefaultListLimit {
			fields = append(fields, validation.FieldError{Field: "limit", Tag: "range", Message: "limit must be between 1 and 100"})
		}
		limit = n
	}
	if len(fields) > 0 {
		return 0, 0, &validation.RequestValidationError{Fields: fields}
	}
	return skip, limit, nil
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
