package cvhttp

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
)

// ErrorResponse is the JSON body of failed requests.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details. Fields lists per-input messages for
// validation failures.
type ErrorBody struct {
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is an inline form message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DocumentResponse wraps a document with the store status.
type DocumentResponse struct {
	Document cv.Document `json:"document"`
	Status   cv.Status   `json:"status"`
}

func writeError(c *fiber.Ctx, err error) error {
	ge := cv.AsGoError(err)
	body := ErrorBody{Message: ge.Message, Code: ge.TextCode}
	for _, f := range cv.FieldErrors(err) {
		body.Fields = append(body.Fields, FieldError{Field: f.Field, Message: f.Message})
	}
	return c.Status(statusForError(ge)).JSON(ErrorResponse{Error: body})
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.TextCode {
	case "not_implemented":
		return http.StatusNotImplemented
	case "persistence", "render":
		return http.StatusBadGateway
	}
	switch err.Category {
	case errorslib.CategoryValidation, errorslib.CategoryBadInput:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryConflict:
		return http.StatusConflict
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders errors returned from routes, including fiber's own
// routing errors.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: ErrorBody{Message: fe.Message}})
	}
	return writeError(c, err)
}
