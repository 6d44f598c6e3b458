package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type BaseResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func SuccessResponse(message string, data interface{}) BaseResponse {
	return BaseResponse{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string, errs ...string) BaseResponse {
	return BaseResponse{Success: false, Message: message, Errors: errs}
}

// AppError carries the HTTP status a service error maps to.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func BadRequest(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Message: message}
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusInternalServerError, Message: message, Err: err}
}

// ErrorHandlerMiddleware renders errors returned further down the chain as
// JSON envelopes. AppError keeps its status; anything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Code).JSON(ErrorResponse(appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and returns one message per
// failed field.
func ValidateRequest(req interface{}) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+" failed on "+fe.Tag())
	}
	return msgs
}
