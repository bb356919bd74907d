package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeProveedorDesconocido = "PROVEEDOR_DESCONOCIDO"
)

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "ocurrió un error interno",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "entrada inválida",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewProveedorDesconocidoError(proveedor string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProveedorDesconocido,
		Message:    fmt.Sprintf("proveedor desconocido: %s", proveedor),
		HTTPStatus: http.StatusNotFound,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
