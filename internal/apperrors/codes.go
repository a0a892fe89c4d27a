package apperrors

import "net/http"

type Code string

const (
	CodeUnknown            Code = "UNKNOWN"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnavailable        Code = "UNAVAILABLE"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeInternal           Code = "INTERNAL"
)

var statusByCode = map[Code]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeUnauthenticated:    http.StatusUnauthorized,
	CodeAlreadyExists:      http.StatusConflict,
	CodeNotFound:           http.StatusNotFound,
	CodeUnavailable:        http.StatusBadGateway,
	CodeFailedPrecondition: http.StatusInternalServerError,
	CodeInternal:           http.StatusInternalServerError,
}
