package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NewEnvelope wraps data in the response envelope. Status mirrors the HTTP
// status and message is its text.
func NewEnvelope(status int, data interface{}) APIResponse {
	return APIResponse{Status: status, Message: http.StatusText(status), Data: data}
}

// EncodeEnvelope renders an envelope once so it can be cached and replayed
// with BlobResponse.
func EncodeEnvelope(status int, data interface{}) ([]byte, error) {
	return json.Marshal(NewEnvelope(status, data))
}

func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, NewEnvelope(status, data))
}

// BlobResponse writes an envelope produced by EncodeEnvelope.
func BlobResponse(c echo.Context, status int, envelope []byte) error {
	return c.JSONBlob(status, envelope)
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

func CreatedResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusCreated, data)
}

// ListResponse writes rows with their count.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return SuccessResponse(c, &ListDataResponse{Rows: rows, Total: total})
}

// BadRequestResponse writes field errors with status 400.
func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// AppErrorResponse answers with the status of the *AppError in err's chain.
// Any other error becomes a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}
