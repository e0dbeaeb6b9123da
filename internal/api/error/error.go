package error

import (
	"encoding/json"
	"net/http"
)

// Error is the JSON body returned for every failed request.
type Error struct {
	Code    ErrorCode `json:"code"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
	ErrorID string    `json:"error_id"`
}

func (e *Error) Error() string {
	return e.Message
}

// EncodeError writes the error body with the status mapped from the
// code.
func EncodeError(w http.ResponseWriter, code ErrorCode, message, errorID string) error {
	status := code.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(Error{
		Code:    code,
		Status:  status,
		Message: message,
		ErrorID: errorID,
	})
}

// EncodeInternalError writes the generic 500 body. The request id lets
// operators match the response to server logs without leaking the
// underlying error.
func EncodeInternalError(w http.ResponseWriter, errorID string) error {
	return EncodeError(w, InternalServerError, "internal server error", errorID)
}
