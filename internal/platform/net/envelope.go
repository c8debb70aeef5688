package net

import (
	"net/http"

	perr "smartpaste/internal/platform/errors"
)

// Envelope is the body every transport writes, success or failure
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Success wraps data under the given status
func Success(status int, data any, reqID string) Envelope {
	return Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// Failure maps err onto its http status and a coded envelope
// a nil err is reported as a bare 200
func Failure(err error, reqID string) (int, Envelope) {
	if err == nil {
		return http.StatusOK, Success(http.StatusOK, nil, reqID)
	}
	status, w := perr.HTTP(err)
	return status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		RequestID:  reqID,
	}
}
