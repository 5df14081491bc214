package gateway

import (
	"errors"
	"net/http"
)

// Error is a remote rejection. Message carries the gateway's own wording
// verbatim; stores surface it unchanged.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is the gateway's no-rows answer to a
// single-row read.
func IsNotFound(err error) bool {
	var gerr *Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Status == http.StatusNotFound ||
		gerr.Status == http.StatusNotAcceptable ||
		gerr.Code == "PGRST116"
}
