package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/scansync/internal/common"
)

// StatusError is returned for non-2xx responses. It matches common.ErrServer
// and, depending on Code, common.ErrUnauthorized or common.ErrNotFound.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server responded %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server responded %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case common.ErrServer:
		return true
	case common.ErrUnauthorized:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	case common.ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

const maxErrorBody = 512

func mapStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	msg := string(body)
	if len(body) > maxErrorBody {
		// the cut may split a rune
		msg = strings.ToValidUTF8(string(body[:maxErrorBody]), "")
	}
	return &StatusError{Code: code, Body: msg}
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
