package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "server"
	}
}

// APIError is a failed API call classified by what the caller can do about it.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Messages lists every field message, ordered by field name. Errors without
// field detail yield their single message.
func (e *APIError) Messages() []string {
	if len(e.Fields) == 0 {
		if e.Message == "" {
			return nil
		}
		return []string{e.Message}
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		msgs = append(msgs, e.Fields[field]...)
	}
	return msgs
}

func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}
