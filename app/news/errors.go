package news

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindTransport     Kind = "transport"
	KindParse         Kind = "parse"
	KindDomain        Kind = "domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrHidden          = errors.New("article is hidden")
	ErrAlreadyHidden   = errors.New("article is already hidden")
	ErrAlreadyReported = errors.New("article already reported by user")
)

// Error is the tagged error value shared by adapters and engine operations.
type Error struct {
	Source  string
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s", e.Source, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func ConfigError(source, message string) *Error {
	return &Error{Source: source, Kind: KindConfiguration, Message: message}
}

func TransportError(source, message string, cause error) *Error {
	return &Error{Source: source, Kind: KindTransport, Message: message, Cause: cause}
}

func ParseError(source, message string, cause error) *Error {
	return &Error{Source: source, Kind: KindParse, Message: message, Cause: cause}
}

func DomainError(message string, cause error) *Error {
	return &Error{Kind: KindDomain, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
