package framework

import (
	"strconv"
	"strings"
)

// MultiError is a list of errors reported as one.
type MultiError []error

// Append adds the non-nil errs.
func (e *MultiError) Append(errs ...error) {
	for _, err := range errs {
		if err != nil {
			*e = append(*e, err)
		}
	}
}

// Err returns nil when empty.
func (e MultiError) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e MultiError) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(e)))
	sb.WriteString(" errors:")
	for _, err := range e {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is and errors.As look at every error.
func (e MultiError) Unwrap() []error {
	return e
}
