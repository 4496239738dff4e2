package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/client/client"
	"github.com/tidwall/gjson"
)

// ValidationError lists per-field problems, found either locally or in a
// 400 response body of the form {"field": ["message", ...]}.
type ValidationError struct {
	Fields map[string][]string
	Cause  error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{client.ErrInvalidInput}
	}
	return []error{client.ErrInvalidInput, e.Cause}
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// fieldErrors parses a backend field error body. It returns nil when the
// body carries no field messages.
func fieldErrors(statusErr *client.StatusError) *ValidationError {
	if !gjson.ValidBytes(statusErr.Body) {
		return nil
	}
	root := gjson.ParseBytes(statusErr.Body)
	if !root.IsObject() {
		return nil
	}

	verr := &ValidationError{Cause: statusErr}
	root.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.IsArray():
			for _, msg := range value.Array() {
				verr.add(key.String(), msg.String())
			}
		case value.Type == gjson.String:
			verr.add(key.String(), value.String())
		}
		return true
	})
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}
