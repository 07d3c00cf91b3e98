package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("no config found")
	ErrSyntax            = errors.New("config is not valid yaml")
	ErrMissingHosts      = errors.New("config has no hosts")
	ErrHostsNotMapping   = errors.New("hosts must be a mapping")
	ErrMissingDefault    = errors.New("hosts has no default entry")
	ErrDefaultNotMapping = errors.New("hosts.default must be a mapping")

	ErrMissingField = errors.New("required field is missing")
	ErrWrongType    = errors.New("wrong type")
	ErrOutOfRange   = errors.New("out of range for uint32")
	ErrBadURL       = errors.New("not an absolute url")
)

// NotFoundError lists every path probed when no config file exists.
type NotFoundError struct {
	Paths []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: tried %s", ErrNotFound, strings.Join(e.Paths, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// FieldError reports a host entry that failed validation.
type FieldError struct {
	Host  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("parse error: host %q: field %q: %v", e.Host, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
