package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrConfig       = errors.New("missing configuration")
	ErrUpstream     = errors.New("upstream provider failed")
)
