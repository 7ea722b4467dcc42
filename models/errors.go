package models

import "errors"

// Sentinel errors shared by the catalog, search and transport layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
