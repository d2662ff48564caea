package ports

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidSnapshot = errors.New("invalid window snapshot")
)
