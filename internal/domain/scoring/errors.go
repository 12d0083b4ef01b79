package scoring

import "errors"

var (
	ErrInvalidInput = errors.New("invalid scoring input")
	ErrInvalidMonth = errors.New("invalid month")
)
