package manifest

import "errors"

var (
	ErrLoad         = errors.New("recipe load failed")
	ErrInvalid      = errors.New("invalid recipe")
	ErrUndefinedArg = errors.New("undefined build arg")
)
