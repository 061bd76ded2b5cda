package overcooked

import "errors"

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrUnknownLayout = errors.New("unknown layout")
	ErrBadLayout     = errors.New("malformed layout")
)
