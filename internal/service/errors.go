package service

import "errors"

// ErrInvalidInput marks caller mistakes (missing ids, unknown weekday, bad
// index). HTTP handlers map it to 400.
var ErrInvalidInput = errors.New("invalid input")
