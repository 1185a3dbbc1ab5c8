package eventstore

import "errors"

// ErrNotFound indicates no stored build matches the requested ID.
var ErrNotFound = errors.New("build not found in history")
