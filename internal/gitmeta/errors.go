package gitmeta

import "errors"

// ErrNoRepository indicates no git repository encloses the project root.
// Callers treat this as "no source links", not a failure.
var ErrNoRepository = errors.New("no git repository found")
