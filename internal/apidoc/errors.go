package apidoc

import "errors"

// ErrNoPackage indicates the target directory contains no buildable,
// non-test Go package.
var ErrNoPackage = errors.New("no buildable Go package in target directory")

// ErrAmbiguousPackage indicates the target directory declares more than one
// non-main package, so there is no single API to document.
var ErrAmbiguousPackage = errors.New("target directory declares multiple Go packages")
