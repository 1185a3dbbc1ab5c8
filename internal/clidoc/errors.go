package clidoc

import "errors"

// ErrNoCommands indicates the package parsed cleanly but no recognizable
// CLI framework was found in it.
var ErrNoCommands = errors.New("clidoc: no command definitions found")
