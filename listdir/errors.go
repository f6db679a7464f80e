package listdir

import "errors"

// ErrDirNotFound is returned when the start directory is missing or cannot be read.
var ErrDirNotFound = errors.New("start directory not found")

// ErrInvalidPattern is returned when a glob pattern does not compile.
var ErrInvalidPattern = errors.New("invalid file name pattern")
