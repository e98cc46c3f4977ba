package albumkit

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the album root does not exist.
var ErrNotFound = errors.New("not found")

// TranscodeError reports a failure to decode, resize or encode an image.
type TranscodeError struct {
	Path string
	Op   string
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// IOError reports a file system failure such as stat, mkdir or write.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
