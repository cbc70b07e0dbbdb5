package ingest

import (
	"errors"
	"fmt"
)

// ErrUnreadable matches any UnreadableFileError via errors.Is.
var ErrUnreadable = errors.New("unreadable file")

// errNotText marks content that cannot be a delimited text file.
var errNotText = errors.New("content is not UTF-8 text")

// UnreadableFileError indicates that no supported format or delimiter could decode the upload.
type UnreadableFileError struct {
	Name string
	// Err is the failure of the last strategy that recognised the content.
	Err error
}

func (e *UnreadableFileError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("cannot read the uploaded file %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("cannot read the uploaded file: %v", e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnreadable) match.
func (e *UnreadableFileError) Is(target error) bool { return target == ErrUnreadable }

// ParseError describes why a single strategy rejected the content.
type ParseError struct {
	Strategy string
	Line     int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Strategy, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TooLargeError is returned when the upload exceeds Options.MaxBytes.
type TooLargeError struct {
	Name  string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file %q exceeds the %d byte upload limit", e.Name, e.Limit)
}
