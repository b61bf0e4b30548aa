package engine

import "errors"

var (
	// ErrEmptyZoomLevels is returned by New when the zoom table has no
	// entries.
	ErrEmptyZoomLevels = errors.New("zoom level table is empty")

	// ErrUnknownCommand is returned by Do for commands it does not recognize.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidArgument is returned by Do for commands with missing or
	// malformed arguments.
	ErrInvalidArgument = errors.New("invalid command argument")

	// ErrDisposed is returned by Play and Init after Dispose.
	ErrDisposed = errors.New("engine is disposed")
)
