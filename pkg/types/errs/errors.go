package errs

import "errors"

var (
	ErrEmptyMedia = errors.New("empty media")

	// album resolution
	ErrMissingQuotedMessage = errors.New("missing quoted message")
	ErrVideoNotSupported    = errors.New("video not supported")
	ErrUnsupportedMedia     = errors.New("unsupported media")
	ErrAlbumTargetsNotFound = errors.New("album targets not found")
)
