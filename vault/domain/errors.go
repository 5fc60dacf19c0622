package domain

import "errors"

// Failure categories surfaced by the stores. Callers match them with
// errors.Is; the wrapped message carries the offending path or filename.
var (
	ErrDirectoryNotFound = errors.New("repository directory not found")
	ErrDuplicateFilename = errors.New("image filename already in use")
	ErrImageRead         = errors.New("image could not be read")
	ErrImageDecode       = errors.New("image bytes could not be decoded")
	ErrCopyFailed        = errors.New("image copy failed")
	ErrDeleteFailed      = errors.New("image delete failed")
	ErrMetadataParse     = errors.New("malformed metadata file")
	ErrDuplicateUser     = errors.New("username already registered")
)
