package service

import "errors"

var (
	// ErrNotFound reports that no image (or user) matches the given handle.
	ErrNotFound = errors.New("not found")
	// ErrForbidden reports an owner mismatch on delete.
	ErrForbidden = errors.New("not the owner")
	// ErrInvalidInput reports empty content or an unusable name.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateFileID reports a file id uniqueness violation.
	ErrDuplicateFileID = errors.New("duplicate file id")
	// ErrDuplicateDeleteKey reports a delete key uniqueness violation.
	ErrDuplicateDeleteKey = errors.New("duplicate delete key")
	// ErrIDExhaustion reports that id generation kept colliding past the
	// retry budget.
	ErrIDExhaustion = errors.New("file id generation exhausted")
)
