package notes

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTitle rejects note creation or renaming without a title.
	ErrEmptyTitle = errors.New("notes: title required")
	// ErrNoteNotFound covers both a missing note and a note owned by another
	// user, so callers cannot probe for other users' data.
	ErrNoteNotFound = errors.New("notes: note not found")
	// ErrBlockNotFound indicates the referenced block does not exist.
	ErrBlockNotFound = errors.New("notes: block not found")
	// ErrForbidden indicates the acting user does not own the parent note.
	ErrForbidden = errors.New("notes: not the owner")
	// ErrEmptyBatch rejects a reorder request without entries.
	ErrEmptyBatch = errors.New("notes: reorder batch required")
)

// ServiceError tags unexpected store failures with an operation code so the
// HTTP layer can surface a stable identifier without leaking internals.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the stable `<operation>.<reason>` identifier.
func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew    = "notes.service.new"
	opListNotes     = "notes.list"
	opGetNote       = "notes.get"
	opCreateNote    = "notes.create"
	opUpdateNote    = "notes.update"
	opDeleteNote    = "notes.delete"
	opReorderNotes  = "notes.reorder"
	opCreateBlock   = "blocks.create"
	opUpdateBlock   = "blocks.update"
	opDeleteBlock   = "blocks.delete"
	opReorderBlocks = "blocks.reorder"
)

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}
