package services

import "errors"

var (
	// ErrAlreadyBookmarked is the per-user duplicate submission error; the
	// handler surfaces it as an inline form error.
	ErrAlreadyBookmarked = errors.New("You have already bookmarked this link")

	// ErrNotFound covers both ids that don't exist and ids owned by another
	// user, so mutating endpoints never reveal which of the two it was.
	ErrNotFound = errors.New("bookmark not found")

	ErrEmptyURL = errors.New("URL cannot be empty")

	// ErrURLUnreachable is returned from reachability validation when the
	// VerifyExists flag is on.
	ErrURLUnreachable = errors.New("the URL could not be reached")
)
