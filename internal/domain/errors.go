package domain

import "errors"

// Error categories surfaced by the pipeline stages. Stages wrap these with
// context, so callers should match with errors.Is.
var (
	// ErrFetch marks a transport or upstream failure from the fetch collaborator.
	ErrFetch = errors.New("fetch error")

	// ErrParse marks a directory page that is not shaped as expected.
	ErrParse = errors.New("parse error")

	// ErrIndex marks a station index outside the directory bounds.
	ErrIndex = errors.New("index error")

	// ErrFormat marks a malformed CSV report or an invalid column rename.
	ErrFormat = errors.New("format error")
)
