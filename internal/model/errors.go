package model

import "github.com/rotisserie/eris"

// Fatal error classes. Both abort a run before any output is written; check
// with eris.Is.
var (
	// ErrConfiguration marks invalid year or threshold arguments.
	ErrConfiguration = eris.New("invalid configuration")

	// ErrDataLoad marks a missing, empty, or malformed input polygon
	// collection.
	ErrDataLoad = eris.New("data load failed")
)
