package memstore

import "errors"

// ErrNotFound is returned when a referenced record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned by Insert when an existing record matches the
// conflict predicate.
var ErrConflict = errors.New("record conflicts with an existing record")
