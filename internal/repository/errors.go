package repository

import "errors"

var (
	// ErrNotFound is returned when a row does not exist or belongs to another tenant.
	ErrNotFound = errors.New("not found")
	// ErrEventNotFound is returned when the parent event of a checklist write is missing.
	ErrEventNotFound = errors.New("event not found")
	// ErrPartitionMismatch is returned when a reorder id list is not a permutation of the partition.
	ErrPartitionMismatch = errors.New("ids do not match the checklist partition")
	// ErrCapacityExceeded is returned when an append would exceed the per-event item cap.
	ErrCapacityExceeded = errors.New("checklist item cap exceeded")
)
