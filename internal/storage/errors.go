package storage

import "errors"

// Repositories wrap these with the offending entity so callers can match with errors.Is.
var (
	// ErrNotFound is returned when a lookup or locked read finds no row.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned on a unique or foreign key violation, such as a second
	// application to the same job, a second ledger entry for a job, or deleting a
	// user who still owns jobs.
	ErrConflict = errors.New("storage: conflict")
)
