package repo

import "errors"

var (
	// ErrNotFound maps mongo.ErrNoDocuments for callers that should not
	// care about the driver.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyProcessed is returned by the conditional session
	// transitions when the document is no longer pending.
	ErrAlreadyProcessed = errors.New("session already processed")
)
