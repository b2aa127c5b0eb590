package records

import "errors"

var (
	// ErrNotFound: record tidak ada di store.
	ErrNotFound = errors.New("record not found")

	// ErrNotOwner: record exists but belongs to another user.
	ErrNotOwner = errors.New("not authorized for this record")

	// ErrAlreadyProcessing: another analysis already claimed the record.
	ErrAlreadyProcessing = errors.New("record analysis already in progress")

	// ErrAnalysisFailed: umbrella for extraction/provider failures. The
	// underlying cause is wrapped alongside for logs, never shown to callers.
	ErrAnalysisFailed = errors.New("record analysis failed")
)
