package domain

import "errors"

var (
	ErrNotFound = errors.New("pap not found")

	// ErrOwnerUnresolved is returned by Create while ownership
	// resolution is still in flight. Transient; callers retry after
	// resolution completes.
	ErrOwnerUnresolved = errors.New("shared owner email not resolved yet")

	ErrTitleRequired     = errors.New("title is required")
	ErrPersonnelRequired = errors.New("personnel/office concerned is required")
	ErrIndicatorRequired = errors.New("performance indicator is required")
	ErrPartialContext    = errors.New("development area, outcome, and strategy must be set together")

	ErrEvidenceRequired = errors.New("please provide at least one evidence link")
	ErrEvidenceInvalid  = errors.New("some links are invalid, use http/https links only")

	ErrActualsLocked = errors.New("actuals cannot be edited while the pap is completed")
)
