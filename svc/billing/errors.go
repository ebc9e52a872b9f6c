package billing

import "errors"

var (
	// ErrNoSubscription is returned when the caller has no subscription on
	// record.
	ErrNoSubscription = errors.New("billing: no subscription")

	// ErrEmptyCatalog is returned by LoadCatalog when the document defines
	// no plans.
	ErrEmptyCatalog = errors.New("billing: catalog defines no plans")
)
