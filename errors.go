package entiq

import (
	"entiq/internal/analyze"
	"entiq/internal/assemble"
	"entiq/internal/driver"
	"entiq/internal/plan"
	"entiq/internal/spec"
)

// The error taxonomy (spec.md §7) is implemented as concrete types in
// the package that raises it; entiq re-exports each as a type alias so
// callers can errors.As against the single entiq.*Error name regardless
// of which internal stage produced it.
type (
	InvalidSpecError       = spec.InvalidSpecError
	RepeatedJoinTableError = analyze.RepeatedJoinTableError
	UnorderableJoinsError  = plan.UnorderableJoinsError
	DbError                = driver.DbError
	TransformError         = assemble.TransformError
)
