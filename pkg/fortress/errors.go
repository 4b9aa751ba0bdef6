package fortress

import "errors"

var (
	// ErrInvariant marks a broken internal invariant during layout, such as
	// a piece type without geometry. It never means "nothing found".
	ErrInvariant = errors.New("fortress: internal invariant violated")

	// ErrInvalidConfig is returned for unusable placement or layout settings.
	ErrInvalidConfig = errors.New("fortress: invalid config")
)
