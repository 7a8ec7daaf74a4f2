package pathfinding

import "errors"

// Failures are reported through Path.Status. These sentinels are returned by
// Path.Err so callers can match on them with errors.Is.
var (
	ErrNoPath     = errors.New("pathfinding: no path")
	ErrStaleRoute = errors.New("pathfinding: stale route")
	ErrNoGraph    = errors.New("pathfinding: no graph built")
)
