// Package sentinel holds infrastructure facts returned by stores and
// dependency wrappers. Services translate them into domain errors:
//   - ErrNotFound: the registry holds no such session or run for the user
//   - ErrUnavailable: a dependency (question bank source, cache) cannot serve
//
// Input validation failures belong in pkg/domain-errors instead.
package sentinel

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
