package ports

import "github.com/lalaba/merchant-app/internal/core/domain"

// Navigator owns the current location. Only the navigation system mutates
// it; the gate reads it and issues replacements.
type Navigator interface {
	Location() string
	Entry() domain.RouteEntry
	Replace(path string) domain.RouteEntry
	// OnEnter registers fn for every new route entry and returns a disposer.
	OnEnter(fn func(domain.RouteEntry)) (remove func())
}
