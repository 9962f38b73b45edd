package domain

import "strings"

const (
	RouteLogin       = "/login"
	RouteVerifyEmail = "/verify-email"
	RouteTabs        = "/(tabs)/"
	RouteHome        = "/"
	RouteSetup       = "/business-setup"
)

// authorizedRoutes are the tab screens a merchant may already be on when the
// first authorized snapshot arrives.
var authorizedRoutes = map[string]struct{}{
	"/":                   {},
	"/wallet":             {},
	"/profile":            {},
	"/business-setup":     {},
	"/accepted-orders":    {},
	"/order-transactions": {},
}

// NormalizeRoute drops layout group segments such as "(tabs)" and trailing
// slashes so "/(tabs)/wallet/" and "/wallet" compare equal.
func NormalizeRoute(path string) string {
	parts := strings.Split(path, "/")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || (strings.HasPrefix(p, "(") && strings.HasSuffix(p, ")")) {
			continue
		}
		kept = append(kept, p)
	}
	return "/" + strings.Join(kept, "/")
}

// SameRoute compares two paths after normalisation.
func SameRoute(a, b string) bool {
	return NormalizeRoute(a) == NormalizeRoute(b)
}

// IsAuthorizedRoute reports whether path is one of the merchant tab screens.
func IsAuthorizedRoute(path string) bool {
	_, ok := authorizedRoutes[NormalizeRoute(path)]
	return ok
}

// RouteEntry identifies one arrival on a route. Re-entering the same path
// produces a new entry ID.
type RouteEntry struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}
