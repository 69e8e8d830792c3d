package portalsdk

// Route is the portal area a session is dispatched to after sign-in.
type Route string

const (
	RoutePatient Route = "patient"
	RouteDoctor  Route = "doctor"
	RouteAdmin   Route = "admin"

	// RouteDenied is the explicit dead end for sessions with no roles or
	// only unrecognized ones. There is no fall-through to a default area.
	RouteDenied Route = "denied"
)

var routesByRole = map[string]Route{
	"PATIENT": RoutePatient,
	"DOCTOR":  RouteDoctor,
	"ADMIN":   RouteAdmin,
}

// RouteForRole maps a single role name to its portal area.
func RouteForRole(role string) Route {
	if r, ok := routesByRole[role]; ok {
		return r
	}
	return RouteDenied
}

// Route dispatches on the session's primary role.
func (s StoredSession) Route() Route {
	return RouteForRole(s.PrimaryRole())
}
