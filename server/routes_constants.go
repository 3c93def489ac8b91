package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Login flow
	RouteLoginIndex = "/login/index"
	RouteCallback   = "/login/callback"
	RouteLogout     = "/login/logout"

	// Provider data views, require a logged in session
	RouteProfile    = "/login/profile"
	RouteProject    = "/login/project"
	RouteActivities = "/login/activities"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
