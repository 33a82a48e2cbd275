package constants

// Route constants shared between the router and controllers
const (
	AuthRoute    = "/auth"
	ConfigsRoute = "/configs"

	// Query parameter names for /configs/search
	QueryServiceName = "service_name"
	QueryEnvName     = "env_name"
)
