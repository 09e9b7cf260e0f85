package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps the request body size in megabytes.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"4"`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// RequiresAuth reports whether an API key is configured. An empty key
// leaves the API open, intended for local single-user setups.
func (c Config) RequiresAuth() bool {
	return c.ApiKey != ""
}
