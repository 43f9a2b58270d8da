package config

// Environment variables read by parseEnv. The secret is usually supplied this
// way so it does not show up in process listings.
const (
	EnvSecretKey   = "TASKKEEPER_SECRET_KEY"
	EnvDatabaseDSN = "TASKKEEPER_DATABASE_DSN"
	EnvAddr        = "TASKKEEPER_ADDR"
)

func parseEnv(config *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup(EnvDatabaseDSN); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		config.EndpointAddrHTTP = v
	}
}
