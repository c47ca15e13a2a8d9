package config

const (
	EnvPrefix = "BOLAJOY"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "BOLAJOY_APP_ENV"
	EnvPort     = "BOLAJOY_APP_PORT"
	EnvDBDSN    = "BOLAJOY_DB_DSN"
	EnvDBDriver = "BOLAJOY_DB_DRIVER"
	EnvDBHost   = "BOLAJOY_DB_HOST"
	EnvDBUser   = "BOLAJOY_DB_USER"
	EnvDBName   = "BOLAJOY_DB_NAME"
	EnvRedisURL = "BOLAJOY_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
