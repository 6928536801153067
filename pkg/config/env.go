package config

const EnvPrefix = "QUOTECATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "QUOTECATALOG_APP_ENV"
	EnvPort      = "QUOTECATALOG_APP_PORT"
	EnvLogLevel  = "QUOTECATALOG_LOG_LEVEL"
	EnvLogFormat = "QUOTECATALOG_LOG_FORMAT"

	EnvCatalogSource  = "QUOTECATALOG_CATALOG_SOURCE"
	EnvCatalogPath    = "QUOTECATALOG_CATALOG_PATH"
	EnvCatalogProfile = "QUOTECATALOG_CATALOG_PROFILE"

	EnvSessionStore = "QUOTECATALOG_SESSION_STORE"

	EnvDBDSN  = "QUOTECATALOG_DB_DSN"
	EnvDBHost = "QUOTECATALOG_DB_HOST"
	EnvDBUser = "QUOTECATALOG_DB_USER"
	EnvDBName = "QUOTECATALOG_DB_NAME"

	EnvRedisURL = "QUOTECATALOG_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const (
	SourceXLSX = "xlsx"
	SourceCSV  = "csv"
	SourceDB   = "db"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)
