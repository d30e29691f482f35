package config

// EnvPrefix is passed to envconfig.Process; every variable below already
// carries the full prefixed name in its struct tag.
const EnvPrefix = "CATALOGO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "CATALOGO_APP_ENV"
	EnvPort         = "CATALOGO_APP_PORT"
	EnvLogLevel     = "CATALOGO_LOG_LEVEL"
	EnvDBDSN        = "CATALOGO_DB_DSN"
	EnvDBHost       = "CATALOGO_DB_HOST"
	EnvDBUser       = "CATALOGO_DB_USER"
	EnvDBName       = "CATALOGO_DB_NAME"
	EnvUploadsDir   = "CATALOGO_UPLOADS_DIR"
	EnvUploadsBase  = "CATALOGO_UPLOADS_BASE_PATH"
	EnvMaxUploadMB  = "CATALOGO_MAX_UPLOAD_MB"
	EnvUseSQLite    = "CATALOGO_USE_SQLITE"
	EnvAutoMigrate  = "CATALOGO_AUTO_MIGRATE"
	EnvSweepOrphans = "CATALOGO_SWEEP_ORPHANS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
