package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Uploads      UploadsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"CATALOGO_APP_ENV" required:"true"`
	Port         string   `envconfig:"CATALOGO_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CATALOGO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CATALOGO_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CATALOGO_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOGO_DB_DSN"`
	Driver string `envconfig:"CATALOGO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOGO_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOGO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOGO_DB_USER"`
	LegacyPassword string `envconfig:"CATALOGO_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOGO_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOGO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOGO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOGO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// UploadsConfig describes the directory product images are written to and how
// stored names are exposed back to clients.
type UploadsConfig struct {
	Dir         string `envconfig:"CATALOGO_UPLOADS_DIR" default:"uploads"`
	BasePath    string `envconfig:"CATALOGO_UPLOADS_BASE_PATH" default:"/uploads"`
	MaxUploadMB int    `envconfig:"CATALOGO_MAX_UPLOAD_MB" default:"20"`
}

// MaxUploadBytes returns the multipart body limit in bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

type FeatureFlagsConfig struct {
	UseSQLite        bool          `envconfig:"CATALOGO_USE_SQLITE" default:"false"`
	AutoMigrate      bool          `envconfig:"CATALOGO_AUTO_MIGRATE" default:"false"`
	SweepOrphans     bool          `envconfig:"CATALOGO_SWEEP_ORPHANS" default:"false"`
	SweepGracePeriod time.Duration `envconfig:"CATALOGO_SWEEP_GRACE_PERIOD" default:"24h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:catalogo.db?_pragma=foreign_keys(1)"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
