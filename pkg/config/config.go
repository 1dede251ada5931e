package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the backend reads.
const EnvPrefix = "VEGOBOLT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthTokens    AuthTokenConfig
	AuthRateLimit AuthRateLimitConfig
	SMTP          SMTPConfig
	Google        GoogleConfig
	Tapo          TapoConfig
	MQTT          MQTTConfig
	Tank          TankConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VEGOBOLT_APP_ENV" default:"dev"`
	Port         string `envconfig:"VEGOBOLT_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"VEGOBOLT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VEGOBOLT_LOG_WARN_STACK" default:"false"`
	BackendURL   string `envconfig:"VEGOBOLT_BACKEND_URL"`
	FrontendURL  string `envconfig:"VEGOBOLT_FRONTEND_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VEGOBOLT_DB_DSN"`
	Driver string `envconfig:"VEGOBOLT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VEGOBOLT_DB_HOST"`
	Port     int    `envconfig:"VEGOBOLT_DB_PORT" default:"5432"`
	User     string `envconfig:"VEGOBOLT_DB_USER"`
	Password string `envconfig:"VEGOBOLT_DB_PASSWORD"`
	Name     string `envconfig:"VEGOBOLT_DB_NAME"`
	SSLMode  string `envconfig:"VEGOBOLT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VEGOBOLT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VEGOBOLT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VEGOBOLT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VEGOBOLT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	ConnectTimeout  time.Duration `envconfig:"VEGOBOLT_DB_CONNECT_TIMEOUT" default:"10s"`
	ConnectRetries  int           `envconfig:"VEGOBOLT_DB_CONNECT_RETRIES" default:"5"`
	ConnectBackoff  time.Duration `envconfig:"VEGOBOLT_DB_CONNECT_BACKOFF" default:"3s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VEGOBOLT_REDIS_URL"`
	Address      string        `envconfig:"VEGOBOLT_REDIS_ADDR"`
	Password     string        `envconfig:"VEGOBOLT_REDIS_PASSWORD"`
	DB           int           `envconfig:"VEGOBOLT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VEGOBOLT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VEGOBOLT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VEGOBOLT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VEGOBOLT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VEGOBOLT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret          string `envconfig:"VEGOBOLT_JWT_SECRET" required:"true"`
	Issuer          string `envconfig:"VEGOBOLT_JWT_ISSUER" default:"vegobolt-backend"`
	ExpirationHours int    `envconfig:"VEGOBOLT_JWT_EXPIRATION_HOURS" default:"168"`
}

// Expiration returns the session token lifetime, default seven days.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(j.ExpirationHours) * time.Hour
}

// AuthTokenConfig governs the single-use verification and reset tokens stored
// alongside the account.
type AuthTokenConfig struct {
	VerificationTTL time.Duration `envconfig:"VEGOBOLT_VERIFICATION_TOKEN_TTL" default:"24h"`
	ResetTTL        time.Duration `envconfig:"VEGOBOLT_RESET_TOKEN_TTL" default:"1h"`
	TokenBytes      int           `envconfig:"VEGOBOLT_AUTH_TOKEN_BYTES" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VEGOBOLT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"VEGOBOLT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"VEGOBOLT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"VEGOBOLT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"VEGOBOLT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"VEGOBOLT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type SMTPConfig struct {
	Host     string `envconfig:"VEGOBOLT_SMTP_HOST"`
	Port     int    `envconfig:"VEGOBOLT_SMTP_PORT" default:"587"`
	Username string `envconfig:"VEGOBOLT_SMTP_USERNAME"`
	Password string `envconfig:"VEGOBOLT_SMTP_PASSWORD"`
	From     string `envconfig:"VEGOBOLT_SMTP_FROM"`
}

// Configured reports whether the transport has enough settings to send mail.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.From != ""
}

type GoogleConfig struct {
	ClientIDs string `envconfig:"VEGOBOLT_GOOGLE_CLIENT_IDS"`
}

// Audiences splits the comma-separated client ID list (Android, iOS, Web).
func (g GoogleConfig) Audiences() []string {
	parts := strings.Split(g.ClientIDs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type TapoConfig struct {
	Email    string        `envconfig:"VEGOBOLT_TAPO_EMAIL"`
	Password string        `envconfig:"VEGOBOLT_TAPO_PASSWORD"`
	DeviceIP string        `envconfig:"VEGOBOLT_TAPO_DEVICE_IP"`
	Timeout  time.Duration `envconfig:"VEGOBOLT_TAPO_TIMEOUT" default:"10s"`
}

// Configured reports whether the smart plug can be reached at all.
func (t TapoConfig) Configured() bool {
	return t.Email != "" && t.Password != "" && t.DeviceIP != ""
}

type MQTTConfig struct {
	BrokerURL         string        `envconfig:"VEGOBOLT_MQTT_BROKER_URL" default:"tcp://broker.hivemq.com:1883"`
	ClientIDPrefix    string        `envconfig:"VEGOBOLT_MQTT_CLIENT_ID_PREFIX" default:"vegobolt_backend"`
	ConnectTimeout    time.Duration `envconfig:"VEGOBOLT_MQTT_CONNECT_TIMEOUT" default:"5s"`
	ReconnectPeriod   time.Duration `envconfig:"VEGOBOLT_MQTT_RECONNECT_PERIOD" default:"5s"`
	PumpControlTopic  string        `envconfig:"VEGOBOLT_MQTT_PUMP_CONTROL_TOPIC" default:"vegobolt/tank/pump/control"`
	PumpStatusTopic   string        `envconfig:"VEGOBOLT_MQTT_PUMP_STATUS_TOPIC" default:"vegobolt/tank/pump/status"`
	SensorDataTopic   string        `envconfig:"VEGOBOLT_MQTT_SENSOR_DATA_TOPIC" default:"vegobolt/tank/sensor/data"`
	ValveControlTopic string        `envconfig:"VEGOBOLT_MQTT_VALVE_CONTROL_TOPIC" default:"vegobolt/tank/valve/control"`
}

// TankConfig carries the machine metadata stamped onto alert descriptors.
type TankConfig struct {
	MachineID      string        `envconfig:"VEGOBOLT_TANK_MACHINE_ID" default:"VB-0001"`
	Location       string        `envconfig:"VEGOBOLT_TANK_LOCATION" default:"Barangay 171"`
	LatestCacheTTL time.Duration `envconfig:"VEGOBOLT_TANK_LATEST_CACHE_TTL" default:"10s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VEGOBOLT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VEGOBOLT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, pair := range []struct{ env, value string }{
		{"VEGOBOLT_DB_HOST", db.Host},
		{"VEGOBOLT_DB_USER", db.User},
		{"VEGOBOLT_DB_NAME", db.Name},
	} {
		if pair.value == "" {
			missing = append(missing, pair.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either VEGOBOLT_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
