package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Mail      MailConfig      `mapstructure:"mail"      validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BaseURL is the public address of the web client. It is linked from
	// reminder emails and is the only origin allowed by CORS.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains the settings needed to verify access tokens issued by
// the account service.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes only applies to tokens minted by this service
	// (tooling and tests); production tokens come from the account service.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// Mail transports
const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"
)

// MailConfig contains the outbound mail gateway settings. Credentials are
// optional: when they are missing the scheduler still runs but sends nothing.
type MailConfig struct {
	Transport string `mapstructure:"transport" validate:"required,oneof=smtp gmail"`
	FromName  string `mapstructure:"from_name" validate:"required"`

	// Username is the sending account address, used as the From address for
	// both transports.
	Username string `mapstructure:"username" validate:"omitempty,email"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"     validate:"required_if=Transport smtp"`
	Port     int    `mapstructure:"port"     validate:"gte=0,lt=65536"`

	GmailClientID     string `mapstructure:"gmail_client_id"`
	GmailClientSecret string `mapstructure:"gmail_client_secret"`
	GmailRefreshToken string `mapstructure:"gmail_refresh_token"`

	SendTimeout time.Duration `mapstructure:"send_timeout" validate:"gt=0"`
}

// Enabled reports whether enough credentials are present to send mail with
// the selected transport.
func (c MailConfig) Enabled() bool {
	if c.Username == "" {
		return false
	}
	switch c.Transport {
	case TransportGmail:
		return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
	default:
		return c.Password != ""
	}
}

// SchedulerConfig contains the daily reminder trigger settings.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Morning and Evening are local wall-clock times in HH:MM form.
	Morning string `mapstructure:"morning" validate:"required,clock"`
	Evening string `mapstructure:"evening" validate:"required,clock"`
	// Timezone is an IANA zone name. It decides both when the triggers fire
	// and where calendar-day boundaries fall. Empty means the process zone.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
	// Concurrency bounds the number of users processed at once in a batch.
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=64"`
}

// Location resolves the configured time zone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
