package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Bank     BankConfig
	Agent    AgentConfig
	Redis    RedisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	SeedFile        string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  string
}

// AuthConfig holds token signing and session cookie settings
type AuthConfig struct {
	SecretKey     string
	TokenLifetime time.Duration
	CookieSecure  bool
}

// BankConfig holds connection settings for the upstream bank API
type BankConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AgentConfig holds connection settings for the risk agent
type AgentConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig holds identity cache settings; an empty Addr disables caching
type RedisConfig struct {
	Addr             string
	IdentityCacheTTL time.Duration
}
