package global

import (
	cfg "github.com/mailio/go-web3-kit/config"
)

// Conf global config
var Conf Config

type Config struct {
	cfg.YamlConfig `yaml:",inline"`
	Storage        StorageConfig    `yaml:"storage"`
	Smtp           SmtpConfig       `yaml:"smtp"`
	System         SystemConfig     `yaml:"system"`
	Dispatch       DispatchConfig   `yaml:"dispatch"`
	Prometheus     PrometheusConfig `yaml:"prometheus"`
	Jwt            JwtConfig        `yaml:"jwt"`
}

// StorageConfig selects the persistence backend. Type is either "csv" or "postgres".
type StorageConfig struct {
	Type     string         `yaml:"type"`
	DataDir  string         `yaml:"dataDir"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SmtpConfig is the outbound mail endpoint reminder emails are submitted to.
// Credentials are per user; only the endpoint is system wide.
type SmtpConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SystemConfig holds the fallback sender used for account level notices
// (password reset, confirmation codes), distinct from per-user reminder credentials.
type SystemConfig struct {
	SenderEmail string `yaml:"senderEmail"`
	AppPassword string `yaml:"appPassword"`
	BaseUrl     string `yaml:"baseUrl"`
}

type DispatchConfig struct {
	Concurrency        int `yaml:"concurrency"`
	IntervalMinutes    int `yaml:"intervalMinutes"`
	SendTimeoutSeconds int `yaml:"sendTimeoutSeconds"`
}

type PrometheusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type JwtConfig struct {
	Secret   string `yaml:"secret"`
	TtlHours int    `yaml:"ttlHours"`
}

// WorkerLimit returns the worker pool size for one dispatch cycle.
func (d DispatchConfig) WorkerLimit() int {
	if d.Concurrency > 0 {
		return d.Concurrency
	}
	return 10
}

// Interval returns the cycle interval in minutes.
func (d DispatchConfig) Interval() int {
	if d.IntervalMinutes > 0 {
		return d.IntervalMinutes
	}
	return 5
}

// SendTimeout returns the per-send timeout in seconds.
func (d DispatchConfig) SendTimeout() int {
	if d.SendTimeoutSeconds > 0 {
		return d.SendTimeoutSeconds
	}
	return 30
}
