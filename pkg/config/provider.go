// Package config provides configuration loading for the silowatch daemon
// from YAML files or SQLite databases.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Gateway   GatewayData   `json:"gateway" yaml:"gateway"`
	Analytics AnalyticsData `json:"analytics" yaml:"analytics"`
	Weather   WeatherData   `json:"weather,omitempty" yaml:"weather,omitempty"`
	Dashboard DashboardData `json:"dashboard" yaml:"dashboard"`
	Session   SessionData   `json:"session,omitempty" yaml:"session,omitempty"`
}

// GatewayData holds the connection settings for the primary REST backend.
type GatewayData struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// AnalyticsData holds the connection settings for the analytics service.
type AnalyticsData struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// WeatherData holds the open-meteo settings and the fallback location used
// when a silo has no GPS coordinates.
type WeatherData struct {
	BaseURL         string       `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timezone        string       `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	DefaultLocation LocationData `json:"default_location,omitempty" yaml:"default_location,omitempty"`
}

// LocationData is a named latitude/longitude pair.
type LocationData struct {
	Name      string  `json:"name,omitempty" yaml:"name,omitempty"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// DashboardData holds the configuration for the local dashboard HTTP server.
type DashboardData struct {
	ListenAddr          string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Port                int    `json:"port,omitempty" yaml:"port,omitempty"`
	PollIntervalSeconds int    `json:"poll_interval_seconds,omitempty" yaml:"poll_interval_seconds,omitempty"`
	TLSCertPath         string `json:"tls_cert_path,omitempty" yaml:"tls_cert_path,omitempty"`
	TLSKeyPath          string `json:"tls_key_path,omitempty" yaml:"tls_key_path,omitempty"`
}

// SessionData holds the persisted session settings.
type SessionData struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Defaults applied by loaders when optional settings are omitted.
const (
	DefaultGatewayTimeoutSeconds = 10
	DefaultPollIntervalSeconds   = 30
	DefaultDashboardPort         = 8080
	DefaultWeatherBaseURL        = "https://api.open-meteo.com"
	DefaultWeatherTimezone       = "America/Recife"
	DefaultSessionPath           = "session.db"
)

// Fallback location used when neither the config nor the silo provides
// coordinates.
var DefaultLocation = LocationData{
	Name:      "Recife, PE",
	Latitude:  -8.0476,
	Longitude: -34.877,
}

// applyDefaults fills in optional settings on a loaded configuration.
func applyDefaults(c *ConfigData) {
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = DefaultGatewayTimeoutSeconds
	}
	if c.Analytics.TimeoutSeconds == 0 {
		c.Analytics.TimeoutSeconds = DefaultGatewayTimeoutSeconds
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = DefaultWeatherBaseURL
	}
	if c.Weather.Timezone == "" {
		c.Weather.Timezone = DefaultWeatherTimezone
	}
	if c.Weather.DefaultLocation.Latitude == 0 && c.Weather.DefaultLocation.Longitude == 0 {
		c.Weather.DefaultLocation = DefaultLocation
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = DefaultDashboardPort
	}
	if c.Dashboard.PollIntervalSeconds == 0 {
		c.Dashboard.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if c.Session.Path == "" {
		c.Session.Path = DefaultSessionPath
	}
}
