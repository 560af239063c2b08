package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database.
// Settings live in a single-row config table; NULL columns fall back to
// the package defaults.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	query := `
		SELECT gateway_base_url, gateway_timeout_seconds,
		       analytics_base_url, analytics_timeout_seconds,
		       weather_base_url, weather_timezone,
		       default_location_name, default_latitude, default_longitude,
		       dashboard_listen_addr, dashboard_port, poll_interval_seconds,
		       tls_cert_path, tls_key_path, session_path
		FROM config
		WHERE name = 'default'
	`

	config := &ConfigData{}
	var gatewayTimeout, analyticsTimeout, dashboardPort, pollInterval sql.NullInt64
	var weatherBaseURL, weatherTimezone, locationName sql.NullString
	var listenAddr, tlsCert, tlsKey, sessionPath sql.NullString
	var defaultLat, defaultLon sql.NullFloat64

	err := s.db.QueryRow(query).Scan(
		&config.Gateway.BaseURL, &gatewayTimeout,
		&config.Analytics.BaseURL, &analyticsTimeout,
		&weatherBaseURL, &weatherTimezone,
		&locationName, &defaultLat, &defaultLon,
		&listenAddr, &dashboardPort, &pollInterval,
		&tlsCert, &tlsKey, &sessionPath,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no 'default' config row found in %s", s.dbPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query config: %w", err)
	}

	if gatewayTimeout.Valid {
		config.Gateway.TimeoutSeconds = int(gatewayTimeout.Int64)
	}
	if analyticsTimeout.Valid {
		config.Analytics.TimeoutSeconds = int(analyticsTimeout.Int64)
	}
	if weatherBaseURL.Valid {
		config.Weather.BaseURL = weatherBaseURL.String
	}
	if weatherTimezone.Valid {
		config.Weather.Timezone = weatherTimezone.String
	}
	if locationName.Valid {
		config.Weather.DefaultLocation.Name = locationName.String
	}
	if defaultLat.Valid {
		config.Weather.DefaultLocation.Latitude = defaultLat.Float64
	}
	if defaultLon.Valid {
		config.Weather.DefaultLocation.Longitude = defaultLon.Float64
	}
	if listenAddr.Valid {
		config.Dashboard.ListenAddr = listenAddr.String
	}
	if dashboardPort.Valid {
		config.Dashboard.Port = int(dashboardPort.Int64)
	}
	if pollInterval.Valid {
		config.Dashboard.PollIntervalSeconds = int(pollInterval.Int64)
	}
	if tlsCert.Valid {
		config.Dashboard.TLSCertPath = tlsCert.String
	}
	if tlsKey.Valid {
		config.Dashboard.TLSKeyPath = tlsKey.String
	}
	if sessionPath.Valid {
		config.Session.Path = sessionPath.String
	}

	applyDefaults(config)
	return config, nil
}

// IsReadOnly returns false since SQLite configurations can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
