package gateway

// User is the authenticated user's profile as stored by the gateway.
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"nome,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"funcao,omitempty"`
}

// Merge returns a copy of u with the non-empty fields of partial applied.
// The ID is always preserved.
func (u User) Merge(partial User) User {
	merged := u
	if partial.Name != "" {
		merged.Name = partial.Name
	}
	if partial.Email != "" {
		merged.Email = partial.Email
	}
	if partial.Role != "" {
		merged.Role = partial.Role
	}
	return merged
}

// Silo is a registered grain silo. Coordinates are optional; devices
// without GPS report neither.
type Silo struct {
	ID         string   `json:"_id,omitempty"`
	Name       string   `json:"nome"`
	Kind       string   `json:"tipoSilo,omitempty"`
	DeviceID   string   `json:"dispositivo,omitempty"`
	Integrated bool     `json:"integrado,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// SiloStatistics are the aggregate counts from /api/silos/estatisticas.
type SiloStatistics struct {
	Total      int `json:"total"`
	Integrated int `json:"integrados"`
	Online     int `json:"online"`
	Alerts     int `json:"alertas"`
}

// LoginResult is the outcome of a login attempt. RequiresMFA set means the
// credentials were accepted but a one-time code must be supplied on a
// second attempt; it is not a failure.
type LoginResult struct {
	Token       string `json:"token,omitempty"`
	User        User   `json:"usuario,omitempty"`
	RequiresMFA bool   `json:"requiresMFA,omitempty"`
	Message     string `json:"message,omitempty"`
}

/// MFASetup is the enrollment payload: a QR code (data URL) plus the raw
// TOTP secret for manual entry.
type MFASetup struct {
	QRCode string `json:"qrCode"`
	Secret string `json:"secret"`
}

// BLEDevice is one device found by the provisioning gateway's BLE scan.
type BLEDevice struct {
	MAC    string `json:"mac"`
	Name   string `json:"nome,omitempty"`
	Signal int    `json:"rssi,omitempty"`
}

// ProvisioningStatus reports whether the ESP32 provisioning gateway is
// reachable.
type ProvisioningStatus struct {
	Online      bool   `json:"online"`
	GatewayName string `json:"gateway,omitempty"`
	LastSeen    string `json:"ultimaConexao,omitempty"`
}
