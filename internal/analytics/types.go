package analytics

// Response shapes for the analytics service. Numeric fields that the
// service may omit are pointers; absent values serialize as empty cells in
// CSV exports rather than zeroes.

// StatsPeriod is the reporting window echoed back by the service.
type StatsPeriod struct {
	Start string `json:"inicio"`
	End   string `json:"fim"`
}

// MetricStats holds the per-metric statistics block.
type MetricStats struct {
	Mean   *float64 `json:"media"`
	Min    *float64 `json:"minimo"`
	Max    *float64 `json:"maximo"`
	StdDev *float64 `json:"desvio_padrao"`
}

// DeviceStatistics is the response of /api/analytics/estatisticas/:deviceId.
type DeviceStatistics struct {
	DeviceID      string      `json:"dispositivo"`
	Period        StatsPeriod `json:"periodo"`
	TotalReadings int         `json:"total_leituras"`
	Temperature   MetricStats `json:"temperatura"`
	Humidity      MetricStats `json:"umidade"`
}

// Anomaly is one entry of /api/analytics/anomalias/:deviceId.
type Anomaly struct {
	Timestamp string   `json:"timestamp"`
	Kind      string   `json:"tipo"`
	Value     *float64 `json:"valor"`
	ZScore    *float64 `json:"zscore"`
	Severity  string   `json:"gravidade"`
}

// AnomalyReport is the response of /api/analytics/anomalias/:deviceId.
type AnomalyReport struct {
	DeviceID  string    `json:"dispositivo"`
	Anomalies []Anomaly `json:"anomalias"`
}

// MetricTrend is the regression result for one metric.
type MetricTrend struct {
	Direction    string   `json:"tendencia"`
	ChangePerHr  *float64 `json:"variacao_por_hora"`
	ChangePerDay *float64 `json:"variacao_por_dia"`
	RSquared     *float64 `json:"r_squared"`
	Reliability  string   `json:"confiabilidade"`
}

// TrendReport is the response of /api/analytics/tendencias/:deviceId.
type TrendReport struct {
	DeviceID    string      `json:"dispositivo"`
	Temperature MetricTrend `json:"temperatura"`
	Humidity    MetricTrend `json:"umidade"`
}

// IndicatorSeries is the response shape of the /api/indicators endpoints.
// Points are left schemaless; the dashboard passes them through untouched.
type IndicatorSeries struct {
	DeviceID  string                   `json:"dispositivo"`
	Indicator string                   `json:"indicador"`
	Days      int                      `json:"dias"`
	Points    []map[string]interface{} `json:"pontos"`
}

// GlobalMetrics is the response of /api/metrics/global.
type GlobalMetrics struct {
	Devices        int      `json:"dispositivos"`
	TotalReadings  int      `json:"total_leituras"`
	AvgTemperature *float64 `json:"temperatura_media"`
	AvgHumidity    *float64 `json:"umidade_media"`
	ActiveAlerts   int      `json:"alertas_ativos"`
}

// DeviceSummary is the response of /api/analytics/resumo-dispositivo/:deviceId.
type DeviceSummary struct {
	DeviceID    string      `json:"dispositivo"`
	LastReading string      `json:"ultima_leitura"`
	Temperature MetricStats `json:"temperatura"`
	Humidity    MetricStats `json:"umidade"`
	Status      string      `json:"status"`
}
