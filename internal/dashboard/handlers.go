package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/joao-cbj/silowatch/internal/analytics"
	"github.com/joao-cbj/silowatch/internal/constants"
	"github.com/joao-cbj/silowatch/internal/gateway"
	"github.com/joao-cbj/silowatch/pkg/config"
	"github.com/joao-cbj/silowatch/pkg/timeseries"
)

// Handlers contains all HTTP handlers for the dashboard server
type Handlers struct {
	controller *Controller
	guard      *slotGuard

	mu         sync.RWMutex
	chartCache map[string]ChartResponse
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		guard:      newSlotGuard(),
		chartCache: make(map[string]ChartResponse),
	}
}

// ChartPoint is one aggregated point of a chart series.
type ChartPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Label       string    `json:"label"`
	Temperature float64   `json:"temperatura"`
	Humidity    float64   `json:"umidade"`
	Samples     int       `json:"amostras"`
}

// ChartResponse is a complete downsampled series for one device/period.
type ChartResponse struct {
	DeviceID      string                   `json:"dispositivo"`
	Period        timeseries.Period        `json:"periodo"`
	LookbackHours int                      `json:"horas"`
	Points        []ChartPoint             `json:"pontos"`
	Summary       timeseries.SeriesSummary `json:"resumo"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

// Health reports liveness and version.
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	})
}

// GetChart fetches a device's history for the selected period, buckets it
// with the period's policy and returns the sorted series. Overlapping
// requests for the same device race at the gateway; only the most recently
// issued one updates the cached series, and a stale fetch answers with the
// newest cached series instead of its own.
func (h *Handlers) GetChart(w http.ResponseWriter, req *http.Request) {
	deviceID := mux.Vars(req)["deviceID"]

	period := timeseries.Period(req.URL.Query().Get("period"))
	if period == "" {
		period = timeseries.Period1Day
	}
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "período inválido: "+string(period))
		return
	}

	slot := "chart/" + deviceID
	seq := h.guard.begin(slot)

	hours := period.LookbackHours()
	readings, err := h.controller.gateway.DeviceReadings(req.Context(), deviceID, hours)
	if err != nil {
		h.controller.logger.Errorf("chart fetch for %s failed: %v", deviceID, err)
		writeError(w, http.StatusBadGateway, "erro ao buscar dados do dispositivo")
		return
	}

	buckets := timeseries.Aggregate(readings, period.Policy())
	timeseries.SortBuckets(buckets)

	points := make([]ChartPoint, len(buckets))
	for i, b := range buckets {
		points[i] = ChartPoint{
			Timestamp:   b.BucketStart,
			Label:       timeseries.FormatLabel(b.BucketStart, period),
			Temperature: b.AvgTemperature,
			Humidity:    b.AvgHumidity,
			Samples:     b.SampleCount,
		}
	}

	response := ChartResponse{
		DeviceID:      deviceID,
		Period:        period,
		LookbackHours: hours,
		Points:        points,
		Summary:       timeseries.Summarize(buckets),
	}

	h.mu.Lock()
	if h.guard.current(slot, seq) {
		h.chartCache[slot] = response
	} else {
		// A newer fetch for this device finished first; discard this one.
		h.controller.logger.Debugf("discarding stale chart fetch %d for %s", seq, deviceID)
		if cached, ok := h.chartCache[slot]; ok {
			response = cached
		}
	}
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, response)
}

// GetLatest serves the poller's cached latest reading per device.
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	readings, updatedAt, ok := h.controller.poller.Snapshot()
	if !ok {
		// No successful refresh yet; answer empty rather than error so the
		// dashboard can render and retry on its next poll.
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    []timeseries.Reading{},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"data":         readings,
		"atualizadoEm": updatedAt,
	})
}

// GetAlerts returns the critical readings (temperature or humidity beyond
// the alert thresholds) for a device over the last 24 hours, newest
// first, capped at five.
func (h *Handlers) GetAlerts(w http.ResponseWriter, req *http.Request) {
	deviceID := mux.Vars(req)["deviceID"]

	readings, err := h.controller.gateway.DeviceReadings(req.Context(), deviceID, 24)
	if err != nil {
		h.controller.logger.Errorf("alerts fetch for %s failed: %v", deviceID, err)
		writeError(w, http.StatusBadGateway, "erro ao buscar dados críticos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"criticos": timeseries.CriticalReadings(readings, 5),
	})
}

// GetClimate returns the weather overlay for a silo's location, falling
// back to the configured default location when the silo has no GPS
// coordinates.
func (h *Handlers) GetClimate(w http.ResponseWriter, req *http.Request) {
	location := h.controller.weatherCfg.DefaultLocation

	if deviceID := req.URL.Query().Get("device"); deviceID != "" {
		silos, err := h.controller.gateway.ListSilos(req.Context())
		if err != nil {
			h.controller.logger.Warnf("silo lookup for climate overlay failed, using default location: %v", err)
		} else {
			for _, silo := range silos {
				if silo.DeviceID == deviceID && silo.Latitude != nil && silo.Longitude != nil {
					location = config.LocationData{
						Name:      silo.DeviceID,
						Latitude:  *silo.Latitude,
						Longitude: *silo.Longitude,
					}
					break
				}
			}
		}
	}

	report, err := h.controller.weather.Fetch(req.Context(), location)
	if err != nil {
		h.controller.logger.Errorf("weather fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar clima")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// MetricsResponse combines the gateway's silo counts with the analytics
// service's fleet metrics. Either source failing leaves its half nil; the
// other still renders.
type MetricsResponse struct {
	Silos  *gateway.SiloStatistics  `json:"silos,omitempty"`
	Global *analytics.GlobalMetrics `json:"global,omitempty"`
	Errors []string                 `json:"erros,omitempty"`
}

// GetMetrics serves the dashboard metric cards.
func (h *Handlers) GetMetrics(w http.ResponseWriter, req *http.Request) {
	var resp MetricsResponse

	silos, err := h.controller.gateway.SiloStatistics(req.Context())
	if err != nil {
		h.controller.logger.Warnf("silo statistics unavailable: %v", err)
		resp.Errors = append(resp.Errors, "estatísticas de silos indisponíveis")
	} else {
		resp.Silos = silos
	}

	global, err := h.controller.analytics.GlobalMetrics(req.Context())
	if err != nil {
		h.controller.logger.Warnf("global metrics unavailable: %v", err)
		resp.Errors = append(resp.Errors, "métricas globais indisponíveis")
	} else {
		resp.Global = global
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetIndicator proxies one named indicator series for a device.
func (h *Handlers) GetIndicator(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	days := 7
	if d := req.URL.Query().Get("days"); d != "" {
		parsed, err := parsePositiveInt(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "parâmetro days inválido")
			return
		}
		days = parsed
	}

	series, err := h.controller.analytics.Indicator(req.Context(), vars["indicator"], vars["deviceID"], days)
	if err != nil {
		h.controller.logger.Errorf("indicator fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar indicador")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// GetDeviceSummary proxies the per-device analytics summary.
func (h *Handlers) GetDeviceSummary(w http.ResponseWriter, req *http.Request) {
	summary, err := h.controller.analytics.DeviceSummary(req.Context(), mux.Vars(req)["deviceID"])
	if err != nil {
		h.controller.logger.Errorf("device summary fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar resumo do dispositivo")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetTrends proxies the trend regression for a device.
func (h *Handlers) GetTrends(w http.ResponseWriter, req *http.Request) {
	days := 30
	if d := req.URL.Query().Get("days"); d != "" {
		parsed, err := parsePositiveInt(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "parâmetro days inválido")
			return
		}
		days = parsed
	}

	trends, err := h.controller.analytics.Trends(req.Context(), mux.Vars(req)["deviceID"], days)
	if err != nil {
		h.controller.logger.Errorf("trends fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar tendências")
		return
	}
	writeJSON(w, http.StatusOK, trends)
}
