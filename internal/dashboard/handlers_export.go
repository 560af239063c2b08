package dashboard

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/joao-cbj/silowatch/internal/csvexport"
)

const (
	anomalyExportHours = 168
	trendExportDays    = 30
)

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive: %d", n)
	}
	return n, nil
}

func serveCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Export serves one of the CSV downloads. "raw" streams the gateway's own
// export for a date range; the other kinds fetch from the analytics
// service and render the CSV locally.
func (h *Handlers) Export(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	deviceID := vars["deviceID"]

	switch vars["kind"] {
	case "raw":
		h.exportRaw(w, req, deviceID)
	case "statistics":
		h.exportStatistics(w, req, deviceID)
	case "anomalies":
		h.exportAnomalies(w, req, deviceID)
	case "trends":
		h.exportTrends(w, req, deviceID)
	default:
		writeError(w, http.StatusBadRequest, "tipo de exportação inválido: "+vars["kind"])
	}
}

func (h *Handlers) exportRaw(w http.ResponseWriter, req *http.Request, deviceID string) {
	start := req.URL.Query().Get("start")
	end := req.URL.Query().Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start e end são obrigatórios")
		return
	}

	data, err := h.controller.gateway.ExportReadings(req.Context(), deviceID, start, end)
	if err != nil {
		h.controller.logger.Errorf("raw export for %s failed: %v", deviceID, err)
		writeError(w, http.StatusBadGateway, "erro ao exportar dados brutos")
		return
	}

	serveCSV(w, fmt.Sprintf("dados_brutos_%s_%s_%s.csv", deviceID, start, end), data)
}

func (h *Handlers) exportStatistics(w http.ResponseWriter, req *http.Request, deviceID string) {
	start := req.URL.Query().Get("start")
	end := req.URL.Query().Get("end")
	if start == "" {
		start = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if end == "" {
		end = time.Now().Format("2006-01-02")
	}

	stats, err := h.controller.analytics.Statistics(req.Context(), deviceID, start, end)
	if err != nil {
		h.controller.logger.Errorf("statistics export for %s failed: %v", deviceID, err)
		writeError(w, http.StatusBadGateway, "erro ao exportar estatísticas")
		return
	}

	serveCSV(w, fmt.Sprintf("estatisticas_%s_%s_%s.csv", deviceID, start, end),
		[]byte(csvexport.Statistics(stats)))
}

func (h *Handlers) exportAnomalies(w http.ResponseWriter, req *http.Request, deviceID string) {
	report, err := h.controller.analytics.Anomalies(req.Context(), deviceID, anomalyExportHours)
	if err != nil {
		h.controller.logger.Errorf("anomaly export for %s failed: %v", deviceID, err)
		writeError(w, http.StatusBadGateway, "erro ao exportar anomalias")
		return
	}

	serveCSV(w, fmt.Sprintf("anomalias_%s_7dias.csv", deviceID),
		[]byte(csvexport.Anomalies(report)))
}

func (h *Handlers) exportTrends(w http.ResponseWriter, req *http.Request, deviceID string) {
	report, err := h.controller.analytics.Trends(req.Context(), deviceID, trendExportDays)
	if err != nil {
		h.controller.logger.Errorf("trend export for %s failed: %v", deviceID, err)
		writeError(w, http.StatusBadGateway, "erro ao exportar tendências")
		return
	}

	serveCSV(w, fmt.Sprintf("tendencias_%s_30dias.csv", deviceID),
		[]byte(csvexport.Trends(report)))
}
