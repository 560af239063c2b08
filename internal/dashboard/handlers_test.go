package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joao-cbj/silowatch/internal/analytics"
	"github.com/joao-cbj/silowatch/internal/gateway"
	"github.com/joao-cbj/silowatch/internal/meteo"
	"github.com/joao-cbj/silowatch/internal/session"
	"github.com/joao-cbj/silowatch/pkg/config"
)

type testEnv struct {
	ctrl    *Controller
	store   *session.Store
	gateway *httptest.Server
}

// newTestEnv wires a controller against fake gateway and analytics
// backends and logs a session in so authenticated routes are reachable.
func newTestEnv(t *testing.T, gatewayHandler, analyticsHandler http.HandlerFunc) *testEnv {
	t.Helper()

	logger := zap.NewNop().Sugar()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"token":   "tok-123",
			"usuario": map[string]string{"_id": "u1", "nome": "Ana", "email": "ana@example.com"},
		})
	})
	mux.HandleFunc("/api/auth/verificar", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"usuario": map[string]string{"_id": "u1", "nome": "Ana", "email": "ana@example.com"},
		})
	})
	if gatewayHandler != nil {
		mux.HandleFunc("/", gatewayHandler)
	}
	gatewaySrv := httptest.NewServer(mux)
	t.Cleanup(gatewaySrv.Close)

	analyticsSrv := httptest.NewServer(analyticsHandler)
	t.Cleanup(analyticsSrv.Close)

	store, err := session.NewStore(filepath.Join(t.TempDir(), "session.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gw := gateway.NewClient(config.GatewayData{BaseURL: gatewaySrv.URL}, store, logger)
	store.AttachGateway(gw)
	gw.SetUnauthorizedHandler(store.Clear)

	_, err = store.Login(context.Background(), "ana@example.com", "secret", "")
	require.NoError(t, err)

	an := analytics.NewClient(config.AnalyticsData{BaseURL: analyticsSrv.URL}, logger)
	weather := meteo.NewClient(config.WeatherData{BaseURL: analyticsSrv.URL}, logger)

	cfgData := &config.ConfigData{
		Gateway:   config.GatewayData{BaseURL: gatewaySrv.URL},
		Analytics: config.AnalyticsData{BaseURL: analyticsSrv.URL},
		Dashboard: config.DashboardData{Port: 0},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	var wg sync.WaitGroup

	ctrl, err := NewController(ctx, &wg, cfgData, store, gw, an, weather, logger)
	require.NoError(t, err)

	return &testEnv{ctrl: ctrl, store: store, gateway: gatewaySrv}
}

func (e *testEnv) request(method, path string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})
	env.store.Logout()

	rec := env.request(http.MethodGet, "/api/latest", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "não autenticado", resp["error"])

	// Health stays reachable without a session.
	rec = env.request(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSession(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Name string `json:"nome"`
		} `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "Ana", resp.User.Name)
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodPost, "/api/session/login",
		[]byte(`{"email":"","senha":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChartAggregates(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/dados/silo-1") {
			assert.Equal(t, "24", r.URL.Query().Get("horas"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"dados": []map[string]interface{}{
					{"dispositivo": "silo-1", "timestamp": "2026-03-10T10:12:00Z", "temperatura": 20.0, "umidade": 60.0},
					{"dispositivo": "silo-1", "timestamp": "2026-03-10T10:25:00Z", "temperatura": 30.0, "umidade": 70.0},
					{"dispositivo": "silo-1", "timestamp": "2026-03-10T10:40:00Z", "temperatura": 24.0, "umidade": 62.0},
				},
			})
			return
		}
		http.NotFound(w, r)
	}, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/api/chart/silo-1?period=1d", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Points, 2)
	assert.Equal(t, 25.0, resp.Points[0].Temperature)
	assert.Equal(t, 65.0, resp.Points[0].Humidity)
	assert.Equal(t, 2, resp.Points[0].Samples)
	assert.Equal(t, "10:00", resp.Points[0].Label)
	assert.Equal(t, "10:30", resp.Points[1].Label)
	assert.Equal(t, 24, resp.LookbackHours)
	assert.Equal(t, 3, resp.Summary.Samples)
}

func TestGetChartRejectsUnknownPeriod(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/api/chart/silo-1?period=2w", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLatestBeforeFirstPoll(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/api/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data)
}

func TestGetAlertsFiltersCritical(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"dados": []map[string]interface{}{
				{"dispositivo": "silo-1", "timestamp": "2026-03-10T08:00:00Z", "temperatura": 25.0, "umidade": 60.0},
				{"dispositivo": "silo-1", "timestamp": "2026-03-10T09:00:00Z", "temperatura": 31.0, "umidade": 60.0},
				{"dispositivo": "silo-1", "timestamp": "2026-03-10T10:00:00Z", "temperatura": 25.0, "umidade": 85.0},
			},
		})
	}, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/api/alerts/silo-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Critical []struct {
			Timestamp string `json:"timestamp"`
		} `json:"criticos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Critical, 2)
	// Newest first.
	assert.Contains(t, resp.Critical[0].Timestamp, "10:00:00")
	assert.Contains(t, resp.Critical[1].Timestamp, "09:00:00")
}

func TestExportStatisticsCSV(t *testing.T) {
	media := 28.5
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analytics/estatisticas/silo-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"dispositivo": "silo-1",
			"temperatura": map[string]interface{}{"media": media},
		})
	})

	rec := env.request(http.MethodGet, "/api/export/statistics/silo-1?start=2026-03-01&end=2026-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="estatisticas_silo-1_2026-03-01_2026-03-10.csv"`,
		rec.Header().Get("Content-Disposition"))

	lines := strings.Split(rec.Body.String(), "\n")
	assert.Equal(t, "Métrica,Valor", lines[0])
	assert.Contains(t, lines, "Temperatura Média,28.5")
}

func TestExportRawRequiresRange(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/api/export/raw/silo-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportUnknownKind(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/api/export/everything/silo-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserValidation(t *testing.T) {
	var gatewayHits int
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gatewayHits++
	}, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodPost, "/api/users",
		[]byte(`{"nome":"Bia","email":"bia@example.com","senha":"12345"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, gatewayHits)
}

func TestChangePasswordValidation(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodPut, "/api/users/u1/password",
		[]byte(`{"senhaAtual":"old-pass","novaSenha":"short"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPut, "/api/users/u1/password",
		[]byte(`{"senhaAtual":"","novaSenha":"long-enough"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProvisionValidation(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodPost, "/api/provisioning/provision",
		[]byte(`{"siloId":"s1"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	rec := env.request(http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	env.ctrl.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}

func TestSlotGuard(t *testing.T) {
	guard := newSlotGuard()

	first := guard.begin("chart/silo-1")
	second := guard.begin("chart/silo-1")
	other := guard.begin("chart/silo-2")

	assert.False(t, guard.current("chart/silo-1", first))
	assert.True(t, guard.current("chart/silo-1", second))
	assert.True(t, guard.current("chart/silo-2", other))
}
