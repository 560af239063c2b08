package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-cbj/silowatch/internal/log"
	"github.com/joao-cbj/silowatch/pkg/config"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.GatewayData{BaseURL: server.URL, TimeoutSeconds: 5},
		staticToken(token), log.GetSugaredLogger())
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, "tok-123", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
	})

	_, err := client.LatestReadings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
	})

	_, err := client.LatestReadings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	client := newTestClient(t, "expired", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expirado"})
	})

	cleared := false
	client.SetUnauthorizedHandler(func() { cleared = true })

	_, err := client.Verify(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, cleared, "401 on an authenticated call must clear the session")
	assert.Contains(t, err.Error(), "token expirado")
}

func TestUnauthorizedLoginDoesNotClearSession(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Email ou senha incorretos"})
	})

	cleared := false
	client.SetUnauthorizedHandler(func() { cleared = true })

	_, err := client.Login(context.Background(), "user@example.com", "wrong", "")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, cleared, "a rejected login must not clear the session")
}

func TestLoginRequiresMFA(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["mfaCode"] == "" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"requiresMFA": true,
				"message":     "Digite o código do autenticador",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":   "tok-mfa",
			"usuario": map[string]string{"_id": "u1", "nome": "Ana", "email": "ana@example.com"},
		})
	})

	// First attempt: credentials only. Not a failure, just a re-prompt.
	result, err := client.Login(context.Background(), "ana@example.com", "senha", "")
	require.NoError(t, err)
	assert.True(t, result.RequiresMFA)
	assert.Empty(t, result.Token)

	// Second attempt: same credentials plus the code.
	result, err = client.Login(context.Background(), "ana@example.com", "senha", "123456")
	require.NoError(t, err)
	assert.False(t, result.RequiresMFA)
	assert.Equal(t, "tok-mfa", result.Token)
	assert.Equal(t, "Ana", result.User.Name)
}

func TestDeviceReadingsQuery(t *testing.T) {
	var gotPath, gotHoras string
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHoras = r.URL.Query().Get("horas")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"dados": []map[string]interface{}{
				{"dispositivo": "silo-01", "timestamp": "2024-01-01T10:47:33Z", "temperatura": 22.5, "umidade": 61.0},
			},
		})
	})

	readings, err := client.DeviceReadings(context.Background(), "silo-01", 43800)
	require.NoError(t, err)
	assert.Equal(t, "/api/dados/silo-01", gotPath)
	assert.Equal(t, "43800", gotHoras)
	require.Len(t, readings, 1)
	assert.Equal(t, "silo-01", readings[0].DeviceID)
	assert.Equal(t, 22.5, readings[0].Temperature)
}

func TestExportReadingsReturnsBlob(t *testing.T) {
	const blob = "timestamp,temperatura,umidade\n2024-01-01T10:00:00Z,22.5,61.0\n"
	var gotQuery map[string]string
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"dispositivo": r.URL.Query().Get("dispositivo"),
			"inicio":      r.URL.Query().Get("inicio"),
			"fim":         r.URL.Query().Get("fim"),
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(blob))
	})

	data, err := client.ExportReadings(context.Background(), "silo-01", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, blob, string(data))
	assert.Equal(t, "silo-01", gotQuery["dispositivo"])
	assert.Equal(t, "2024-01-01", gotQuery["inicio"])
	assert.Equal(t, "2024-01-31", gotQuery["fim"])
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "banco indisponível"})
	})

	_, err := client.SiloStatistics(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "banco indisponível")
}
