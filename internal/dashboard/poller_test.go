package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joao-cbj/silowatch/internal/gateway"
	"github.com/joao-cbj/silowatch/pkg/config"
)

func TestPollerRefreshesImmediately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/dados/ultimas", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"dispositivo": "silo-1", "timestamp": "2026-03-10T10:00:00Z", "temperatura": 22.5, "umidade": 58.0},
			},
		})
	}))
	defer srv.Close()

	logger := zap.NewNop().Sugar()
	gw := gateway.NewClient(config.GatewayData{BaseURL: srv.URL}, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	p := NewPoller(ctx, &wg, gw, time.Minute, logger)
	p.Start()

	assert.Eventually(t, func() bool {
		readings, _, ok := p.Snapshot()
		return ok && len(readings) == 1 && readings[0].DeviceID == "silo-1"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
}

func TestPollerKeepsSnapshotOnError(t *testing.T) {
	var failing bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fail := failing
		mu.Unlock()
		if fail {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"dispositivo": "silo-1", "timestamp": "2026-03-10T10:00:00Z", "temperatura": 22.5, "umidade": 58.0},
			},
		})
	}))
	defer srv.Close()

	logger := zap.NewNop().Sugar()
	gw := gateway.NewClient(config.GatewayData{BaseURL: srv.URL}, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	p := NewPoller(ctx, &wg, gw, time.Minute, logger)
	p.refresh()

	readings, firstAt, ok := p.Snapshot()
	require.True(t, ok)
	require.Len(t, readings, 1)

	mu.Lock()
	failing = true
	mu.Unlock()

	p.refresh()

	readings, secondAt, ok := p.Snapshot()
	assert.True(t, ok)
	assert.Len(t, readings, 1, "failed refresh must not drop the previous snapshot")
	assert.Equal(t, firstAt, secondAt)
}
