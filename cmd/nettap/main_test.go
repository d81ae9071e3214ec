package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nettap/internal/config"
	"github.com/neomorfeo/nettap/internal/seed"
)

// isolate runs the test in an empty directory so no stray .env is read,
// with every file the process writes kept under it.
func isolate(t *testing.T, port string) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORT", port)
	t.Setenv("DATABASE_TYPE", config.DatabaseMemory)
	t.Setenv("QUEUE_DATABASE_PATH", dir+"/queue.db")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func get(t *testing.T, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	return http.DefaultClient.Do(req)
}

// TestRun exercises the real run() function end-to-end: storage, River,
// HTTP server and graceful shutdown.
func TestRun(t *testing.T) {
	isolate(t, "19876")

	errCh := make(chan error, 1)
	go func() { errCh <- run() }()

	serverURL := "http://localhost:19876"
	ready := false
	for range 50 {
		resp, err := get(t, serverURL+"/api/health")
		if err == nil {
			resp.Body.Close()
			ready = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.True(t, ready, "server did not start within 5 seconds")

	resp, err := get(t, serverURL+"/api/health")
	require.NoError(t, err)
	var health struct {
		Data struct {
			Status   string `json:"status"`
			Database struct {
				Type string `json:"type"`
			} `json:"database"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Data.Status)
	assert.Equal(t, config.DatabaseMemory, health.Data.Database.Type)

	// A lead submission goes through the queue-backed notifier.
	body := fmt.Sprintf(`{"fullName":"Aysel","phone":"+994501234567","cityId":%q,"districtId":%q,"tariffId":%q}`,
		seed.CityBaku, seed.DistrictNasimi, seed.TariffVDSL30)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, serverURL+"/api/leads", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	proc, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, proc.Signal(syscall.SIGINT))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not exit within 10 seconds")
	}
}

// TestRun_InvalidQueuePath verifies run() fails when the job database
// cannot be opened.
func TestRun_InvalidQueuePath(t *testing.T) {
	isolate(t, "19877")
	t.Setenv("QUEUE_DATABASE_PATH", "/nonexistent/path/queue.db")

	assert.Error(t, run())
}

func TestRun_InvalidConfig(t *testing.T) {
	isolate(t, "19878")
	t.Setenv("JWT_ACCESS_TTL", "soon")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_TTL")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, config.Config{LogFormat: "json", LogLevel: slog.LevelInfo}).Info("hello", "k", "v")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])

	buf.Reset()
	text := newLogger(&buf, config.Config{LogFormat: "text", LogLevel: slog.LevelWarn})
	text.Info("dropped")
	text.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}
