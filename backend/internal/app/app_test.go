package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"depot-records/backend/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, BodyLimit: 1 << 20, UploadLimit: 1 << 20},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Log:      config.LogConfig{Level: "info"},
		Engine: config.EngineConfig{
			IDYearNamespace: true,
			NCRReopen:       "flagged",
			SequenceBackend: config.SequenceMemory,
			IDAttempts:      4,
		},
	}
}

func TestNew_Memory(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.DB != nil || a.Redis != nil {
		t.Error("memory config should not open connections")
	}
	if err := a.Migrate(); err == nil {
		t.Error("Migrate should fail without a SQL database")
	}

	r := a.Router()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/vendors", strings.NewReader(`{"name":"Wabtec"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "buyer")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create vendor: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"vendorCode":"VEN-0001"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestNew_SQLite(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database = config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:", AutoMigrate: true}
	cfg.Engine.SequenceBackend = config.SequenceDatabase

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	// 编号年份取自系统时钟
	want := fmt.Sprintf("LTR-%d-0001", time.Now().UTC().Year())
	rec, err := a.Service.Records.Create(context.Background(), "letter", map[string]any{
		"direction":    "Incoming",
		"letterDate":   "2025-06-02",
		"subject":      "Bogie overhaul schedule",
		"counterparty": "BEML",
	}, "clerk")
	if err != nil {
		t.Fatalf("create letter: %v", err)
	}
	if rec.Identifier() != want {
		t.Errorf("expected %s, got %s", want, rec.Identifier())
	}
}
