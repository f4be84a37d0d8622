package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jwebster45206/npc-engine/internal/services"
)

// downCache is a memory cache whose Ping always fails.
type downCache struct {
	*services.MemoryCache
}

func (downCache) Ping(ctx context.Context) error {
	return errors.New("connection failed")
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	tests := []struct {
		name           string
		cache          services.Cache
		expectedStatus int
		expectedHealth string
		expectedCache  string
	}{
		{
			name:           "all healthy",
			cache:          services.NewMemoryCache(),
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedCache:  "healthy",
		},
		{
			name:           "unhealthy cache",
			cache:          downCache{services.NewMemoryCache()},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedCache:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.cache, "mock", logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}

			if response.Service != "npc-engine" {
				t.Errorf("Expected service 'npc-engine', got '%s'", response.Service)
			}

			if got := response.Components["cache"]; got != tt.expectedCache {
				t.Errorf("Expected cache status '%s', got '%v'", tt.expectedCache, got)
			}

			if got := response.Components["llm_provider"]; got != "mock" {
				t.Errorf("Expected llm_provider 'mock', got '%v'", got)
			}
		})
	}
}
