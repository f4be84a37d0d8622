//go:build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-engine/integration/runner"
	"github.com/jwebster45206/npc-engine/internal/bootstrap"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/handlers"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")

// newLocalServer starts an api backed by the mock provider and a fresh
// default world.
func newLocalServer(t *testing.T) string {
	t.Helper()
	cfg := config.Defaults()
	cfg.LLMProvider = "mock"
	cfg.AvatarDir = t.TempDir()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := bootstrap.Build(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })

	mux := http.NewServeMux()
	mux.Handle("/v1/chat", handlers.NewChatHandler(engine.Controller, log))
	mux.Handle("/health", handlers.NewHealthHandler(engine.Cache, cfg.LLMProvider, log))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

func TestIntegrationSuites(t *testing.T) {
	apiBaseURL := os.Getenv("API_BASE_URL")

	testFiles, err := discoverTestFiles("cases")
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	if len(testFiles) == 0 {
		t.Fatal("No test files found in cases directory")
	}

	for _, file := range testFiles {
		suite, err := runner.LoadTestSuite(file)
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}

		t.Run(suite.Name, func(t *testing.T) {
			baseURL := apiBaseURL
			if baseURL == "" {
				// every suite starts from a fresh world
				baseURL = newLocalServer(t)
			}

			testRunner := runner.NewRunner(baseURL)
			testRunner.ErrorHandlingMode = runner.ErrorHandlingMode(*errFlag)
			testRunner.Logger = func(format string, args ...interface{}) {
				fmt.Printf(format+"\n", args...)
			}

			fmt.Printf("Running %s (%s)\n", suite.Name, filepath.Base(file))
			result := testRunner.RunSuite(context.Background(), suite)
			for _, r := range result.Results {
				if !r.Success && !r.IsReset {
					t.Errorf("%s: %v", r.StepName, r.Error)
				}
			}
			fmt.Printf("  %d passed, %d failed in %s\n", result.Passed, result.Failed, result.TotalTime)
		})
	}
}

func discoverTestFiles(dir string) ([]string, error) {
	if *caseFlag != "" {
		name := *caseFlag
		if !strings.HasSuffix(name, ".json") {
			name += ".json"
		}
		return []string{filepath.Join(dir, name)}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
