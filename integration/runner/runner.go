package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/chat"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running npc-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 90 * time.Second},
		Timeout:           30 * time.Second,
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}

// RunSuite executes a complete test suite, carrying the transcript from
// step to step the way a chat client would.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) TestRunResult {
	start := time.Now()
	result := TestRunResult{
		Suite:   suite,
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	transcript := append([]chat.Line(nil), suite.Transcript...)
	for i, step := range suite.Steps {
		stepName := step.Name
		if stepName == "" {
			stepName = fmt.Sprintf("step %d", i+1)
		}

		if step.UserPrompt == ResetTranscriptPrompt {
			transcript = append([]chat.Line(nil), suite.Transcript...)
			result.Results = append(result.Results, TestResult{TestName: suite.Name, StepName: stepName, Success: true, IsReset: true})
			continue
		}

		stepResult, next := r.runStep(ctx, transcript, step)
		stepResult.TestName = suite.Name
		stepResult.StepName = stepName
		result.Results = append(result.Results, stepResult)

		if stepResult.Success {
			result.Passed++
			transcript = next
			r.logf("  ✓ %s (%s)", stepName, stepResult.Duration.Round(time.Millisecond))
			continue
		}

		result.Failed++
		r.logf("  ✗ %s: %v", stepName, stepResult.Error)
		if r.ErrorHandlingMode == ErrorHandlingExit {
			break
		}
		if next != nil {
			transcript = next
		}
	}

	result.TotalTime = time.Since(start)
	return result
}

func (r *Runner) runStep(ctx context.Context, transcript []chat.Line, step TestStep) (TestResult, []chat.Line) {
	start := time.Now()
	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	code, resp, err := r.postChat(stepCtx, transcript, step.UserPrompt)
	result := TestResult{Duration: time.Since(start)}
	if err != nil {
		result.Error = err
		return result, nil
	}
	result.ResponseText = resp.Message

	if err := checkExpectations(step.Expectations, code, resp); err != nil {
		result.Error = err
		return result, resp.Transcript
	}
	result.Success = true
	return result, resp.Transcript
}

func (r *Runner) postChat(ctx context.Context, transcript []chat.Line, message string) (int, chat.ChatResponse, error) {
	body, err := json.Marshal(chat.ChatRequest{Transcript: transcript, Message: message})
	if err != nil {
		return 0, chat.ChatResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return 0, chat.ChatResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, chat.ChatResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, chat.ChatResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chat.ChatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return resp.StatusCode, chat.ChatResponse{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(raw))
	}
	return resp.StatusCode, chatResp, nil
}

func checkExpectations(exp Expectations, code int, resp chat.ChatResponse) error {
	var failures []string

	wantCode := exp.HTTPStatus
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if code != wantCode {
		failures = append(failures, fmt.Sprintf("http status: expected %d, got %d (%s)", wantCode, code, resp.Error))
	}

	for name, want := range exp.Status {
		got, ok := resp.Status[name]
		if !ok {
			failures = append(failures, fmt.Sprintf("status: %s missing", name))
		} else if got != want {
			failures = append(failures, fmt.Sprintf("status: %s expected %d, got %d", name, want, got))
		}
	}

	if exp.TranscriptLen != nil && len(resp.Transcript) != *exp.TranscriptLen {
		failures = append(failures, fmt.Sprintf("transcript length: expected %d, got %d", *exp.TranscriptLen, len(resp.Transcript)))
	}

	var last chat.Line
	if n := len(resp.Transcript); n > 0 {
		last = resp.Transcript[n-1]
	}
	if exp.LastSpeaker != "" && last.Speaker != exp.LastSpeaker {
		failures = append(failures, fmt.Sprintf("last speaker: expected %q, got %q", exp.LastSpeaker, last.Speaker))
	}
	for _, s := range exp.ResponseContains {
		if !strings.Contains(last.Text, s) {
			failures = append(failures, fmt.Sprintf("response should contain %q: %q", s, last.Text))
		}
	}
	for _, s := range exp.ResponseNotContains {
		if strings.Contains(last.Text, s) {
			failures = append(failures, fmt.Sprintf("response should not contain %q: %q", s, last.Text))
		}
	}
	if exp.ResponseRegex != "" {
		re, err := regexp.Compile(exp.ResponseRegex)
		if err != nil {
			failures = append(failures, fmt.Sprintf("invalid response_regex: %v", err))
		} else if !re.MatchString(last.Text) {
			failures = append(failures, fmt.Sprintf("response should match %q: %q", exp.ResponseRegex, last.Text))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%s", strings.Join(failures, "; "))
	}
	return nil
}
