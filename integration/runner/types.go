package runner

import (
	"time"

	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// Special user prompt values that trigger non-chat actions
const (
	// ResetTranscriptPrompt clears the client-side transcript. World state
	// on the server is untouched.
	ResetTranscriptPrompt = "RESET_TRANSCRIPT"
)

// TestSuite defines a complete integration test scenario
type TestSuite struct {
	Name       string      `json:"name"`
	Transcript []chat.Line `json:"transcript,omitempty"` // starting transcript
	Steps      []TestStep  `json:"steps"`
}

// TestStep defines a single player input and its expected outcomes
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	UserPrompt   string       `json:"user_prompt"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Status values by display name; only listed names are checked
	Status map[string]int `json:"status,omitempty"`

	// Transcript analysis
	TranscriptLen *int   `json:"transcript_len,omitempty"`
	LastSpeaker   string `json:"last_speaker,omitempty"`

	// Response analysis on the last transcript line
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`

	// HTTPStatus overrides the expected 200
	HTTPStatus int `json:"http_status,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Suite     TestSuite
	Results   []TestResult
	Passed    int
	Failed    int
	TotalTime time.Duration
}
