package runner

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Step actions
const (
	ActionRead    = "read"
	ActionRundown = "rundown"
	ActionText    = "text"
	ActionRange   = "range"
	// ActionRender requests a background render and waits for the worker to
	// fill the render cache.
	ActionRender = "render"
)

// TestSuite defines one uploaded log and the reads made against it.
type TestSuite struct {
	Name string `json:"name"`
	// ContentType is sent with the upload; empty means application/json.
	ContentType string `json:"content_type,omitempty"`
	// Document is uploaded as-is when ContentType is JSON.
	Document json.RawMessage `json:"document,omitempty"`
	// DocumentFile is read relative to the cases directory and takes
	// precedence over Document.
	DocumentFile string       `json:"document_file,omitempty"`
	Create       Expectations `json:"expect_create"`
	Steps        []TestStep   `json:"steps,omitempty"`

	body []byte
}

// TestStep defines a single request against the uploaded log.
type TestStep struct {
	Name   string       `json:"name,omitempty"`
	Action string       `json:"action"`
	Format string       `json:"format,omitempty"`
	Start  string       `json:"start,omitempty"`
	End    string       `json:"end,omitempty"`
	Expect Expectations `json:"expect"`
}

// Expectations defines what to check after a request
type Expectations struct {
	Status     *int `json:"status,omitempty"`
	Accepted   *int `json:"accepted,omitempty"`
	Errors     *int `json:"errors,omitempty"`
	Blocks     *int `json:"blocks,omitempty"`
	TotalTurns *int `json:"total_turns,omitempty"`

	// Response Analysis
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Suite    TestSuite
	Results  []TestResult
	Error    error
	Duration time.Duration
	LogID    uuid.UUID
}
