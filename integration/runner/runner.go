package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running ascension-log API
// with at least one render worker attached.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	// KeepLogs skips deleting the uploaded log after the suite.
	KeepLogs bool
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file and resolves its document.
func LoadTestSuite(filename string, casesDir string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	switch {
	case suite.DocumentFile != "":
		body, err := os.ReadFile(filepath.Join(casesDir, suite.DocumentFile))
		if err != nil {
			return TestSuite{}, fmt.Errorf("failed to read document for %s: %w", filename, err)
		}
		suite.body = body
	case len(suite.Document) > 0:
		suite.body = suite.Document
	default:
		return TestSuite{}, fmt.Errorf("test file %s has no document", filename)
	}
	if suite.ContentType == "" {
		suite.ContentType = "application/json"
	}
	return suite, nil
}

// RunSuite uploads the suite's log and executes its steps against it
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Suite:   suite,
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	logID, err := r.createLog(ctx, suite)
	if err != nil {
		if logID != uuid.Nil && !r.KeepLogs {
			_ = r.deleteLog(ctx, logID)
		}
		result.Error = fmt.Errorf("failed to create log: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.LogID = logID
	if logID == uuid.Nil {
		// the upload was expected to fail; nothing left to read
		result.Duration = time.Since(start)
		return result, nil
	}
	if !r.KeepLogs {
		defer func() {
			if err := r.deleteLog(context.WithoutCancel(ctx), logID); err != nil {
				r.Logger("    failed to delete log %s: %v", logID, err)
			}
		}()
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, logID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *Runner) do(ctx context.Context, method, path string, body []byte, contentType string) (*response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// createLog uploads the document. It returns uuid.Nil when the upload failed
// as the suite expected.
func (r *Runner) createLog(ctx context.Context, suite TestSuite) (uuid.UUID, error) {
	resp, err := r.do(ctx, http.MethodPost, "/v1/logs", suite.body, suite.ContentType)
	if err != nil {
		return uuid.Nil, err
	}
	if err := checkStatus(suite.Create, resp.status, http.StatusCreated); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", err, string(resp.body))
	}
	if resp.status != http.StatusCreated {
		return uuid.Nil, nil
	}

	var created struct {
		ID       uuid.UUID `json:"id"`
		Accepted int       `json:"accepted"`
		Errors   []string  `json:"errors"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode created log: %w", err)
	}

	exp := suite.Create
	if exp.Accepted != nil && created.Accepted != *exp.Accepted {
		return created.ID, fmt.Errorf("expected %d accepted records, got %d", *exp.Accepted, created.Accepted)
	}
	if exp.Errors != nil && len(created.Errors) != *exp.Errors {
		return created.ID, fmt.Errorf("expected %d record errors, got %d: %v", *exp.Errors, len(created.Errors), created.Errors)
	}
	return created.ID, nil
}

func (r *Runner) deleteLog(ctx context.Context, logID uuid.UUID) error {
	resp, err := r.do(ctx, http.MethodDelete, "/v1/logs/"+logID.String(), nil, "")
	if err != nil {
		return err
	}
	if resp.status != http.StatusNoContent {
		return fmt.Errorf("delete returned %d: %s", resp.status, string(resp.body))
	}
	return nil
}

// executeStep performs one request and checks its expectations
func (r *Runner) executeStep(ctx context.Context, logID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	fail := func(err error) TestResult {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout+RenderTimeout)
	defer cancel()

	if step.Action == ActionRender {
		if _, err := PostRender(ctx, r.Client, r.BaseURL, logID, step.Format); err != nil {
			return fail(err)
		}
		format := step.Format
		if format == "" {
			format = "plain"
		}
		text, err := PollForRender(ctx, r.Client, r.BaseURL, logID, format)
		if err != nil {
			return fail(err)
		}
		result.ResponseText = text
		if err := checkText(step.Expect, text); err != nil {
			return fail(fmt.Errorf("expectation failed: %w", err))
		}
		result.Success = true
		result.Duration = time.Since(start)
		return result
	}

	path, err := stepPath(logID, step)
	if err != nil {
		return fail(err)
	}
	resp, err := r.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return fail(err)
	}
	result.ResponseText = string(resp.body)
	if err := checkStatus(step.Expect, resp.status, http.StatusOK); err != nil {
		return fail(fmt.Errorf("%w: %s", err, string(resp.body)))
	}
	if resp.status == http.StatusOK {
		if err := checkBody(step, resp.body); err != nil {
			return fail(fmt.Errorf("expectation failed: %w", err))
		}
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

func stepPath(logID uuid.UUID, step TestStep) (string, error) {
	base := "/v1/logs/" + logID.String()
	q := url.Values{}
	if step.Format != "" {
		q.Set("format", step.Format)
	}
	if step.Start != "" {
		q.Set("start", step.Start)
	}
	if step.End != "" {
		q.Set("end", step.End)
	}

	var path string
	switch step.Action {
	case ActionRead:
		path = base
	case ActionRundown, ActionText, ActionRange:
		path = base + "/" + step.Action
	default:
		return "", fmt.Errorf("unknown step action %q", step.Action)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return path, nil
}

func checkStatus(exp Expectations, got, def int) error {
	want := def
	if exp.Status != nil {
		want = *exp.Status
	}
	if got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

// checkBody checks the structured expectations of a JSON response, then the
// text expectations against the raw body.
func checkBody(step TestStep, body []byte) error {
	exp := step.Expect
	switch step.Action {
	case ActionRundown:
		var rd struct {
			Blocks []string `json:"blocks"`
		}
		if err := json.Unmarshal(body, &rd); err != nil {
			return fmt.Errorf("failed to decode rundown: %w", err)
		}
		if exp.Blocks != nil && len(rd.Blocks) != *exp.Blocks {
			return fmt.Errorf("expected %d rundown blocks, got %d", *exp.Blocks, len(rd.Blocks))
		}
		return checkText(exp, strings.Join(rd.Blocks, ""))
	case ActionRead, ActionRange:
		var sum struct {
			Summary struct {
				Turns struct {
					Total int `json:"total"`
				} `json:"turns"`
			} `json:"summary"`
		}
		if err := json.Unmarshal(body, &sum); err != nil {
			return fmt.Errorf("failed to decode summary: %w", err)
		}
		if exp.TotalTurns != nil && sum.Summary.Turns.Total != *exp.TotalTurns {
			return fmt.Errorf("expected %d total turns, got %d", *exp.TotalTurns, sum.Summary.Turns.Total)
		}
	}
	return checkText(exp, string(body))
}

func checkText(exp Expectations, text string) error {
	for _, s := range exp.ResponseContains {
		if !strings.Contains(text, s) {
			return fmt.Errorf("response does not contain %q", s)
		}
	}
	for _, s := range exp.ResponseNotContains {
		if strings.Contains(text, s) {
			return fmt.Errorf("response contains %q", s)
		}
	}
	if exp.ResponseRegex != "" {
		re, err := regexp.Compile(exp.ResponseRegex)
		if err != nil {
			return fmt.Errorf("invalid response_regex %q: %w", exp.ResponseRegex, err)
		}
		if !re.MatchString(text) {
			return fmt.Errorf("response does not match %q", exp.ResponseRegex)
		}
	}
	return nil
}
