//go:build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/ascension-log/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")
var keepFlag = flag.Bool("keep", false, "Keep uploaded logs after the run")

func TestMain(m *testing.M) {
	fmt.Printf("Running Ascension Log Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", baseURL())
	os.Exit(m.Run())
}

func baseURL() string {
	if u := os.Getenv("API_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func newRunner(t *testing.T) *runner.Runner {
	t.Helper()
	if *errFlag != "exit" && *errFlag != "continue" {
		t.Fatalf("Invalid -err flag value: %s (must be 'exit' or 'continue')", *errFlag)
	}
	r := runner.NewRunner(baseURL())
	r.Timeout = time.Duration(getIntEnv("TEST_TIMEOUT_SECONDS", 30)) * time.Second
	r.ErrorHandlingMode = runner.ErrorHandlingMode(*errFlag)
	r.KeepLogs = *keepFlag
	r.Logger = func(format string, args ...interface{}) {
		fmt.Printf(format+"\n", args...)
	}
	return r
}

func TestIntegrationSuites(t *testing.T) {
	if *caseFlag != "" {
		t.Skip("Skipping bulk run (-case given)")
	}
	files, err := discoverTestFiles("cases")
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("No test files found in cases directory")
	}
	runFiles(t, newRunner(t), files)
}

// TestSingleSuite runs the cases named by -case, comma-separated.
func TestSingleSuite(t *testing.T) {
	if *caseFlag == "" {
		t.Skip("Skipping single suite test (use -case flag to run)")
	}
	var files []string
	for _, name := range strings.Split(*caseFlag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasSuffix(name, ".json") {
			name += ".json"
		}
		files = append(files, filepath.Join("cases", name))
	}
	if len(files) == 0 {
		t.Fatalf("No valid test cases found in -case flag: %s", *caseFlag)
	}
	runFiles(t, newRunner(t), files)
}

func runFiles(t *testing.T, r *runner.Runner, files []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var failed []string
	passed := 0
	for i, file := range files {
		suite, err := runner.LoadTestSuite(file, "cases")
		if err != nil {
			t.Errorf("[%d/%d] Failed to load test suite %s: %v", i+1, len(files), file, err)
			failed = append(failed, fmt.Sprintf("%s: load error", file))
			continue
		}

		t.Logf("[%d/%d] Starting test suite: %s (%d steps)", i+1, len(files), suite.Name, len(suite.Steps))
		result, err := r.RunSuite(ctx, suite)
		if err != nil && result.Error == nil {
			result.Error = err
		}
		t.Logf("Log ID: %s", result.LogID)

		if result.Error != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", suite.Name, result.Error))
			t.Errorf("[%d/%d] FAILED: Test suite '%s' failed: %v", i+1, len(files), suite.Name, result.Error)
			continue
		}
		passed++
		t.Logf("[%d/%d] PASSED: Test suite '%s' completed in %v", i+1, len(files), suite.Name, result.Duration)
		for _, step := range result.Results {
			t.Logf("   ✓ %s (%v)", step.StepName, step.Duration)
		}
	}

	t.Logf("\nIntegration Test Summary:")
	t.Logf("   Passed: %d", passed)
	t.Logf("   Failed: %d", len(failed))
	if len(failed) > 0 {
		for _, f := range failed {
			t.Logf("   - %s", f)
		}
		t.Fatalf("Integration tests failed")
	}
}

// discoverTestFiles lists case files. Uploaded documents kept next to them
// use other extensions.
func discoverTestFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func getIntEnv(name string, defaultValue int) int {
	str := os.Getenv(name)
	if str == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultValue
	}
	return val
}
