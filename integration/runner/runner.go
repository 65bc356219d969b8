// Package runner drives scripted walkthroughs against a running game server
// over its HTTP API. It has no hooks into the process under test; everything
// it checks is observable by a real client.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/solhwan/pointclick/internal/handlers"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes test suites against a game server API.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode

	// SettleDelay is how long to wait after a tap before reading state,
	// giving the server's game loop time to walk the player and resolve
	// the interaction.
	SettleDelay time.Duration
}

// NewRunner creates a runner for the API at baseURL.
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(format string, args ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
		SettleDelay:       2 * time.Second,
	}
}

// RunSuite executes every step of the suite in order and returns per-step
// results. In exit mode the first failing step ends the run.
func (r *Runner) RunSuite(ctx context.Context, suite *TestSuite) ([]TestResult, error) {
	r.Logger("Suite: %s (%d steps)", suite.Name, len(suite.Steps))

	// Every suite starts from a fresh game.
	if err := r.post(ctx, "/v1/reset", nil); err != nil {
		return nil, fmt.Errorf("reset before suite: %w", err)
	}

	var results []TestResult
	for i, step := range suite.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}

		result := r.runStep(ctx, name, step)
		results = append(results, result)

		if result.Passed {
			r.Logger("  PASS %s", name)
		} else {
			r.Logger("  FAIL %s", name)
			for _, f := range result.Failures {
				r.Logger("       %s", f)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
		}
	}
	return results, nil
}

func (r *Runner) runStep(ctx context.Context, name string, step TestStep) TestResult {
	result := TestResult{Step: name}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var err error
	switch {
	case step.Op != "":
		err = r.runOp(stepCtx, step.Op)
	case step.Input != nil:
		err = r.post(stepCtx, "/v1/interact", step.Input)
		if err == nil && step.Input.Type == "tap" {
			// Walking is asynchronous on the server's game loop.
			time.Sleep(r.SettleDelay)
		}
	default:
		err = fmt.Errorf("step has neither op nor input")
	}
	if err != nil {
		result.Failures = append(result.Failures, err.Error())
		return result
	}

	state, err := r.fetchState(stepCtx)
	if err != nil {
		result.Failures = append(result.Failures, fmt.Sprintf("fetch state: %v", err))
		return result
	}

	result.Failures = checkExpectations(step.Expect, state)
	result.Passed = len(result.Failures) == 0
	return result
}

func (r *Runner) runOp(ctx context.Context, op string) error {
	switch op {
	case "save", "load", "reset":
		return r.post(ctx, "/v1/"+op, nil)
	default:
		return fmt.Errorf("unknown op %q", op)
	}
}

func (r *Runner) post(ctx context.Context, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, string(data))
	}
	return nil
}

func (r *Runner) fetchState(ctx context.Context) (*handlers.SessionState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/v1/state", nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	var state handlers.SessionState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

func checkExpectations(expect Expectations, state *handlers.SessionState) []string {
	var failures []string

	if expect.Scene != nil && state.Scene != *expect.Scene {
		failures = append(failures, fmt.Sprintf("scene = %q, want %q", state.Scene, *expect.Scene))
	}

	have := make(map[string]bool, len(state.Inventory))
	var haveIDs []string
	for _, item := range state.Inventory {
		have[item.ID] = true
		haveIDs = append(haveIDs, item.ID)
	}

	if expect.Inventory != nil {
		want := append([]string(nil), expect.Inventory...)
		got := append([]string(nil), haveIDs...)
		sort.Strings(want)
		sort.Strings(got)
		if strings.Join(want, ",") != strings.Join(got, ",") {
			failures = append(failures, fmt.Sprintf("inventory = %v, want %v", got, want))
		}
	}
	for _, id := range expect.HasItems {
		if !have[id] {
			failures = append(failures, fmt.Sprintf("inventory missing %q", id))
		}
	}
	for _, id := range expect.MissingItems {
		if have[id] {
			failures = append(failures, fmt.Sprintf("inventory should not contain %q", id))
		}
	}

	if expect.SelectedItem != nil && state.Selected != *expect.SelectedItem {
		failures = append(failures, fmt.Sprintf("selected = %q, want %q", state.Selected, *expect.SelectedItem))
	}
	if expect.DialogState != nil && string(state.DialogState) != *expect.DialogState {
		failures = append(failures, fmt.Sprintf("dialog state = %q, want %q", state.DialogState, *expect.DialogState))
	}

	for _, name := range expect.FlagsTrue {
		if !flagTruthy(state.Flags[name]) {
			failures = append(failures, fmt.Sprintf("flag %q = %v, want true", name, state.Flags[name]))
		}
	}
	for _, name := range expect.FlagsFalse {
		if flagTruthy(state.Flags[name]) {
			failures = append(failures, fmt.Sprintf("flag %q = %v, want false", name, state.Flags[name]))
		}
	}

	return failures
}

func flagTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0"
	case float64:
		return val != 0
	default:
		return true
	}
}
