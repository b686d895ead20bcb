package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/sandbox"
)

type fakeRunner struct {
	result *sandbox.RunResult
	err    error
	last   sandbox.Request
}

func (f *fakeRunner) Run(_ context.Context, req sandbox.Request) (*sandbox.RunResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRunner) Runtimes() []sandbox.Runtime {
	return []sandbox.Runtime{{Language: "python", Available: true}}
}

func newCodeRouter(repo *fakeRepo, runner sandbox.Runner) http.Handler {
	return serveAPI(repo, func(api chi.Router) {
		NewCodeHandler(NewHandler(repo), runner, metrics.New()).RegisterRoutes(api)
	})
}

func TestExecuteCodeRequiresCode(t *testing.T) {
	router := newCodeRouter(newFakeRepo(), &fakeRunner{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/code/execute", map[string]string{
		"language": "python",
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestExecuteCodeUnsupportedLanguage(t *testing.T) {
	runner := &fakeRunner{err: sandbox.ErrUnsupportedLanguage}
	router := newCodeRouter(newFakeRepo(), runner)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/code/execute", map[string]string{
		"language": "cobol",
		"code":     "DISPLAY 'HI'.",
	}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestExecuteCode(t *testing.T) {
	runner := &fakeRunner{result: &sandbox.RunResult{
		Stdout:   "hi\n",
		ExitCode: 0,
		Duration: 120 * time.Millisecond,
	}}
	router := newCodeRouter(newFakeRepo(), runner)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/code/execute", map[string]string{
		"language": "python",
		"code":     "print('hi')",
		"stdin":    "unused",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got executeCodeResponse
	decodeJSON(t, rr, &got)
	if got.Stdout != "hi\n" {
		t.Errorf("expected stdout %q, got %q", "hi\n", got.Stdout)
	}
	if got.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", got.ExitCode)
	}
	if got.DurationMS != 120 {
		t.Errorf("expected duration 120ms, got %d", got.DurationMS)
	}
	if runner.last.Stdin != "unused" {
		t.Errorf("expected stdin to reach the runner, got %q", runner.last.Stdin)
	}
}

func TestExecuteCodeTimeout(t *testing.T) {
	runner := &fakeRunner{result: &sandbox.RunResult{
		Stdout:   "partial",
		ExitCode: -1,
		TimedOut: true,
		Duration: sandbox.RunTimeout,
	}}
	router := newCodeRouter(newFakeRepo(), runner)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/api/code/execute", map[string]string{
		"language": "python",
		"code":     "while True: pass",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var got executeCodeResponse
	decodeJSON(t, rr, &got)
	if !got.TimedOut {
		t.Error("expected timedOut to be set")
	}
	if got.Stdout != "partial" {
		t.Errorf("expected partial output preserved, got %q", got.Stdout)
	}
}

func TestRuntimes(t *testing.T) {
	router := newCodeRouter(newFakeRepo(), &fakeRunner{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodGet, "/api/code/runtimes", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var runtimes []sandbox.Runtime
	decodeJSON(t, rr, &runtimes)
	if len(runtimes) != 1 || runtimes[0].Language != "python" {
		t.Errorf("unexpected runtimes: %+v", runtimes)
	}
}
