package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/content"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
)

func testServer(t *testing.T) (*Server, *answers.Store) {
	t.Helper()
	bundle, err := content.Load("")
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	linter, err := lint.Compile(bundle.Rules)
	if err != nil {
		t.Fatalf("lint.Compile: %v", err)
	}
	store := answers.NewStore("")
	return New(bundle.Flow, store, linter, audit.Open("")), store
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, srv *Server, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec.Code, env
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	code, env := doRequest(t, srv, http.MethodGet, "/health", "")
	if code != http.StatusOK || !env.OK {
		t.Fatalf("code = %d, env = %+v", code, env)
	}
}

func TestHealthRejectsPost(t *testing.T) {
	srv, _ := testServer(t)
	code, env := doRequest(t, srv, http.MethodPost, "/health", "")
	if code != http.StatusMethodNotAllowed || env.OK {
		t.Fatalf("code = %d, env = %+v", code, env)
	}
}

func TestAnswersMerge(t *testing.T) {
	srv, store := testServer(t)
	code, env := doRequest(t, srv, http.MethodPost, "/api/answers",
		`{"vision.target_group": "Case managers", "soo_review_gate.check_no_tasks": true}`)
	if code != http.StatusOK || !env.OK {
		t.Fatalf("code = %d, env = %+v", code, env)
	}
	if got := store.Get("vision", "target_group", ""); got != "Case managers" {
		t.Errorf("target_group = %q", got)
	}
	if !store.GetBool("soo_review_gate", "check_no_tasks", false) {
		t.Error("bool answer lost")
	}
}

func TestAnswersMergeRejectsUnknownKeys(t *testing.T) {
	srv, store := testServer(t)
	code, env := doRequest(t, srv, http.MethodPost, "/api/answers",
		`{"vision.target_group": "ok", "ghost.field": "nope"}`)
	if code != http.StatusBadRequest || env.OK {
		t.Fatalf("code = %d, env = %+v", code, env)
	}
	if got := store.Get("vision", "target_group", ""); got != "" {
		t.Errorf("partial merge applied: %q", got)
	}
}

func TestAnswersGet(t *testing.T) {
	srv, store := testServer(t)
	store.Set("vision", "vision", "change for users")
	code, env := doRequest(t, srv, http.MethodGet, "/api/answers", "")
	if code != http.StatusOK || !env.OK {
		t.Fatalf("code = %d", code)
	}
	var values map[string]any
	if err := json.Unmarshal(env.Data, &values); err != nil {
		t.Fatal(err)
	}
	if values["vision.vision"] != "change for users" {
		t.Errorf("values = %v", values)
	}
}

func TestSession(t *testing.T) {
	srv, store := testServer(t)
	store.Set("vision", "vision", "v")
	store.Set("vision", "needs", "n")
	code, env := doRequest(t, srv, http.MethodGet, "/api/session", "")
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	var data struct {
		Steps []struct {
			ID       string `json:"id"`
			Answered int    `json:"answered"`
			Fields   int    `json:"fields"`
		} `json:"steps"`
		TotalAnswers int `json:"totalAnswers"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.TotalAnswers != 2 {
		t.Errorf("TotalAnswers = %d", data.TotalAnswers)
	}
	for _, s := range data.Steps {
		if s.ID == "vision" && (s.Answered != 2 || s.Fields != 5) {
			t.Errorf("vision step = %+v", s)
		}
	}
}

func TestLintEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	code, env := doRequest(t, srv, http.MethodPost, "/api/lint", `{"text": "The vendor must comply."}`)
	if code != http.StatusOK || !env.OK {
		t.Fatalf("code = %d", code)
	}
	var res lint.Result
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if !res.HasErrors || res.ErrorCount != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestArtifactRouteRequiresDraft(t *testing.T) {
	srv, _ := testServer(t)
	code, env := doRequest(t, srv, http.MethodGet, "/api/artifacts/soo.md", "")
	if code != http.StatusConflict || env.OK {
		t.Fatalf("code = %d, env = %+v", code, env)
	}
}

func TestArtifactRouteServesFiles(t *testing.T) {
	srv, store := testServer(t)
	store.Set("soo_output", "soo_draft", "# SOO\n\nThe team will deliver outcomes.")
	srv.Prompts = func() string { return "prompt body" }

	req := httptest.NewRequest(http.MethodGet, "/api/artifacts/soo.md", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, "The team will deliver outcomes.") {
		t.Errorf("soo.md body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/artifacts/source/prompts.txt", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "prompt body" {
		t.Errorf("prompts.txt: code = %d, body = %q", rec.Code, rec.Body.String())
	}

	code, env := doRequest(t, srv, http.MethodGet, "/api/artifacts/nope.txt", "")
	if code != http.StatusNotFound || env.OK {
		t.Errorf("unknown artifact: code = %d, env = %+v", code, env)
	}
}

func TestAuditEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	srv.log.RecordEvent("ai_call_success", nil)
	code, env := doRequest(t, srv, http.MethodGet, "/api/audit", "")
	if code != http.StatusOK || !env.OK {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(string(env.Data), "ai_call_success") {
		t.Errorf("audit data = %s", env.Data)
	}
}
