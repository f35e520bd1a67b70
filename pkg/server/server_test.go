package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/tempomaze/pkg/cache"
	"github.com/matzehuels/tempomaze/pkg/pipeline"
)

const problemText = `(define (problem tiny)
  (:domain temporal-maze)
  (:objects c00 c01 - cell a1 - agent)
  (:init
    (agent-at a1 c00)
    (agent-free a1)
    (adjacent c00 c01)
    (adjacent c01 c00))
  (:goal (and (agent-at a1 c01))))
`

const planText = ";;;; Solution Found\n0.000: (move a1 c00 c01) [1.000]\n; Cost: 1.000\n"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, nil)
	ts := httptest.NewServer(New(runner, Options{Defaults: pipeline.Options{DefaultAgent: "a1"}}))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(data)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		t.Errorf("healthz = %d %+v", resp.StatusCode, body)
	}
}

func TestDOT(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, "/v1/dot?rankdir=TB", problemText)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "rankdir=TB") || !strings.Contains(body, `"c00" -> "c01"`) {
		t.Errorf("body:\n%s", body)
	}
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q", got)
	}

	resp, _ = post(t, ts, "/v1/dot?rankdir=TB", problemText)
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q", got)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode string
	}{
		{"empty body", "/v1/dot", "", "INVALID_INPUT"},
		{"bad problem", "/v1/dot", "(define (domain d))", "INVALID_PROBLEM"},
		{"bad rankdir", "/v1/dot?rankdir=up", problemText, "INVALID_FORMAT"},
		{"bad scene json", "/v1/scene", "{", "INVALID_INPUT"},
		{"missing problem", "/v1/scene", "{}", "INVALID_INPUT"},
		{"bad agent", "/v1/scene", `{"problem":"x","agents":["a b"]}`, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d", resp.StatusCode)
			}
			var e errorResponse
			if err := json.Unmarshal([]byte(body), &e); err != nil {
				t.Fatalf("decode %q: %v", body, err)
			}
			if string(e.Code) != tt.wantCode || e.Error == "" {
				t.Errorf("error = %+v, want code %s", e, tt.wantCode)
			}
		})
	}
}

func TestPlan(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, "/v1/plan?source=run.log", planText)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got struct {
		ID      string `json:"id"`
		Source  string `json:"source"`
		Outcome string `json:"outcome"`
		Actions []struct {
			Name string   `json:"name"`
			Args []string `json:"args"`
		} `json:"actions"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID == "" || got.Source != "run.log" || len(got.Actions) != 1 || got.Actions[0].Name != "move" {
		t.Errorf("plan = %+v", got)
	}
}

func TestScene(t *testing.T) {
	ts := newTestServer(t)
	req, _ := json.Marshal(sceneRequest{Problem: problemText, Plan: ptr(planText)})
	resp, body := post(t, ts, "/v1/scene", string(req))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got struct {
		Path []struct {
			Name string `json:"name"`
		} `json:"path"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Path) != 2 || got.Path[1].Name != "c01" {
		t.Errorf("path = %+v", got.Path)
	}
}

func ptr[T any](v T) *T { return &v }
