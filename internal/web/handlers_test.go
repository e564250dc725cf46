package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seqlab/biolapse/internal/hw/camera"
	"github.com/seqlab/biolapse/internal/journal"
	"github.com/seqlab/biolapse/internal/logic/course"
	"github.com/seqlab/biolapse/internal/store"
)

type testEnv struct {
	server  *Server
	store   *store.Store
	journal *journal.Journal
	dir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	st := store.New(filepath.Join(dir, "biolapse-state.yaml"))
	j, err := journal.Open(filepath.Join(dir, "captures.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })

	return &testEnv{
		server:  NewServer("127.0.0.1:0", st, j),
		store:   st,
		journal: j,
		dir:     dir,
	}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func (e *testEnv) initSession(t *testing.T) {
	t.Helper()
	err := e.store.Save(store.State{
		Profile: camera.Profile{ISO: 100, ShutterSpeedUs: 1000000, GainRed: 1.5, GainBlue: 1.5},
		Session: store.Session{
			Name:      "plate42",
			OutputDir: filepath.Join(e.dir, "plate42"),
			StartedAt: time.Date(2026, 8, 23, 14, 37, 5, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestSession_NotInitialized(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/api/session")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSession_ReportsProfileAndStats(t *testing.T) {
	env := newTestEnv(t)
	env.initSession(t)
	if err := env.journal.Record(course.Capture{
		Session: "plate42", Filename: "Initial.png", Path: "/x/Initial.png",
		Kind: course.KindInitial, TakenAt: time.Now().UTC(), SizeBytes: 9,
	}); err != nil {
		t.Fatal(err)
	}

	w := env.get(t, "/api/session")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Session struct {
			Name string `json:"name"`
		} `json:"session"`
		Profile struct {
			ISO      int     `json:"iso"`
			GainRed  float64 `json:"gain_red"`
			GainBlue float64 `json:"gain_blue"`
		} `json:"profile"`
		Stats struct {
			TotalCaptures int `json:"total_captures"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Session.Name != "plate42" {
		t.Errorf("session name = %q", body.Session.Name)
	}
	if body.Profile.ISO != 100 || body.Profile.GainRed != 1.5 {
		t.Errorf("profile = %+v", body.Profile)
	}
	if body.Stats.TotalCaptures != 1 {
		t.Errorf("total captures = %d, want 1", body.Stats.TotalCaptures)
	}
}

func TestCaptures_EmptyList(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/api/captures")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Count    int               `json:"count"`
		Captures []journal.Capture `json:"captures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Count != 0 || body.Captures == nil {
		t.Errorf("body = %+v, want empty array, not null", body)
	}
}

func TestCaptures_LimitValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"?limit=0", "?limit=-3", "?limit=abc"} {
		w := env.get(t, "/api/captures"+q)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestCaptures_Limit(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		if err := env.journal.Record(course.Capture{
			Session: "plate42", Filename: name, Path: "/x/" + name,
			Kind: course.KindTimecourse, TakenAt: base.Add(time.Duration(i) * time.Minute), SizeBytes: 1,
		}); err != nil {
			t.Fatal(err)
		}
	}

	w := env.get(t, "/api/captures?limit=2")
	var body struct {
		Count    int               `json:"count"`
		Captures []journal.Capture `json:"captures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
	if body.Captures[0].Filename != "c.png" {
		t.Errorf("first = %s, want newest", body.Captures[0].Filename)
	}
}

func TestLatestImage_Empty(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/api/captures/latest/image")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestLatestImage_ServesFile(t *testing.T) {
	env := newTestEnv(t)

	imgPath := filepath.Join(env.dir, "shot.png")
	if err := os.WriteFile(imgPath, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := env.journal.Record(course.Capture{
		Session: "plate42", Filename: "shot.png", Path: imgPath,
		Kind: course.KindTimecourse, TakenAt: time.Now().UTC(), SizeBytes: 9,
	}); err != nil {
		t.Fatal(err)
	}

	w := env.get(t, "/api/captures/latest/image")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
}
