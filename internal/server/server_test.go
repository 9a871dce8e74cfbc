package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/cache"
	"github.com/stlplant/tankview/pkg/config"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/selection"
)

const tanksBody = `[
	{"id": 10, "number": 1, "name": "Degrease", "width": 1200, "length": 1500, "space": 200},
	{"id": 11, "number": 2, "name": "Rinse", "width": 800, "length": 1500}
]`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, header http.Header) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode error body %q: %v", data, err)
	}
	return e
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, data := do(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["status"] != "ok" || got["version"] == "" {
		t.Errorf("health = %v", got)
	}
}

func TestRenderPNG(t *testing.T) {
	srv := newTestServer(t)
	resp, data := do(t, http.MethodPost, srv.URL+"/render?width=640&height=360", tanksBody, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
		t.Errorf("bounds = %v, want 640x360", b)
	}
}

func TestRenderFormats(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		query       string
		contentType string
		prefix      string
	}{
		{"format=svg", "image/svg+xml", "<svg"},
		{"format=json", "application/json", "{"},
		{"format=jpg", "image/jpeg", "\xff\xd8"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+"/render?"+tt.query, tanksBody, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, data)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !bytes.HasPrefix(bytes.TrimSpace(data), []byte(tt.prefix)) {
				t.Errorf("body starts with %q", data[:min(len(data), 16)])
			}
		})
	}
}

func TestRenderCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	srv := newTestServer(t, WithCache(fc, time.Hour))

	resp, first := do(t, http.MethodPost, srv.URL+"/render?format=svg", tanksBody, nil)
	if got := resp.Header.Get(CacheHeader); got != "MISS" {
		t.Errorf("first %s = %q, want MISS", CacheHeader, got)
	}
	resp, second := do(t, http.MethodPost, srv.URL+"/render?format=svg", tanksBody, nil)
	if got := resp.Header.Get(CacheHeader); got != "HIT" {
		t.Errorf("second %s = %q, want HIT", CacheHeader, got)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached body differs")
	}
	resp, _ = do(t, http.MethodPost, srv.URL+"/render?format=svg&grid=false", tanksBody, nil)
	if got := resp.Header.Get(CacheHeader); got != "MISS" {
		t.Errorf("changed params %s = %q, want MISS", CacheHeader, got)
	}
}

func TestRenderErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"bad format", "format=webp", tanksBody, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad preset", "preset=fancy", tanksBody, http.StatusBadRequest, "INVALID_PRESET"},
		{"bad theme", "theme=neon", tanksBody, http.StatusBadRequest, "INVALID_THEME"},
		{"bad width", "width=abc", tanksBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"zero height", "height=0", tanksBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"huge canvas", "width=100000", tanksBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad grid", "grid=maybe", tanksBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad body", "", `{"tanks":`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+"/render?"+tt.query, tt.body, nil)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			if e := decodeError(t, data); string(e.Code) != tt.code || e.Message == "" {
				t.Errorf("error = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestRenderRejectsOversizedLine(t *testing.T) {
	srv := newTestServer(t)
	body := "[" + strings.TrimSuffix(strings.Repeat("{},", 20000), ",") + "]"

	for _, route := range []string{"/render", "/layout"} {
		t.Run(route, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+route+"?preset=basic&width=800&height=500", body, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %.200s", resp.StatusCode, data)
			}
			if e := decodeError(t, data); e.Code != "INVALID_INPUT" {
				t.Errorf("code = %s, want INVALID_INPUT", e.Code)
			}
		})
	}

	resp, data := do(t, http.MethodPost, srv.URL+"/render?preset=basic&width=800&height=500", tanksBody, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("a short basic line must still render, got %d: %s", resp.StatusCode, data)
	}
}

func TestRenderEmptyBody(t *testing.T) {
	srv := newTestServer(t)
	resp, data := do(t, http.MethodPost, srv.URL+"/layout", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !l.IsEmpty() || len(l.Buttons) != 0 {
		t.Errorf("want empty state without buttons, got %+v", l)
	}
}

func TestLayoutNegotiation(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, http.MethodPost, srv.URL+"/layout", tanksBody, nil)
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(l.Tanks) != 2 || len(l.Buttons) != 2 {
		t.Errorf("tanks = %d, buttons = %d", len(l.Tanks), len(l.Buttons))
	}

	resp, data = do(t, http.MethodPost, srv.URL+"/layout", tanksBody, http.Header{"Accept": {"application/msgpack"}})
	if ct := resp.Header.Get("Content-Type"); ct != "application/msgpack" {
		t.Errorf("Content-Type = %q", ct)
	}
	var m layout.Layout
	if err := msgpack.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	if len(m.Tanks) != 2 || m.Scale != l.Scale {
		t.Errorf("msgpack layout = %d tanks scale %v, json scale %v", len(m.Tanks), m.Scale, l.Scale)
	}
}

func TestHit(t *testing.T) {
	srv := newTestServer(t)
	_, data := do(t, http.MethodPost, srv.URL+"/layout", tanksBody, nil)
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := l.Buttons[1]
	x, y := b.Rect.X+b.Rect.W/2, b.Rect.Y+b.Rect.H/2

	tests := []struct {
		name   string
		query  string
		hit    bool
		tankID int
		cursor string
	}{
		{"on button", "x=" + strconv.FormatFloat(x, 'f', -1, 64) + "&y=" + strconv.FormatFloat(y, 'f', -1, 64), true, b.TankID, "pointer"},
		{"off button", "x=1&y=1", false, 0, "default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+"/hit?"+tt.query, tanksBody, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, data)
			}
			var got hitResponse
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Hit != tt.hit || got.TankID != tt.tankID || string(got.Cursor) != tt.cursor {
				t.Errorf("hit = %+v, want hit %v tank %d cursor %s", got, tt.hit, tt.tankID, tt.cursor)
			}
		})
	}

	resp, _ := do(t, http.MethodPost, srv.URL+"/hit?x=a", tanksBody, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad point status = %d", resp.StatusCode)
	}
}

func TestHeader(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, http.MethodGet, srv.URL+"/header?page=plant_layout.html&theme=engineering", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(data), "Plant Layout Designer") {
		t.Errorf("header missing title: %s", data)
	}

	_, data = do(t, http.MethodGet, srv.URL+"/header?page=sales&format=json", "", nil)
	var v struct {
		Title   string `json:"title"`
		BackURL string `json:"back_url"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Title != "Customer's Plant Manager" || v.BackURL == "" {
		t.Errorf("view = %+v", v)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/header?page=..%5Csecret", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("traversal status = %d, want 400", resp.StatusCode)
	}
}

func TestSelectionRoutes(t *testing.T) {
	srv := newTestServer(t, WithSelectionStore(selection.NewMemoryStore(), nil))
	key := http.Header{SelectionKeyHeader: {"browser-1"}}

	resp, data := do(t, http.MethodPut, srv.URL+"/selection/plant", `{"id": 5, "customer_id": 1}`, key)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("plant before customer: status = %d: %s", resp.StatusCode, data)
	}
	if e := decodeError(t, data); e.Code != "INVALID_SELECTION" {
		t.Errorf("code = %s", e.Code)
	}

	steps := []struct {
		level string
		body  string
	}{
		{"customer", `{"id": 1, "name": "Acme"}`},
		{"plant", `{"id": 5, "customer_id": 1, "name": "North"}`},
		{"revision", `{"id": 7, "revision": 2, "revision_name": "Rework", "revision_status": "DRAFT"}`},
	}
	for _, st := range steps {
		resp, data := do(t, http.MethodPut, srv.URL+"/selection/"+st.level, st.body, key)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("select %s: status = %d: %s", st.level, resp.StatusCode, data)
		}
	}

	_, data = do(t, http.MethodGet, srv.URL+"/selection", "", key)
	var sel selection.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sel.Customer == nil || sel.Plant == nil || sel.Revision == nil || sel.Revision.ID != 7 {
		t.Errorf("selection = %+v", sel)
	}

	// another key sees nothing
	_, data = do(t, http.MethodGet, srv.URL+"/selection", "", http.Header{SelectionKeyHeader: {"browser-2"}})
	var other selection.Selection
	if err := json.Unmarshal(data, &other); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !other.IsEmpty() {
		t.Errorf("other key = %+v, want empty", other)
	}

	resp, data = do(t, http.MethodPut, srv.URL+"/selection/revision", `{"id": 9, "plant_id": 6, "revision_status": "DRAFT"}`, key)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("revision of another plant: status = %d: %s", resp.StatusCode, data)
	}
	resp, data = do(t, http.MethodPut, srv.URL+"/selection/revision", `{"id": 8, "revision_status": "ACTIVE"}`, key)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("active revision: status = %d: %s", resp.StatusCode, data)
	}
	resp, _ = do(t, http.MethodPut, srv.URL+"/selection/line", `{}`, key)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown level: status = %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodDelete, srv.URL+"/selection", "", key)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	_, data = do(t, http.MethodGet, srv.URL+"/selection", "", key)
	sel = selection.Selection{}
	if err := json.Unmarshal(data, &sel); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sel.IsEmpty() {
		t.Errorf("after delete = %+v", sel)
	}
}

func TestUnconfiguredRoutes(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/selection", "/lines/4/layout.png", "/customers/1/topology.svg"} {
		resp, data := do(t, http.MethodGet, srv.URL+path, "", nil)
		if resp.StatusCode != http.StatusNotImplemented {
			t.Errorf("%s: status = %d: %s", path, resp.StatusCode, data)
		}
	}
	resp, data := do(t, http.MethodGet, srv.URL+"/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound || decodeError(t, data).Code != "NOT_FOUND" {
		t.Errorf("unknown route: %d %s", resp.StatusCode, data)
	}
}

// fakeBackend serves one customer with one plant, one line and two tanks.
func fakeBackend(t *testing.T) *api.Client {
	t.Helper()
	mux := http.NewServeMux()
	jsonHandler := func(v any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(v)
		}
	}
	var tanks []model.Tank
	if err := json.Unmarshal([]byte(tanksBody), &tanks); err != nil {
		t.Fatalf("tanks: %v", err)
	}
	for i := range tanks {
		tanks[i].TankGroupID = 3
	}
	mux.HandleFunc("GET /customers/1", jsonHandler(model.Customer{ID: 1, Name: "Acme"}))
	mux.HandleFunc("GET /plants", jsonHandler([]model.Plant{{ID: 5, CustomerID: 1, Name: "North", Revision: 1, RevisionName: "Base"}}))
	mux.HandleFunc("GET /plants/5/lines", jsonHandler([]model.Line{{ID: 4, PlantID: 5, LineNumber: 1}}))
	mux.HandleFunc("GET /lines/4", jsonHandler(model.Line{ID: 4, PlantID: 5, LineNumber: 1}))
	mux.HandleFunc("GET /lines/4/tanks", jsonHandler(tanks))
	mux.HandleFunc("GET /lines/4/tank-groups", jsonHandler([]model.TankGroup{{ID: 3, Name: "Pretreatment", LineID: 4}}))

	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)
	c, err := api.New(backend.URL, api.WithRetry(1, time.Millisecond))
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	return c
}

func TestLineLayout(t *testing.T) {
	srv := newTestServer(t, WithClient(fakeBackend(t)))

	resp, data := do(t, http.MethodGet, srv.URL+"/lines/4/layout.json", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(l.Tanks) != 2 {
		t.Errorf("tanks = %d, want 2", len(l.Tanks))
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/lines/4/layout.png", "", nil)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("png Content-Type = %q", ct)
	}

	resp, data = do(t, http.MethodGet, srv.URL+"/lines/99/layout.png", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing line: status = %d: %s", resp.StatusCode, data)
	}
	resp, _ = do(t, http.MethodGet, srv.URL+"/lines/x/layout.png", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", resp.StatusCode)
	}
}

func TestTopology(t *testing.T) {
	srv := newTestServer(t, WithClient(fakeBackend(t)))

	resp, data := do(t, http.MethodGet, srv.URL+"/customers/1/topology.dot?detailed=true", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	dot := string(data)
	for _, want := range []string{"digraph", "Acme", "North", "Pretreatment", "Degrease"} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot missing %q", want)
		}
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/customers/1/topology.pdf", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf: status = %d, want 400", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, srv.URL+"/customers/1/topology.dot?plant=77", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown plant: status = %d, want 404", resp.StatusCode)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New().ListenAndServe(ctx, config.ServerConfig{Addr: addr})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
