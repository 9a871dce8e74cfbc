package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
)

const sampleTanksJSON = `{
	"line": {"id": 4, "plant_id": 5, "line_number": 1},
	"tanks": [
		{"id": 10, "number": 1, "name": "Degrease", "width": 1200, "length": 1500, "space": 200},
		{"id": 11, "number": 2, "name": "Rinse", "width": 800, "length": 1500}
	]
}`

// captureOut redirects command output for the duration of the test.
func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := out
	out = &buf
	t.Cleanup(func() { out = old })
	captureSpinner(t)
	return &buf
}

// writeConfig writes a settings file that keeps all state under dir.
func writeConfig(t *testing.T, dir, apiURL string) string {
	t.Helper()
	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}
	cfg := `[api]
url = "` + apiURL + `"
retry_attempts = 1
retry_delay = "1ms"

[render]
width = 400
height = 300

[selection]
store = "file"
dir = "` + filepath.ToSlash(filepath.Join(dir, "selection")) + `"

[cache]
backend = "none"
`
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with args on a fresh CLI.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&logs)
	root.SetErr(&logs)
	return root.Execute()
}

func writeTanks(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "line.json")
	if err := os.WriteFile(path, []byte(sampleTanksJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderCommandPNG(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	input := writeTanks(t, dir)
	output := filepath.Join(dir, "out.png")
	buf := captureOut(t)

	if err := runCLI(t, "--config", cfg, "render", input, "-o", output); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("bounds = %v, want config size 400x300", b)
	}
	if !strings.Contains(buf.String(), "2 tanks") {
		t.Errorf("output missing stats: %s", buf.String())
	}
}

func TestRenderCommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	input := writeTanks(t, dir)
	captureOut(t)

	if err := runCLI(t, "--config", cfg, "render", input, "-f", "json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "line.layout.json"))
	if err != nil {
		t.Fatalf("default output not written: %v", err)
	}
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(l.Tanks) != 2 {
		t.Errorf("tanks = %d", len(l.Tanks))
	}
	if in, _ := os.ReadFile(input); string(in) != sampleTanksJSON {
		t.Error("input file was overwritten")
	}
}

func TestRenderCommandHitTest(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	input := writeTanks(t, dir)
	buf := captureOut(t)

	if err := runCLI(t, "--config", cfg, "layout", input, "--json"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	var l layout.Layout
	if err := json.Unmarshal(buf.Bytes(), &l); err != nil {
		t.Fatalf("decode layout output: %v", err)
	}
	if len(l.Buttons) != 2 {
		t.Fatalf("buttons = %d, want 2", len(l.Buttons))
	}
	b := l.Buttons[0]
	at := strconv.FormatFloat(b.Rect.X+b.Rect.W/2, 'f', 2, 64) + "," + strconv.FormatFloat(b.Rect.Y+b.Rect.H/2, 'f', 2, 64)

	buf.Reset()
	err := runCLI(t, "--config", cfg, "render", input, "-f", "svg", "-o", filepath.Join(dir, "hit.svg"), "--at", at)
	if err != nil {
		t.Fatalf("render --at: %v", err)
	}
	if !strings.Contains(buf.String(), "hits tank 10") {
		t.Errorf("hit not reported: %s", buf.String())
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	input := writeTanks(t, dir)
	captureOut(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no input", []string{"render"}, errors.ErrCodeInvalidInput},
		{"missing file", []string{"render", filepath.Join(dir, "nope.json")}, errors.ErrCodeFileNotFound},
		{"bad theme", []string{"render", input, "--theme", "neon"}, errors.ErrCodeInvalidTheme},
		{"bad preset", []string{"render", input, "--preset", "fancy"}, errors.ErrCodeInvalidPreset},
		{"bad point", []string{"render", input, "--at", "12"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, append([]string{"--config", cfg}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLayoutCommandTable(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	input := writeTanks(t, dir)
	buf := captureOut(t)

	if err := runCLI(t, "--config", cfg, "layout", input, "--preset", "basic"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	for _, want := range []string{"Scale", "Degrease", "Rinse", "2 tanks"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHeaderCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	output := filepath.Join(dir, "header.html")
	captureOut(t)

	if err := runCLI(t, "--config", cfg, "header", "--page", "plant_layout.html", "--theme", "engineering", "-o", output); err != nil {
		t.Fatalf("header: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Plant Layout Designer") || !strings.Contains(string(data), `data-theme="engineering"`) {
		t.Errorf("header = %s", data)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	buf := captureOut(t)

	if err := runCLI(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Mode().Perm() != 0o600 {
		t.Fatalf("config file: %v %v", info, err)
	}
	if err := runCLI(t, "--config", path, "config", "init"); !errors.Is(err, errors.ErrCodeConflict) {
		t.Errorf("second init = %v, want CONFLICT", err)
	}
	if err := runCLI(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	buf.Reset()
	if err := runCLI(t, "--config", path, "config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"[render]", `preset = "detailed"`, `addr = ":8080"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("config show missing %q:\n%s", want, buf.String())
		}
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	captureOut(t)
	cfg := writeConfig(t, dir, "")
	if err := runCLI(t, "--config", cfg, "cache", "clear"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("clear with backend none = %v, want UNSUPPORTED", err)
	}

	cacheDir := filepath.Join(dir, "cache")
	fileCfg := filepath.Join(dir, "file.toml")
	body := "[cache]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(cacheDir) + "\"\n"
	if err := os.WriteFile(fileCfg, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	buf := captureOut(t)
	if err := runCLI(t, "--config", fileCfg, "cache", "path"); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(buf.String()) != cacheDir {
		t.Errorf("cache path = %q, want %q", buf.String(), cacheDir)
	}
	if err := runCLI(t, "--config", fileCfg, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

// fakeBackend serves one customer, one plant with a draft and an active
// revision, one line and two tanks.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(v any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(v)
		}
	}
	var lt model.LineTanks
	if err := json.Unmarshal([]byte(sampleTanksJSON), &lt); err != nil {
		t.Fatal(err)
	}
	mux.HandleFunc("GET /customers/1", reply(model.Customer{ID: 1, Name: "Acme", Town: "Ulm"}))
	mux.HandleFunc("GET /plants/5", reply(model.Plant{ID: 5, CustomerID: 1, Name: "North", Revision: 1}))
	mux.HandleFunc("GET /plants/6", reply(model.Plant{ID: 6, CustomerID: 2, Name: "Elsewhere"}))
	mux.HandleFunc("GET /plants", reply([]model.Plant{{ID: 5, CustomerID: 1, Name: "North", Revision: 1, IsActiveRevision: true}}))
	mux.HandleFunc("GET /plants/5/revisions", reply([]model.PlantRevision{
		{ID: 5, Revision: 1, RevisionName: "Base", RevisionStatus: model.RevisionActive},
		{ID: 7, Revision: 2, RevisionName: "Rework", RevisionStatus: model.RevisionDraft},
	}))
	mux.HandleFunc("GET /plants/{id}/lines", reply([]model.Line{{ID: 4, PlantID: 5, LineNumber: 1}}))
	mux.HandleFunc("GET /lines/4", reply(lt.Line))
	mux.HandleFunc("GET /lines/4/tanks", reply(lt.Tanks))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSelectAndListCommands(t *testing.T) {
	dir := t.TempDir()
	backend := fakeBackend(t)
	cfg := writeConfig(t, dir, backend.URL)
	buf := captureOut(t)

	if err := runCLI(t, "--config", cfg, "select", "plant", "5"); !errors.Is(err, errors.ErrCodeInvalidSelection) {
		t.Errorf("plant before customer = %v, want INVALID_SELECTION", err)
	}
	for _, args := range [][]string{
		{"select", "customer", "1"},
		{"select", "plant", "5"},
		{"select", "revision", "7"},
	} {
		if err := runCLI(t, append([]string{"--config", cfg}, args...)...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
	if err := runCLI(t, "--config", cfg, "select", "revision", "5"); !errors.Is(err, errors.ErrCodeInvalidSelection) {
		t.Errorf("active revision = %v, want INVALID_SELECTION", err)
	}
	if err := runCLI(t, "--config", cfg, "select", "plant", "6"); !errors.Is(err, errors.ErrCodeInvalidSelection) {
		t.Errorf("plant of another customer = %v, want INVALID_SELECTION", err)
	}

	buf.Reset()
	if err := runCLI(t, "--config", cfg, "select", "show"); err != nil {
		t.Fatalf("select show: %v", err)
	}
	for _, want := range []string{"Acme (1)", "North (5)", "rev 2 Rework (7)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("selection missing %q:\n%s", want, buf.String())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "selection", "customerPlantSelection.json")); err != nil {
		t.Errorf("selection file: %v", err)
	}

	buf.Reset()
	if err := runCLI(t, "--config", cfg, "list", "plants"); err != nil {
		t.Fatalf("list plants: %v", err)
	}
	if !strings.Contains(buf.String(), "North") {
		t.Errorf("plants table missing North:\n%s", buf.String())
	}

	buf.Reset()
	if err := runCLI(t, "--config", cfg, "list", "lines"); err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if !strings.Contains(buf.String(), "render --line 4") {
		t.Errorf("lines output:\n%s", buf.String())
	}

	output := filepath.Join(dir, "line.svg")
	if err := runCLI(t, "--config", cfg, "render", "--line", "4", "-f", "svg", "-o", output); err != nil {
		t.Fatalf("render --line: %v", err)
	}
	if data, err := os.ReadFile(output); err != nil || !bytes.Contains(data, []byte("Degrease")) {
		t.Errorf("rendered line: %v", err)
	}

	if err := runCLI(t, "--config", cfg, "select", "clear"); err != nil {
		t.Fatalf("select clear: %v", err)
	}
	buf.Reset()
	if err := runCLI(t, "--config", cfg, "select", "show"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Nothing selected") {
		t.Errorf("after clear:\n%s", buf.String())
	}
	if err := runCLI(t, "--config", cfg, "list", "plants"); !errors.Is(err, errors.ErrCodeInvalidSelection) {
		t.Errorf("list plants without selection = %v, want INVALID_SELECTION", err)
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		x, y    float64
		wantErr bool
	}{
		{"10,20", 10, 20, false},
		{" 1.5 , 2.25 ", 1.5, 2.25, false},
		{"10", 0, 0, true},
		{"a,b", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			x, y, err := parsePoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if x != tt.x || y != tt.y {
				t.Errorf("got %v,%v want %v,%v", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("plant", "12"); err != nil || id != 12 {
		t.Errorf("parseID(12) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-3", "x"} {
		if _, err := parseID("plant", bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("parseID(%q) = %v", bad, err)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input  string
		lineID int
		format string
		want   string
	}{
		{"tanks.json", 0, "png", "tanks.png"},
		{"dir/tanks.json", 0, "json", "dir/tanks.layout.json"},
		{"-", 0, "svg", "line-0.svg"},
		{"", 12, "png", "line-12.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := defaultOutput(tt.input, tt.lineID, tt.format); got != tt.want {
				t.Errorf("defaultOutput(%q, %d, %q) = %q, want %q", tt.input, tt.lineID, tt.format, got, tt.want)
			}
		})
	}
}

func TestPickerKeys(t *testing.T) {
	items := []pickerItem{
		{ID: 1, Title: "Acme"},
		{ID: 2, Title: "Archived", Disabled: true},
		{ID: 3, Title: "Zenith"},
	}
	press := func(m pickerModel, keys ...tea.KeyMsg) (pickerModel, tea.Cmd) {
		var cmd tea.Cmd
		for _, k := range keys {
			var next tea.Model
			next, cmd = m.Update(k)
			m = next.(pickerModel)
		}
		return m, cmd
	}
	runes := func(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }
	down := tea.KeyMsg{Type: tea.KeyDown}
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	m, _ := press(newPicker("Pick", items), down, down, down)
	if m.cursor != 2 {
		t.Errorf("cursor after 3 downs = %d, want clamped 2", m.cursor)
	}
	m, _ = press(m, runes('g'))
	if m.cursor != 0 {
		t.Errorf("cursor after g = %d", m.cursor)
	}

	m, cmd := press(m, runes('j'), enter)
	if m.chosen != nil || cmd != nil {
		t.Error("disabled item must not be chosen")
	}

	m, cmd = press(m, runes('G'), enter)
	if m.chosen == nil || m.chosen.ID != 3 || cmd == nil {
		t.Errorf("chosen = %+v, want Zenith with quit", m.chosen)
	}

	m, cmd = press(newPicker("Pick", items), runes('q'))
	if m.chosen != nil || cmd == nil {
		t.Error("q should quit without choosing")
	}

	if view := newPicker("Pick", nil).View(); !strings.Contains(view, "nothing to choose from") {
		t.Errorf("empty view = %q", view)
	}
	if view := newPicker("Pick", items).View(); !strings.Contains(view, "Zenith") || !strings.Contains(view, "[1/3]") {
		t.Errorf("view = %q", view)
	}
}
