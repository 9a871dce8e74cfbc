package model

import (
	"encoding/json"
	"testing"
)

func TestMMUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want MM
	}{
		{"number", `1200`, 1200},
		{"float", `12.5`, 12.5},
		{"numeric string", `"800"`, 800},
		{"null", `null`, 0},
		{"garbage string", `"wide"`, 0},
		{"object", `{"a":1}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m MM
			if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if m != tt.want {
				t.Errorf("got %v, want %v", m, tt.want)
			}
		})
	}
}

func TestMMOr(t *testing.T) {
	if got := MM(0).Or(1000); got != 1000 {
		t.Errorf("zero: got %v", got)
	}
	if got := MM(-5).Or(1000); got != 1000 {
		t.Errorf("negative: got %v", got)
	}
	if got := MM(250).Or(1000); got != 250 {
		t.Errorf("set: got %v", got)
	}
}

func TestTankDecodeTolerant(t *testing.T) {
	data := `{"id": 7, "name": "Rinse", "width": "1500", "length": null, "space": 200, "spacing": 50}`
	var tk Tank
	if err := json.Unmarshal([]byte(data), &tk); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tk.Width != 1500 {
		t.Errorf("Width = %v, want 1500", tk.Width)
	}
	if tk.Length.Set() {
		t.Errorf("Length should be unset, got %v", tk.Length)
	}
	if tk.Gap() != 200 {
		t.Errorf("Gap() = %v, want space to win", tk.Gap())
	}
}

func TestTankGapFallsBackToSpacing(t *testing.T) {
	tk := Tank{Spacing: 100}
	if tk.Gap() != 100 {
		t.Errorf("Gap() = %v, want 100", tk.Gap())
	}
}

func TestTankLabels(t *testing.T) {
	n := 12
	tk := Tank{Number: &n}
	if got := tk.NumberLabel("?"); got != "12" {
		t.Errorf("NumberLabel = %q", got)
	}
	if got := tk.NameLabel("no name"); got != "no name" {
		t.Errorf("NameLabel = %q", got)
	}
	if got := (Tank{}).NumberLabel("?"); got != "?" {
		t.Errorf("NumberLabel fallback = %q", got)
	}
}

func TestRevisionStatusLegacy(t *testing.T) {
	var r PlantRevision
	if err := json.Unmarshal([]byte(`{"id":1,"status":"DRAFT"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.Status() != RevisionDraft {
		t.Errorf("Status() = %q", r.Status())
	}
}

func TestDecodeLineTanks(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantTanks int
		wantLine  bool
		wantErr   bool
	}{
		{"blank", "  \n", 0, false, false},
		{"array", `[{"id":1},{"id":2}]`, 2, false, false},
		{"object", `{"line":{"id":4,"line_number":2},"tanks":[{"id":1}]}`, 1, true, false},
		{"object without line", `{"tanks":[]}`, 0, false, false},
		{"garbage", `{"tanks":`, 0, false, true},
		{"wrong shape", `"tank"`, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt, err := DecodeLineTanks([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(lt.Tanks) != tt.wantTanks {
				t.Errorf("tanks = %d, want %d", len(lt.Tanks), tt.wantTanks)
			}
			if (lt.Line != nil) != tt.wantLine {
				t.Errorf("line = %v, want present %v", lt.Line, tt.wantLine)
			}
		})
	}
}
