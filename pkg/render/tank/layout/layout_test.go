package layout

import (
	"math"
	"testing"

	"github.com/stlplant/tankview/pkg/model"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func tank(id int, w, l, gap float64) model.Tank {
	return model.Tank{ID: id, Width: model.MM(w), Length: model.MM(l), Space: model.MM(gap)}
}

func TestComputeScaleSingleTank(t *testing.T) {
	tanks := []model.Tank{tank(1, 1000, 1000, 0)}
	vp := Viewport{Width: 1000, Height: 1000}

	tests := []struct {
		name string
		opts Options
		want float64
	}{
		{
			name: "basic",
			opts: Basic(),
			// trailing gap of 100 counts; no boost
			want: math.Min((1000-40)/1100.0, (1000-40-100)/1000.0),
		},
		{
			name: "detailed",
			opts: Detailed(),
			// one tank under 1:1 gets the small-fleet boost
			want: math.Min(math.Min((1000-40)/1000.0, (1000-40-60)/1000.0)*1.5, 5),
		},
		{
			name: "detailed without boost",
			opts: func() Options { o := Detailed(); o.SmallFleetBoost = false; return o }(),
			want: math.Min((1000-40)/1000.0, (1000-40-60)/1000.0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeScale(tanks, vp, tt.opts); !approx(got, tt.want) {
				t.Errorf("ComputeScale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeScaleWithinBounds(t *testing.T) {
	lines := [][]model.Tank{
		{tank(1, 1, 1, 0)},
		{tank(1, 100000, 100000, 0)},
		{tank(1, 800, 2000, 200), tank(2, 1200, 1500, 0), tank(3, 0, 0, 0), tank(4, 500, 500, 50)},
		{{ID: 9}},
	}
	viewports := []Viewport{{1000, 1000}, {50, 50}, {10, 4000}, {4000, 10}, {0, 0}, {-5, 300}}
	for _, preset := range []Options{Basic(), Detailed()} {
		for _, tanks := range lines {
			for _, vp := range viewports {
				s := ComputeScale(tanks, vp, preset)
				if s < preset.MinScale || s > preset.MaxScale {
					t.Errorf("scale %v outside [%v, %v] for vp %+v", s, preset.MinScale, preset.MaxScale, vp)
				}
			}
		}
	}
}

func TestComputeScaleBoostClampedToMax(t *testing.T) {
	opts := Detailed()
	opts.MaxScale = 0.9
	tanks := []model.Tank{tank(1, 1000, 1000, 0)}
	got := ComputeScale(tanks, Viewport{Width: 1000, Height: 1000}, opts)
	if !approx(got, 0.9) {
		t.Errorf("ComputeScale() = %v, want 0.9", got)
	}
}

func TestComputeScaleNoBoostForLargeFleet(t *testing.T) {
	opts := Detailed()
	tanks := []model.Tank{tank(1, 1000, 1000, 0), tank(2, 1000, 1000, 0), tank(3, 1000, 1000, 0), tank(4, 1000, 1000, 0)}
	got := ComputeScale(tanks, Viewport{Width: 2000, Height: 1000}, opts)
	want := math.Min(1960/4000.0, 900/1000.0)
	if !approx(got, want) {
		t.Errorf("ComputeScale() = %v, want %v", got, want)
	}
}

func TestTotalWidthTrailingGap(t *testing.T) {
	tanks := []model.Tank{tank(1, 1000, 0, 200), tank(2, 500, 0, 300)}

	if got := TotalWidth(tanks, Detailed()); got != 1700 {
		t.Errorf("detailed TotalWidth = %v, want 1700", got)
	}
	if got := TotalWidth(tanks, Basic()); got != 2000 {
		t.Errorf("basic TotalWidth = %v, want 2000", got)
	}
}

func TestTotalWidthDefaults(t *testing.T) {
	tanks := []model.Tank{{ID: 1}, {ID: 2}}
	// basic: 1000 + 100 + 1000 + 100
	if got := TotalWidth(tanks, Basic()); got != 2200 {
		t.Errorf("basic TotalWidth = %v, want 2200", got)
	}
	// detailed: spacing defaults to 0
	if got := TotalWidth(tanks, Detailed()); got != 2000 {
		t.Errorf("detailed TotalWidth = %v, want 2000", got)
	}
	if got := MaxLength(tanks, Detailed()); got != 1000 {
		t.Errorf("MaxLength = %v, want 1000", got)
	}
}

func TestBuildLeftToRight(t *testing.T) {
	tanks := []model.Tank{
		tank(1, 1000, 2000, 200),
		tank(2, 1500, 1000, 0),
		tank(3, 800, 1200, 400),
		{ID: 4},
	}
	for _, opts := range []Options{Basic(), Detailed()} {
		l := Build(tanks, Viewport{Width: 1200, Height: 600}, opts)
		if len(l.Tanks) != len(tanks) {
			t.Fatalf("placed %d tanks, want %d", len(l.Tanks), len(tanks))
		}
		for i := 0; i+1 < len(l.Tanks); i++ {
			cur := l.Tanks[i]
			want := cur.Rect.X + (TankWidth(cur.Tank, opts)+TankGap(cur.Tank, opts))*l.Scale
			if !approx(l.Tanks[i+1].Rect.X, want) {
				t.Errorf("tank %d x = %v, want %v", i+1, l.Tanks[i+1].Rect.X, want)
			}
			if l.Tanks[i].Tank.ID != tanks[i].ID {
				t.Errorf("tank %d out of order", i)
			}
		}
	}
}

func TestBuildCentersVertically(t *testing.T) {
	opts := Detailed()
	l := Build([]model.Tank{tank(1, 1000, 2000, 0), tank(2, 1000, 500, 0)}, Viewport{Width: 800, Height: 600}, opts)
	wantCenter := opts.Margin + (600-2*opts.Margin-opts.ReservedBand)/2
	if !approx(l.CenterY, wantCenter) {
		t.Fatalf("CenterY = %v, want %v", l.CenterY, wantCenter)
	}
	for _, p := range l.Tanks {
		if !approx(p.Rect.CenterY(), wantCenter) {
			t.Errorf("tank %d center %v, want %v", p.Tank.ID, p.Rect.CenterY(), wantCenter)
		}
	}
}

func TestBuildCentersHorizontally(t *testing.T) {
	opts := Detailed()
	opts.SmallFleetBoost = false
	opts.MaxScale = 0.1
	opts.MinScale = 0.1
	l := Build([]model.Tank{tank(1, 1000, 1000, 0)}, Viewport{Width: 1000, Height: 1000}, opts)
	// 960 available, 100 used: startX = 20 + 430
	if !approx(l.StartX, 450) {
		t.Errorf("StartX = %v, want 450", l.StartX)
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, opts := range []Options{Basic(), Detailed()} {
		l := Build(nil, Viewport{Width: 600, Height: 400}, opts)
		if !l.IsEmpty() {
			t.Fatal("expected empty state")
		}
		if len(l.Buttons) != 0 || len(l.Tanks) != 0 {
			t.Errorf("empty layout registered %d buttons, %d tanks", len(l.Buttons), len(l.Tanks))
		}
		if l.Empty.Title.Value != "No tanks found for this line" {
			t.Errorf("title = %q", l.Empty.Title.Value)
		}
		if !approx(l.Empty.Title.Y, 190) || !approx(l.Empty.Hint.Y, 220) {
			t.Errorf("empty text at %v / %v", l.Empty.Title.Y, l.Empty.Hint.Y)
		}
	}
	if got := Build(nil, Viewport{600, 400}, Detailed()).Empty.Hint.Value; got != "Tank layout will appear here when line contains tanks" {
		t.Errorf("detailed hint = %q", got)
	}
}

func TestBuildScrollOnOverflow(t *testing.T) {
	opts := Basic()
	tanks := make([]model.Tank, 30)
	for i := range tanks {
		tanks[i] = tank(i+1, 3000, 1000, 500)
	}
	l := Build(tanks, Viewport{Width: 800, Height: 600}, opts)
	want := l.TotalWidth*l.Scale + 2*opts.Margin + opts.ScrollExtra
	if !approx(l.Width, want) {
		t.Errorf("Width = %v, want %v", l.Width, want)
	}
	if l.Width <= 800 {
		t.Errorf("surface should grow beyond the viewport, got %v", l.Width)
	}

	d := Build(tanks, Viewport{Width: 800, Height: 600}, Detailed())
	if d.Width != 800 {
		t.Errorf("detailed preset must not grow, got %v", d.Width)
	}
}

func TestBuildMaxWidth(t *testing.T) {
	tanks := make([]model.Tank, 20000)
	for i := range tanks {
		tanks[i] = model.Tank{ID: i + 1}
	}
	opts := Basic()
	opts.MaxWidth = 10000

	l := Build(tanks, Viewport{Width: 800, Height: 500}, opts)
	if !l.Clipped {
		t.Error("oversized line should be marked clipped")
	}
	if l.Width != 10000 {
		t.Errorf("Width = %v, want 10000", l.Width)
	}

	short := Build(tanks[:3], Viewport{Width: 800, Height: 500}, opts)
	if short.Clipped || short.Width >= 10000 {
		t.Errorf("short line: clipped=%v width=%v", short.Clipped, short.Width)
	}
}

func TestBuildIdempotent(t *testing.T) {
	tanks := []model.Tank{tank(1, 1000, 2000, 200), tank(2, 1500, 1000, 0)}
	vp := Viewport{Width: 1000, Height: 700}
	a := Build(tanks, vp, Detailed())
	b := Build(tanks, vp, Detailed())
	if len(a.Buttons) != len(b.Buttons) || len(a.Buttons) == 0 {
		t.Fatalf("button counts %d / %d", len(a.Buttons), len(b.Buttons))
	}
	for i := range a.Buttons {
		if a.Buttons[i].Rect != b.Buttons[i].Rect || a.Buttons[i].TankID != b.Buttons[i].TankID {
			t.Errorf("button %d differs: %+v vs %+v", i, a.Buttons[i], b.Buttons[i])
		}
	}
}

func TestBuildButtonsRespectFlagAndSize(t *testing.T) {
	tanks := []model.Tank{tank(1, 2000, 2000, 0), tank(2, 10, 10, 0)}
	vp := Viewport{Width: 1000, Height: 700}

	l := Build(tanks, vp, Detailed())
	if len(l.Buttons) != 1 || l.Buttons[0].TankID != 1 {
		t.Fatalf("buttons = %+v, want only tank 1", l.Buttons)
	}

	opts := Detailed()
	opts.ShowEditButtons = false
	if l := Build(tanks, vp, opts); len(l.Buttons) != 0 {
		t.Errorf("buttons registered with ShowEditButtons off: %d", len(l.Buttons))
	}
}

func TestBasicButtonGeometry(t *testing.T) {
	opts := Basic()
	l := Build([]model.Tank{tank(7, 1000, 1000, 0)}, Viewport{Width: 1000, Height: 1000}, opts)
	if len(l.Buttons) != 1 {
		t.Fatalf("want one button, got %d", len(l.Buttons))
	}
	b := l.Buttons[0]
	p := l.Tanks[0]
	if b.Rect.W != 80 || b.Rect.H != 32 {
		t.Errorf("size = %vx%v, want 80x32", b.Rect.W, b.Rect.H)
	}
	if !approx(b.Rect.X, p.Rect.CenterX()-40) || !approx(b.Rect.Y, p.Rect.Bottom()+15) {
		t.Errorf("button at %v,%v", b.Rect.X, b.Rect.Y)
	}
	if !b.Label.Bold || b.Label.Size != 14 {
		t.Errorf("label = %+v", b.Label)
	}
}

func TestDetailedButtonGeometry(t *testing.T) {
	opts := Detailed()
	opts.SmallFleetBoost = false
	opts.MinScale, opts.MaxScale = 0.2, 0.2
	l := Build([]model.Tank{tank(3, 1000, 1000, 0)}, Viewport{Width: 1000, Height: 1000}, opts)
	if len(l.Buttons) != 1 {
		t.Fatalf("want one button, got %d", len(l.Buttons))
	}
	b := l.Buttons[0]
	// tank is 200x200 px: bw = min(60, 120) = 60, bh = min(25, 20) = 20
	if b.Rect.W != 60 || b.Rect.H != 20 {
		t.Errorf("size = %vx%v, want 60x20", b.Rect.W, b.Rect.H)
	}
	if !approx(b.Rect.Y, l.Tanks[0].Rect.Bottom()+opts.Padding) {
		t.Errorf("button y = %v", b.Rect.Y)
	}
	if !approx(b.Label.Size, 12) {
		t.Errorf("font = %v, want 12", b.Label.Size)
	}
	if b.LabelFor(false).Bold || !b.LabelFor(true).Bold {
		t.Error("detailed label should be bold only on hover")
	}
	if b.LineWidth(true) != 2 || b.LineWidth(false) != 1 {
		t.Error("unexpected hover line width")
	}
}

func TestLabelsBasic(t *testing.T) {
	opts := Basic()
	opts.MinScale, opts.MaxScale = 0.5, 0.5
	l := Build([]model.Tank{{ID: 1, Width: 1000, Length: 1000}}, Viewport{Width: 2000, Height: 2000}, opts)
	lbl := l.Tanks[0].Labels
	if len(lbl) != 2 {
		t.Fatalf("labels = %+v", lbl)
	}
	// 0.5 * 18 * 1.5 = 13.5, clamped to 16
	if lbl[0].Value != "no name" || lbl[0].Size != 16 {
		t.Errorf("name label = %+v", lbl[0])
	}
	if lbl[1].Value != "1000 × 1000 mm" {
		t.Errorf("dims label = %q", lbl[1].Value)
	}
}

func TestLabelsDetailed(t *testing.T) {
	n := 4
	opts := Detailed()
	opts.SmallFleetBoost = false
	opts.MinScale, opts.MaxScale = 1, 1
	l := Build([]model.Tank{{ID: 1, Number: &n, Name: "Degrease", Width: 200, Length: 300}}, Viewport{Width: 1000, Height: 1000}, opts)
	lbl := l.Tanks[0].Labels
	if len(lbl) != 3 {
		t.Fatalf("labels = %+v", lbl)
	}
	if lbl[0].Value != "4" || lbl[0].Size != 12 || !lbl[0].Bold {
		t.Errorf("number = %+v", lbl[0])
	}
	if lbl[1].Value != "Degrease" || lbl[1].Size != 10 {
		t.Errorf("name = %+v", lbl[1])
	}
	if lbl[2].Value != "200×300mm" || !lbl[2].Muted || lbl[2].Size != 8 {
		t.Errorf("dims = %+v", lbl[2])
	}
}

func TestGridCell(t *testing.T) {
	basic, detailed := Basic().Grid, Detailed().Grid
	tests := []struct {
		name  string
		rule  GridRule
		scale float64
		want  float64
	}{
		{"basic fine", basic, 0.6, 500},
		{"basic normal", basic, 0.3, 1000},
		{"basic coarse", basic, 0.1, 2000},
		{"basic coarse edge", basic, 0.2, 2000},
		{"basic fine edge", basic, 0.5, 1000},
		{"detailed fine", detailed, 2.5, 500},
		{"detailed normal", detailed, 1, 1000},
		{"detailed coarse", detailed, 0.3, 2000},
		{"detailed normal edge", detailed, 0.5, 1000},
		{"detailed fine edge", detailed, 2, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GridCell(tt.scale, tt.rule); got != tt.want {
				t.Errorf("GridCell(%v) = %v, want %v", tt.scale, got, tt.want)
			}
		})
	}
}

func TestGridSkippedWhenDense(t *testing.T) {
	g := buildGrid(0.001, Detailed().Grid)
	if g.Visible {
		t.Errorf("grid with %vpx step should be hidden", g.Step)
	}
	g = buildGrid(1, Detailed().Grid)
	if !g.Visible || g.Label != "Grid: 1m" {
		t.Errorf("grid = %+v", g)
	}
	edge := Detailed().Grid
	edge.CoarseBelow, edge.MinStep = 0.1, 250
	if g := buildGrid(0.25, edge); g.Visible || g.Step != 250 {
		t.Errorf("grid with step equal to MinStep = %+v, want hidden", g)
	}
	if got := buildGrid(3, Detailed().Grid).Label; got != "Grid: 500mm" {
		t.Errorf("label = %q", got)
	}
}

func TestPreset(t *testing.T) {
	if o, err := Preset("basic"); err != nil || !o.TrailingGap {
		t.Errorf("basic preset = %+v, %v", o, err)
	}
	if o, err := Preset(""); err != nil || o.TrailingGap {
		t.Errorf("default preset = %+v, %v", o, err)
	}
	if _, err := Preset("fancy"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
