package layout

import (
	"testing"

	"github.com/stlplant/tankview/pkg/model"
)

func TestHitTest(t *testing.T) {
	buttons := []Button{
		{TankID: 1, Rect: Rect{X: 10, Y: 10, W: 50, H: 20}},
		{TankID: 2, Rect: Rect{X: 40, Y: 10, W: 50, H: 20}},
		{TankID: 3, Rect: Rect{X: 200, Y: 200, W: 10, H: 10}},
	}
	tests := []struct {
		name   string
		x, y   float64
		wantID int
		wantOK bool
	}{
		{"inside first", 20, 20, 1, true},
		{"overlap resolves to first added", 45, 15, 1, true},
		{"inside second only", 80, 25, 2, true},
		{"edge inclusive", 210, 210, 3, true},
		{"outside all", 150, 150, 0, false},
		{"just left", 9.99, 15, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := HitTest(buttons, tt.x, tt.y)
			if ok != tt.wantOK || b.TankID != tt.wantID {
				t.Errorf("HitTest(%v, %v) = %d, %v; want %d, %v", tt.x, tt.y, b.TankID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestHitTestBuiltLayout(t *testing.T) {
	tanks := []model.Tank{tank(1, 1000, 1000, 200), tank(2, 1000, 1000, 0)}
	l := Build(tanks, Viewport{Width: 1000, Height: 800}, Detailed())
	for _, b := range l.Buttons {
		got, ok := HitTest(l.Buttons, b.Rect.CenterX(), b.Rect.CenterY())
		if !ok || got.TankID != b.TankID {
			t.Errorf("center of button %d resolved to %d, %v", b.TankID, got.TankID, ok)
		}
		if got.Tank.ID != b.TankID {
			t.Errorf("button tank ref = %d", got.Tank.ID)
		}
	}
	if _, ok := HitTest(l.Buttons, 0, 0); ok {
		t.Error("corner should not hit any button")
	}
}
