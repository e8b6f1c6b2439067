package geometry

import (
	"math"
	"testing"
)

func TestPointOps(t *testing.T) {
	p := NewPoint2D(3, 4)
	if d := p.Distance(Point2D{}); math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if got := p.Add(Point2D{X: 1, Y: -1}); got != (Point2D{X: 4, Y: 3}) {
		t.Errorf("Add = %v", got)
	}
	if got := p.Scale(2); got != (Point2D{X: 6, Y: 8}) {
		t.Errorf("Scale = %v", got)
	}
}

func TestSlopedLine(t *testing.T) {
	l := SlopedLine{AnchorY: 100, Slope: SlopeFromDegrees(45)}
	if y := l.YAt(0); y != 100 {
		t.Errorf("YAt(0) = %v", y)
	}
	if y := l.YAt(10); math.Abs(y-110) > 1e-9 {
		t.Errorf("YAt(10) = %v, want 110", y)
	}
	if y := l.Offset(-20).YAt(0); y != 80 {
		t.Errorf("Offset YAt(0) = %v, want 80", y)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 10)
	if !r.Contains(Point2D{X: 15, Y: 15}) {
		t.Error("expected point inside")
	}
	if r.Contains(Point2D{X: 31, Y: 15}) {
		t.Error("expected point outside")
	}
	if c := r.Center(); c != (Point2D{X: 20, Y: 15}) {
		t.Errorf("Center = %v", c)
	}
}
